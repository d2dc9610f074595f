package schedule

// nilNode is the sentinel at index 0 of every tree arena. Its height and
// size are zero and it is never written.
const nilNode int32 = 0

type avlNode[K, V any] struct {
	key    K
	val    V
	left   int32
	right  int32
	height int32
	size   int32
}

// AVLTree is a height-balanced binary search tree with unique keys.
// Nodes live in an index arena: children are arena indexes, rotations
// swap index fields, and freed nodes are recycled.
//
// Every node carries the size of its subtree so Rank runs in O(log n).
// Callbacks passed to the Ascend* walkers must not mutate the tree.
type AVLTree[K, V any] struct {
	cmp   func(a, b K) int
	nodes []avlNode[K, V]
	free  []int32
	root  int32
}

func NewAVLTree[K, V any](cmp func(a, b K) int) *AVLTree[K, V] {
	return &AVLTree[K, V]{
		cmp:   cmp,
		nodes: make([]avlNode[K, V], 1),
		root:  nilNode,
	}
}

// ---- public API ----

// Insert stores val under key. If key is already present its value is
// replaced and Insert returns false.
func (t *AVLTree[K, V]) Insert(key K, val V) bool {
	root, added := t.insert(t.root, key, val)
	t.root = root
	return added
}

// Delete removes key. It returns false if key is absent.
func (t *AVLTree[K, V]) Delete(key K) bool {
	root, removed := t.delete(t.root, key)
	t.root = root
	return removed
}

func (t *AVLTree[K, V]) Search(key K) (V, bool) {
	n := t.find(key)
	if n == nilNode {
		var zero V
		return zero, false
	}
	return t.nodes[n].val, true
}

func (t *AVLTree[K, V]) Min() (K, V, bool) {
	return t.entry(t.min(t.root))
}

func (t *AVLTree[K, V]) Max() (K, V, bool) {
	n := t.root
	for n != nilNode && t.nodes[n].right != nilNode {
		n = t.nodes[n].right
	}
	return t.entry(n)
}

// Successor returns the entry with the smallest key strictly greater
// than key. key itself need not be present.
func (t *AVLTree[K, V]) Successor(key K) (K, V, bool) {
	best := nilNode
	for n := t.root; n != nilNode; {
		if t.cmp(t.nodes[n].key, key) > 0 {
			best = n
			n = t.nodes[n].left
		} else {
			n = t.nodes[n].right
		}
	}
	return t.entry(best)
}

// Predecessor returns the entry with the largest key strictly less than
// key.
func (t *AVLTree[K, V]) Predecessor(key K) (K, V, bool) {
	best := nilNode
	for n := t.root; n != nilNode; {
		if t.cmp(t.nodes[n].key, key) < 0 {
			best = n
			n = t.nodes[n].right
		} else {
			n = t.nodes[n].left
		}
	}
	return t.entry(best)
}

// Range returns the values whose key lies in [lo, hi], ascending.
func (t *AVLTree[K, V]) Range(lo, hi K) []V {
	var out []V
	t.AscendRange(lo, hi, func(_ K, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Below returns the values whose key is strictly less than pivot,
// ascending.
func (t *AVLTree[K, V]) Below(pivot K) []V {
	var out []V
	t.AscendLessThan(pivot, func(_ K, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Rank returns the number of keys strictly less than key.
func (t *AVLTree[K, V]) Rank(key K) int {
	rank := int32(0)
	for n := t.root; n != nilNode; {
		c := t.cmp(key, t.nodes[n].key)
		switch {
		case c > 0:
			rank += t.nodes[t.nodes[n].left].size + 1
			n = t.nodes[n].right
		case c < 0:
			n = t.nodes[n].left
		default:
			return int(rank + t.nodes[t.nodes[n].left].size)
		}
	}
	return int(rank)
}

// Values returns every value in key order.
func (t *AVLTree[K, V]) Values() []V {
	out := make([]V, 0, t.Len())
	t.Ascend(func(_ K, v V) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (t *AVLTree[K, V]) Len() int {
	return int(t.nodes[t.root].size)
}

func (t *AVLTree[K, V]) Height() int {
	return int(t.nodes[t.root].height)
}

// ---- walkers ----

// Ascend calls fn for every entry in key order until fn returns false.
func (t *AVLTree[K, V]) Ascend(fn func(K, V) bool) {
	t.walk(t.root, fn)
}

// AscendRange calls fn for entries with lo <= key <= hi. Subtrees outside
// the bounds are not visited.
func (t *AVLTree[K, V]) AscendRange(lo, hi K, fn func(K, V) bool) {
	t.walkRange(t.root, lo, hi, fn)
}

// AscendLessThan calls fn for entries with key < pivot.
func (t *AVLTree[K, V]) AscendLessThan(pivot K, fn func(K, V) bool) {
	t.walkLess(t.root, pivot, fn)
}

func (t *AVLTree[K, V]) walk(n int32, fn func(K, V) bool) bool {
	if n == nilNode {
		return true
	}
	nd := &t.nodes[n]
	return t.walk(nd.left, fn) && fn(nd.key, nd.val) && t.walk(nd.right, fn)
}

func (t *AVLTree[K, V]) walkRange(n int32, lo, hi K, fn func(K, V) bool) bool {
	if n == nilNode {
		return true
	}
	nd := &t.nodes[n]
	if t.cmp(lo, nd.key) < 0 {
		if !t.walkRange(nd.left, lo, hi, fn) {
			return false
		}
	}
	if t.cmp(lo, nd.key) <= 0 && t.cmp(nd.key, hi) <= 0 {
		if !fn(nd.key, nd.val) {
			return false
		}
	}
	if t.cmp(hi, nd.key) > 0 {
		return t.walkRange(nd.right, lo, hi, fn)
	}
	return true
}

func (t *AVLTree[K, V]) walkLess(n int32, pivot K, fn func(K, V) bool) bool {
	if n == nilNode {
		return true
	}
	nd := &t.nodes[n]
	if !t.walkLess(nd.left, pivot, fn) {
		return false
	}
	if t.cmp(nd.key, pivot) >= 0 {
		return true
	}
	return fn(nd.key, nd.val) && t.walkLess(nd.right, pivot, fn)
}

// ---- mutation ----

func (t *AVLTree[K, V]) insert(n int32, key K, val V) (int32, bool) {
	if n == nilNode {
		return t.alloc(key, val), true
	}

	var added bool
	switch c := t.cmp(key, t.nodes[n].key); {
	case c < 0:
		var l int32
		l, added = t.insert(t.nodes[n].left, key, val)
		t.nodes[n].left = l
	case c > 0:
		var r int32
		r, added = t.insert(t.nodes[n].right, key, val)
		t.nodes[n].right = r
	default:
		t.nodes[n].val = val
		return n, false
	}

	t.update(n)

	// The inserted key decides which of the four shapes we are in.
	switch bf := t.balance(n); {
	case bf > 1:
		if t.cmp(key, t.nodes[t.nodes[n].left].key) < 0 {
			return t.rotateRight(n), added
		}
		l := t.rotateLeft(t.nodes[n].left)
		t.nodes[n].left = l
		return t.rotateRight(n), added
	case bf < -1:
		if t.cmp(key, t.nodes[t.nodes[n].right].key) > 0 {
			return t.rotateLeft(n), added
		}
		r := t.rotateRight(t.nodes[n].right)
		t.nodes[n].right = r
		return t.rotateLeft(n), added
	}
	return n, added
}

func (t *AVLTree[K, V]) delete(n int32, key K) (int32, bool) {
	if n == nilNode {
		return nilNode, false
	}

	switch c := t.cmp(key, t.nodes[n].key); {
	case c < 0:
		l, removed := t.delete(t.nodes[n].left, key)
		if !removed {
			return n, false
		}
		t.nodes[n].left = l
	case c > 0:
		r, removed := t.delete(t.nodes[n].right, key)
		if !removed {
			return n, false
		}
		t.nodes[n].right = r
	default:
		left, right := t.nodes[n].left, t.nodes[n].right
		if left == nilNode || right == nilNode {
			child := left
			if child == nilNode {
				child = right
			}
			t.release(n)
			return child, true
		}

		// Two children: take over the in-order successor's entry and
		// remove it from the right subtree instead.
		succ := t.min(right)
		t.nodes[n].key = t.nodes[succ].key
		t.nodes[n].val = t.nodes[succ].val
		r, _ := t.delete(right, t.nodes[succ].key)
		t.nodes[n].right = r
	}

	return t.rebalance(n), true
}

// rebalance restores the AVL property at n after a deletion below it.
// Unlike insertion, the rotation is chosen from the children's balance.
func (t *AVLTree[K, V]) rebalance(n int32) int32 {
	t.update(n)

	switch bf := t.balance(n); {
	case bf > 1:
		if t.balance(t.nodes[n].left) >= 0 {
			return t.rotateRight(n)
		}
		l := t.rotateLeft(t.nodes[n].left)
		t.nodes[n].left = l
		return t.rotateRight(n)
	case bf < -1:
		if t.balance(t.nodes[n].right) <= 0 {
			return t.rotateLeft(n)
		}
		r := t.rotateRight(t.nodes[n].right)
		t.nodes[n].right = r
		return t.rotateLeft(n)
	}
	return n
}

func (t *AVLTree[K, V]) rotateRight(z int32) int32 {
	y := t.nodes[z].left
	t.nodes[z].left = t.nodes[y].right
	t.nodes[y].right = z
	t.update(z)
	t.update(y)
	return y
}

func (t *AVLTree[K, V]) rotateLeft(z int32) int32 {
	y := t.nodes[z].right
	t.nodes[z].right = t.nodes[y].left
	t.nodes[y].left = z
	t.update(z)
	t.update(y)
	return y
}

// ---- internal helpers ----

func (t *AVLTree[K, V]) update(n int32) {
	nd := &t.nodes[n]
	l, r := &t.nodes[nd.left], &t.nodes[nd.right]
	nd.height = 1 + max(l.height, r.height)
	nd.size = 1 + l.size + r.size
}

func (t *AVLTree[K, V]) balance(n int32) int32 {
	if n == nilNode {
		return 0
	}
	nd := &t.nodes[n]
	return t.nodes[nd.left].height - t.nodes[nd.right].height
}

func (t *AVLTree[K, V]) find(key K) int32 {
	n := t.root
	for n != nilNode {
		c := t.cmp(key, t.nodes[n].key)
		if c < 0 {
			n = t.nodes[n].left
		} else if c > 0 {
			n = t.nodes[n].right
		} else {
			return n
		}
	}
	return nilNode
}

func (t *AVLTree[K, V]) min(n int32) int32 {
	for n != nilNode && t.nodes[n].left != nilNode {
		n = t.nodes[n].left
	}
	return n
}

func (t *AVLTree[K, V]) entry(n int32) (K, V, bool) {
	if n == nilNode {
		var (
			k K
			v V
		)
		return k, v, false
	}
	return t.nodes[n].key, t.nodes[n].val, true
}

func (t *AVLTree[K, V]) alloc(key K, val V) int32 {
	nd := avlNode[K, V]{key: key, val: val, height: 1, size: 1}
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[idx] = nd
		return idx
	}
	t.nodes = append(t.nodes, nd)
	return int32(len(t.nodes) - 1)
}

func (t *AVLTree[K, V]) release(n int32) {
	t.nodes[n] = avlNode[K, V]{}
	t.free = append(t.free, n)
}
