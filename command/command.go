// Package command defines the line-oriented command protocol of the
// scheduler: parsing `name(arg, ...)` lines and rendering scheduler
// results back into output lines.
package command

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

type Kind uint8

const (
	CreateOrder Kind = iota + 1
	CancelOrder
	UpdateTime
	PrintRange
	PrintOrder
	GetRankOfOrder
	Quit
)

func (k Kind) String() string {
	switch k {
	case CreateOrder:
		return "createOrder"
	case CancelOrder:
		return "cancelOrder"
	case UpdateTime:
		return "updateTime"
	case PrintRange, PrintOrder:
		return "print"
	case GetRankOfOrder:
		return "getRankOfOrder"
	case Quit:
		return "Quit"
	default:
		return "unknown"
	}
}

// Mutating reports whether commands of this kind change the schedule.
func (k Kind) Mutating() bool {
	return k == CreateOrder || k == CancelOrder || k == UpdateTime
}

// Journaled reports whether commands of this kind are written to the
// command journal: every mutation plus the terminating Quit.
func (k Kind) Journaled() bool {
	return k.Mutating() || k == Quit
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArity          = errors.New("wrong number of arguments")
	ErrSyntax         = errors.New("malformed command")
)

// Command is one parsed protocol line.
type Command struct {
	Kind Kind
	Args []int64
}

// Arg returns the i-th argument, or 0 if absent.
func (c Command) Arg(i int) int64 {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return 0
}

// String renders the canonical form of c, which Parse accepts.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Kind.String())
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(a, 10))
	}
	b.WriteByte(')')
	return b.String()
}

var linePattern = regexp.MustCompile(`^\s*(\w+)\((.*)\)\s*$`)

// Parse reads a single command line such as `createOrder(1, 0, 30, 10)`.
func Parse(line string) (Command, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Command{}, errors.Wrapf(ErrSyntax, "%q", line)
	}

	args, err := parseArgs(m[2])
	if err != nil {
		return Command{}, errors.Wrapf(err, "%q", line)
	}

	var kind Kind
	switch m[1] {
	case "createOrder":
		kind = CreateOrder
	case "cancelOrder":
		kind = CancelOrder
	case "updateTime":
		kind = UpdateTime
	case "print":
		kind = PrintOrder
		if len(args) == 2 {
			kind = PrintRange
		}
	case "getRankOfOrder":
		kind = GetRankOfOrder
	case "Quit":
		kind = Quit
	default:
		return Command{}, errors.Wrapf(ErrUnknownCommand, "%q", m[1])
	}

	if want := arity(kind); len(args) != want {
		return Command{}, errors.Wrapf(ErrArity, "%s takes %d, got %d", m[1], want, len(args))
	}
	return Command{Kind: kind, Args: args}, nil
}

func parseArgs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	args := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "argument %q", p), ErrSyntax)
		}
		args = append(args, v)
	}
	return args, nil
}

func arity(k Kind) int {
	switch k {
	case CreateOrder:
		return 4
	case UpdateTime:
		return 3
	case CancelOrder, PrintRange:
		return 2
	case PrintOrder, GetRankOfOrder:
		return 1
	default:
		return 0
	}
}
