// Package memory provides the low-level storage primitive shared by the
// scheduling engine: Slab, a typed slot arena handing out stable integer
// handles. Entities are stored once in a Slab and every index over them
// (trees, maps) refers to the handle rather than to a copy.
//
// The memory package is dependency-free and single-writer.
package memory
