// Package snapshot writes the active schedule to disk when a run ends, so
// the final state of a simulation can be inspected afterwards. Snapshots
// are never loaded back into a scheduler.
package snapshot
