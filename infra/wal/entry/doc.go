// Package entry implements the command journal: a segmented, append-only
// log of every command that mutated the schedule, framed with a CRC32
// checksum. A journal can be replayed to reproduce a run's transcript.
package entry
