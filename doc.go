// Package chronoval implements an append-only, time-versioned integer value
// usable as a database column type, together with the spatial-index
// primitives that accelerate point-in-time queries over many such values.
//
// A VersionedInt records every value it has ever held, tagged with the
// wall-clock instant of assignment; assignments within one unit of work
// share a single instant (TxClock). Histories are immutable copy-on-write
// snapshots: readers holding an older snapshot are never affected by a
// later append. RetentionPolicy trims stored history by count or age on the
// write path, and ValueAt answers "what was the value at time T" by binary
// search.
//
// For indexing, each history is summarized by a Rect over (time, value)
// whose upper time bound is open ended, since a live value stays current
// until superseded. The primitives in spatial.go (Consistent, UnionAll,
// Penalty, PickSplit, SameRect, Compress/Decompress) are everything a
// rectangle tree needs to organize those summaries; RTree is a small
// in-process index built on them, and SQLiteStore persists encoded
// histories with retention applied on every write.
package chronoval
