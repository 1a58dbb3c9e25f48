package chronoval

// Entry represents a single recorded assignment of a versioned value:
// the integer value and the Unix nanosecond timestamp at which it was set.
type Entry struct {
	// Value is the recorded integer value.
	Value int64
	// Timestamp is the assignment time in Unix nanoseconds.
	Timestamp int64
}

// entrySize is the in-memory footprint of one entry in bytes, used for
// buffer size accounting against Limits.MaxBufferBytes.
const entrySize = 16
