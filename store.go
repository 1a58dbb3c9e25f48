package chronoval

import "context"

// Store persists versioned values keyed by column/row key. Implementations
// apply the configured retention policy on every write, so readers always
// see already-trimmed history, and encrypt blobs when configured.
type Store interface {
	// Put stores a versioned value under key, replacing any existing value.
	Put(ctx context.Context, key string, v *VersionedInt) error

	// Get loads the versioned value stored under key. Returns ErrNotFound
	// when the key has never been written.
	Get(ctx context.Context, key string) (*VersionedInt, error)

	// Append performs the read-modify-write assignment cycle: load the
	// existing value (if any), append the scalar at the unit-of-work write
	// time, enforce retention, and store the successor.
	Append(ctx context.Context, key string, value int64) (*VersionedInt, error)

	// AppendAt is Append with an explicit, possibly backfilled timestamp.
	AppendAt(ctx context.Context, key string, value, timestamp int64) (*VersionedInt, error)

	// Keys lists all stored keys.
	Keys(ctx context.Context) ([]string, error)

	// Delete removes a stored value.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}
