package chronoval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	// SQLite driver using pure Go implementation
	_ "modernc.org/sqlite"
)

// SQLiteStore persists versioned values in a SQLite database, one encoded
// history blob per key. Retention is enforced on every write so stored
// history never exceeds the configured policy, and blobs are sealed when
// encryption is enabled. The blob format is readable with standard SQLite
// tools plus the chronoval codec.
type SQLiteStore struct {
	db        *sql.DB
	config    Config
	clock     *TxClock
	encryptor *Encryptor

	mu     sync.RWMutex
	closed bool

	upsertStmt *sql.Stmt
	selectStmt *sql.Stmt
	deleteStmt *sql.Stmt
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (creating if necessary) a SQLite-backed store.
// A nil clock defaults to the system wall clock.
func OpenSQLiteStore(cfg Config, clock Clock) (*SQLiteStore, error) {
	cfg = cfg.withDefaults()

	encryptor, err := NewEncryptor(cfg.Encryption)
	if err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_cache_size=%d&_journal_mode=%s&_synchronous=%s&_busy_timeout=%d",
		cfg.Store.Path, cfg.Store.CacheSize, cfg.Store.JournalMode,
		cfg.Store.Synchronous, cfg.Store.BusyTimeout)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(cfg.Store.MaxConnections)
	db.SetMaxIdleConns(cfg.Store.MaxConnections / 2)

	store := &SQLiteStore{
		db:        db,
		config:    cfg,
		clock:     NewTxClock(clock),
		encryptor: encryptor,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS versioned_values (
			key        TEXT PRIMARY KEY,
			history    BLOB NOT NULL,
			entries    INTEGER NOT NULL,
			first_ts   INTEGER NOT NULL,
			last_ts    INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_values_last_ts
			ON versioned_values(last_ts);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error
	s.upsertStmt, err = s.db.Prepare(`
		INSERT INTO versioned_values (key, history, entries, first_ts, last_ts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			history = excluded.history,
			entries = excluded.entries,
			first_ts = excluded.first_ts,
			last_ts = excluded.last_ts,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	s.selectStmt, err = s.db.Prepare(`SELECT history FROM versioned_values WHERE key = ?`)
	if err != nil {
		return err
	}
	s.deleteStmt, err = s.db.Prepare(`DELETE FROM versioned_values WHERE key = ?`)
	return err
}

// Clock returns the store's transaction clock, for hosts that manage
// unit-of-work boundaries around multiple writes.
func (s *SQLiteStore) Clock() *TxClock {
	return s.clock
}

// Put stores a versioned value under key, replacing any existing value.
// Retention is applied before storing; the caller's value is not modified.
func (s *SQLiteStore) Put(ctx context.Context, key string, v *VersionedInt) error {
	if v == nil || v.History().Len() == 0 {
		return ErrEmptyHistory
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	trimmed := s.config.Retention.Apply(v.History(), time.Now())
	if trimmed.Len() == 0 {
		// Retention dropped every entry. Remove the row rather than store
		// an empty blob.
		return s.Delete(ctx, key)
	}
	return s.write(ctx, key, &VersionedInt{hist: trimmed})
}

func (s *SQLiteStore) write(ctx context.Context, key string, v *VersionedInt) error {
	blob, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	if s.encryptor != nil {
		if blob, err = s.encryptor.Seal(blob); err != nil {
			return err
		}
	}

	h := v.History()
	first, _ := h.First()
	last, _ := h.Last()
	_, err = s.upsertStmt.ExecContext(ctx, key, blob, h.Len(),
		first.Timestamp, last.Timestamp, time.Now().UnixNano())
	return err
}

// Get loads the versioned value stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*VersionedInt, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.selectStmt.QueryRowContext(ctx, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if IsSealed(blob) {
		if blob, err = Unseal(s.config.Encryption, blob); err != nil {
			return nil, err
		}
	}
	return UnmarshalVersionedInt(blob)
}

// Append loads, appends at the unit-of-work write time, trims, and stores.
func (s *SQLiteStore) Append(ctx context.Context, key string, value int64) (*VersionedInt, error) {
	return s.append(ctx, key, func(existing *VersionedInt) (*VersionedInt, error) {
		return Assign(existing, value, s.clock, s.config.Limits)
	})
}

// AppendAt is Append with an explicit timestamp, inserted in sorted
// position. Retention is still applied: both entry points go through the
// same write path.
func (s *SQLiteStore) AppendAt(ctx context.Context, key string, value, timestamp int64) (*VersionedInt, error) {
	return s.append(ctx, key, func(existing *VersionedInt) (*VersionedInt, error) {
		return AssignAt(existing, value, timestamp, s.config.Limits)
	})
}

func (s *SQLiteStore) append(ctx context.Context, key string, assign func(*VersionedInt) (*VersionedInt, error)) (*VersionedInt, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next, err := assign(existing)
	if err != nil {
		return nil, err
	}

	trimmed := s.config.Retention.Apply(next.History(), time.Now())
	stored := &VersionedInt{hist: trimmed}
	if err := s.write(ctx, key, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Keys lists all stored keys in lexical order.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM versioned_values ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes a stored value.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	_, err := s.deleteStmt.ExecContext(ctx, key)
	return err
}

// Close releases the store's resources.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	for _, stmt := range []*sql.Stmt{s.upsertStmt, s.selectStmt, s.deleteStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}

func (s *SQLiteStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
