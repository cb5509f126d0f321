package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/nhle/taskdock/internal/bus"
	"github.com/nhle/taskdock/internal/model"
)

// busyTimeoutMS is how long a connection waits for another process's
// writer transaction before failing with SQLITE_BUSY.
const busyTimeoutMS = 5000

// SQLiteStore implements the Store interface on a SQLite file shared by
// every process of the app.
//
// Single-record writes are serialised by writeMu, which stands in for the
// process's primary execution context. Batch operations take the same lock
// and publish only after their last commit. Cross-process exclusion is left
// to SQLite: WAL journaling for concurrent readers and immediate transactions
// for a single writer.
type SQLiteStore struct {
	db       *sqlx.DB
	path     string
	readOnly bool
	shared   bool
	caps     model.Capabilities

	bus            *bus.Bus
	reminders      Reminders
	categoryPolicy CategoryPolicy
	now            func() time.Time

	writeMu sync.Mutex
	remMu   sync.RWMutex
}

// Option customises a SQLiteStore at construction.
type Option func(*SQLiteStore)

// WithBus publishes changes on b instead of a bus owned by the store.
func WithBus(b *bus.Bus) Option {
	return func(s *SQLiteStore) { s.bus = b }
}

// WithReminders installs the reminder reconciliation hook.
func WithReminders(r Reminders) Option {
	return func(s *SQLiteStore) { s.reminders = r }
}

// WithCategoryPolicy sets how unresolvable category ids are handled.
func WithCategoryPolicy(p CategoryPolicy) Option {
	return func(s *SQLiteStore) { s.categoryPolicy = p }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// Open opens the shared store under cfg.SharedRoot. When the shared location
// is unreachable it falls back to a local-only store under cfg.LocalDir;
// Shared reports which one was opened.
func Open(cfg model.StoreConfig, opts ...Option) (*SQLiteStore, error) {
	var sharedErr error
	if cfg.SharedRoot == "" {
		sharedErr = errors.New("no shared root configured")
	} else {
		path := model.SharedStorePath(cfg.SharedRoot)
		s, err := NewSQLiteStore(path, opts...)
		if err == nil {
			s.shared = true
			return s, nil
		}
		sharedErr = err
	}

	local := model.LocalStorePath(cfg.LocalDir)
	log.Warn().Err(sharedErr).Str("fallback", local).
		Msg("shared store unavailable, using local-only store")

	s, err := NewSQLiteStore(local, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, errors.Join(sharedErr, err))
	}
	return s, nil
}

// NewSQLiteStore opens (or creates) a writable SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store directory: %w", ErrStoreUnavailable, err)
	}

	db, err := sqlx.Open("sqlite", dsn(dbPath, false))
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite db: %w", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %w", ErrStoreUnavailable, dbPath, err)
	}

	s := newStore(db, dbPath, false, opts)
	version, err := s.runMigrations()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	s.caps = model.CapabilitiesForVersion(version)

	return s, nil
}

// OpenReadOnly opens an existing store without migrating it. Capabilities
// reflect whatever schema version the file currently has.
func OpenReadOnly(dbPath string) (*SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	db, err := sqlx.Open("sqlite", dsn(dbPath, true))
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite db: %w", ErrStoreUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %w", ErrStoreUnavailable, dbPath, err)
	}

	s := newStore(db, dbPath, true, nil)
	version, err := schemaVersion(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, persistErr("reading schema version", err)
	}
	s.caps = model.CapabilitiesForVersion(version)

	return s, nil
}

func newStore(db *sqlx.DB, path string, readOnly bool, opts []Option) *SQLiteStore {
	s := &SQLiteStore{
		db:       db,
		path:     path,
		readOnly: readOnly,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = bus.New()
	}
	return s
}

// dsn builds the modernc connection string. Pragmas are applied to every
// pooled connection, not just the first one.
func dsn(path string, readOnly bool) string {
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMS),
		"_pragma=foreign_keys(1)",
		"_time_format=sqlite",
	}
	if readOnly {
		params = append(params, "mode=ro")
	} else {
		params = append(params, "_pragma=journal_mode(WAL)", "_txlock=immediate")
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Close closes the underlying database connection and ends every bus
// subscription.
func (s *SQLiteStore) Close() error {
	s.bus.Close()
	return s.db.Close()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Shared reports whether the store was opened at the shared location.
func (s *SQLiteStore) Shared() bool { return s.shared }

// ReadOnly reports whether the store rejects writes.
func (s *SQLiteStore) ReadOnly() bool { return s.readOnly }

// Capabilities returns the schema features computed at open time.
func (s *SQLiteStore) Capabilities() model.Capabilities { return s.caps }

// Bus returns the change bus the store publishes on.
func (s *SQLiteStore) Bus() *bus.Bus { return s.bus }

// SetReminders installs the reminder hook after construction, for schedulers
// that need the opened store's capabilities.
func (s *SQLiteStore) SetReminders(r Reminders) {
	s.remMu.Lock()
	s.reminders = r
	s.remMu.Unlock()
}

func (s *SQLiteStore) currentReminders() Reminders {
	s.remMu.RLock()
	defer s.remMu.RUnlock()
	return s.reminders
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order, inside one immediate transaction so
// concurrently starting processes cannot migrate twice.
func (s *SQLiteStore) runMigrations() (int, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, persistErr("beginning migration transaction", err)
	}
	defer tx.Rollback()

	currentVersion, err := schemaVersion(ctx, tx)
	if err != nil {
		return 0, persistErr("reading schema version", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return 0, persistErr(fmt.Sprintf("applying migration v%d", m.version), err)
		}
		log.Debug().Int("version", m.version).Str("path", s.path).Msg("applied schema migration")
		currentVersion = m.version
	}

	if err := tx.Commit(); err != nil {
		return 0, persistErr("committing migrations", err)
	}
	return currentVersion, nil
}

// schemaVersion returns the recorded schema version, 0 for an empty file.
func schemaVersion(ctx context.Context, q sqlx.QueryerContext) (int, error) {
	var tableCount int
	err := sqlx.GetContext(ctx, q, &tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return 0, err
	}
	if tableCount == 0 {
		return 0, nil
	}

	var version int
	if err := sqlx.GetContext(ctx, q, &version,
		"SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return 0, err
	}
	return version, nil
}

// checkWritable rejects writes on read-only handles.
func (s *SQLiteStore) checkWritable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// stamp returns a modification time strictly after prev.
func (s *SQLiteStore) stamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// publish fans a change out on the specific topic and on DataChanged.
func (s *SQLiteStore) publish(topic bus.Topic, p bus.Payload) {
	s.bus.Publish(topic, p)
	if topic != bus.DataChanged {
		s.bus.Publish(bus.DataChanged, p)
	}
}

// publishTask publishes a single-task change.
func (s *SQLiteStore) publishTask(kind bus.ChangeKind, t model.Task) {
	p := bus.Payload{ID: t.ID, Kind: kind, IsCompleted: Ptr(t.IsCompleted)}
	if t.CategoryID != nil {
		p.CategoryID = *t.CategoryID
	}
	s.publish(bus.TasksChanged, p)
}

// reschedule hands the committed task to the reminder hook. Failures are
// logged: the task write itself already succeeded.
func (s *SQLiteStore) reschedule(ctx context.Context, t model.Task) {
	r := s.currentReminders()
	if r == nil {
		return
	}
	if err := r.Reschedule(ctx, t); err != nil {
		log.Warn().Err(err).Str("task_id", t.ID).Msg("rescheduling reminder")
	}
}

// cancelReminder removes any registration for the task.
func (s *SQLiteStore) cancelReminder(ctx context.Context, taskID string) {
	r := s.currentReminders()
	if r == nil {
		return
	}
	if err := r.Cancel(ctx, taskID); err != nil {
		log.Warn().Err(err).Str("task_id", taskID).Msg("cancelling reminder")
	}
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// utcPtr normalises an optional timestamp to UTC so stored values compare
// correctly as text.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
