// Package engine executes parameterized statements against a relational
// database through database/sql. Connections come from the provider pool;
// when the pool is exhausted the engine falls back to a single retained
// backup connection, serialized by a dedicated lock.
package engine

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sqlbridge/sqlbridge/pkg/config"
	"github.com/sqlbridge/sqlbridge/pkg/database"
	"github.com/sqlbridge/sqlbridge/pkg/errcat"
	"github.com/sqlbridge/sqlbridge/pkg/logging"
	"github.com/sqlbridge/sqlbridge/pkg/utils"
)

// Engine owns the pool and the backup connection. Safe for concurrent use;
// the registries it reads are immutable and the backup connection is guarded
// by backupMu.
type Engine struct {
	db             *sql.DB
	provider       config.ProviderSettings
	acquireTimeout time.Duration
	log            *logging.Logger

	// backupMu serializes every operation against the backup connection.
	// It is taken when the backup is handed out and released when that
	// Connection is closed, so at most one caller uses it at a time.
	backupMu sync.Mutex

	// stateMu guards the backup pointer itself.
	stateMu sync.Mutex
	backup  *sql.Conn
}

// FromRegistry opens the active provider's pool and builds an engine around
// it. acquireTimeout bounds how long a connection acquire may block before
// the pool counts as exhausted.
func FromRegistry(reg *config.Registry, acquireTimeout time.Duration, log *logging.Logger) (*Engine, error) {
	provider, ok := database.Lookup(reg.ProviderName())
	if !ok {
		return nil, errcat.New("PROVIDER_NOT_FOUND", reg.ProviderName())
	}
	db, err := database.Open(provider, reg.ConnString())
	if err != nil {
		return nil, errcat.Wrap("CONNECTION_FAILED", reg.ProviderName(), err)
	}
	return New(db, reg.Provider(), acquireTimeout, log), nil
}

// New builds an engine over an already opened pool. Used directly by tests
// and by callers that manage the pool themselves.
func New(db *sql.DB, provider config.ProviderSettings, acquireTimeout time.Duration, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Default()
	}
	if acquireTimeout <= 0 {
		acquireTimeout = 2 * time.Second
	}
	return &Engine{
		db:             db,
		provider:       provider,
		acquireTimeout: acquireTimeout,
		log:            log,
	}
}

// Connection wraps one provider connection. Backup connections are shared:
// closing one releases the backup lock instead of the underlying handle.
type Connection struct {
	ID     string
	conn   *sql.Conn
	backup bool
	engine *Engine
	closed bool
}

// IsBackup reports whether this is the engine's retained backup connection.
func (c *Connection) IsBackup() bool {
	return c.backup
}

// Close releases the connection. Ordinary connections return to the pool;
// the backup connection stays open and only its lock is released. Safe to
// call more than once.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.backup {
		c.engine.backupMu.Unlock()
		return nil
	}
	return c.conn.Close()
}

// CreateConnection returns an open connection. The first connection the
// engine ever opens is retained as the backup and a second, ordinary one is
// returned. Once a backup exists, an acquire failure is treated as pool
// exhaustion and the backup is served under its lock; without a backup the
// failure is fatal.
func (e *Engine) CreateConnection(ctx context.Context) (*Connection, error) {
	if !e.hasBackup() {
		first, err := e.acquire(ctx)
		if err != nil {
			e.log.Critical("no connection available and no backup retained",
				err, zap.String("stage", "first-open"))
			return nil, errcat.Wrap("CONNECTION_FAILED", "first connection could not be opened", err)
		}
		if !e.adoptBackup(first) {
			// lost the race; another goroutine installed the backup,
			// hand this connection straight to the caller
			return &Connection{ID: utils.ConnectionID(), conn: first, engine: e}, nil
		}
	}

	conn, err := e.acquire(ctx)
	if err != nil {
		return e.serveBackup(ctx)
	}
	return &Connection{ID: utils.ConnectionID(), conn: conn, engine: e}, nil
}

// acquire pulls a connection from the pool, bounded by the acquire timeout.
// In database/sql pool exhaustion shows up as a blocked acquire, so the
// timeout is the exhaustion signal.
func (e *Engine) acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, e.acquireTimeout)
	defer cancel()
	return e.db.Conn(acquireCtx)
}

func (e *Engine) hasBackup() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.backup != nil
}

// adoptBackup installs conn as the backup. Returns false if another
// goroutine won the race, in which case conn stays with the caller.
func (e *Engine) adoptBackup(conn *sql.Conn) bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.backup != nil {
		return false
	}
	e.backup = conn
	e.log.Info("backup connection retained")
	return true
}

// serveBackup hands out the backup connection under its lock, reopening it
// first if it was left in a bad state.
func (e *Engine) serveBackup(ctx context.Context) (*Connection, error) {
	e.backupMu.Lock()

	e.stateMu.Lock()
	backup := e.backup
	e.stateMu.Unlock()

	if backup == nil || backup.PingContext(ctx) != nil {
		// free the dead backup's pool slot before reopening
		if backup != nil {
			backup.Close()
			e.stateMu.Lock()
			e.backup = nil
			e.stateMu.Unlock()
		}
		fresh, err := e.acquire(ctx)
		if err != nil {
			e.backupMu.Unlock()
			e.log.Critical("backup connection unusable and could not be reopened", err)
			return nil, errcat.Wrap("CONNECTION_FAILED", "backup connection could not be reopened", err)
		}
		e.stateMu.Lock()
		e.backup = fresh
		backup = fresh
		e.stateMu.Unlock()
	}

	e.log.Info("pool exhausted; serving backup connection")
	return &Connection{ID: utils.ConnectionID(), conn: backup, backup: true, engine: e}, nil
}

// Close releases the backup connection and the pool. Call once at process
// shutdown; in-flight backup users finish first because the backup lock is
// taken before the handle is closed.
func (e *Engine) Close() error {
	e.backupMu.Lock()
	defer e.backupMu.Unlock()

	e.stateMu.Lock()
	if e.backup != nil {
		e.backup.Close()
		e.backup = nil
	}
	e.stateMu.Unlock()

	return e.db.Close()
}
