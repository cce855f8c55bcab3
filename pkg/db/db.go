package db

import (
	"context"
	"fmt"
	"spacecore/pkg/config"
	"spacecore/pkg/logger"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB :
// Wraps a `pgxpool.Pool` to provide the optional persisted backing
// for the event journal (§6 "Persisted state layout"). The core's
// `WorldRepository` itself is in-memory (see `internal/world`); this
// object is only consulted by the event journal writer when
// `Database.Enabled` is set, mirroring the teacher's `pkg/db.DB`
// which hides the retry-until-connected dance behind a thin wrapper
// rather than failing hard the first time the DB is unreachable.
//
// The `pool` holds a reference to the established connection pool.
// It is `nil` until a connection attempt succeeds.
//
// The `lock` protects `pool` from concurrent access, notably the
// periodic healthcheck racing against a caller issuing a query.
//
// The `logger` is used to notify connection attempts and failures.
//
// The `config` carries the connection parameters.
type DB struct {
	pool   *pgxpool.Pool
	lock   sync.Mutex
	logger logger.Logger
	config config.DatabaseConfig
}

// NewPool :
// Builds a new DB wrapper and attempts an initial connection. The
// connection is retried periodically by a healthcheck ticker rather
// than blocking construction; callers must tolerate `Exec` returning
// an error until the pool comes online.
//
// The `cfg` carries the connection parameters.
//
// The `log` is used to notify of connection attempts and failures.
//
// Returns the created wrapper.
func NewPool(cfg config.DatabaseConfig, log logger.Logger) *DB {
	dbase := &DB{
		logger: log,
		config: cfg,
	}

	if !cfg.Enabled {
		return dbase
	}

	dbase.connect()

	ticker := time.NewTicker(5 * time.Second)
	go func() {
		for range ticker.C {
			dbase.Healthcheck()
		}
	}()

	return dbase
}

// connect :
// Attempts to establish the connection pool described by the config.
// The connection is only assigned to the internal pool field if the
// attempt succeeds.
func (dbase *DB) connect() {
	cfg := dbase.config

	dbase.logger.Trace(logger.Info, "db", fmt.Sprintf("connecting to %q (user: %q, host: %s:%d)", cfg.Name, cfg.User, cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		dbase.logger.Trace(logger.Warning, "db", fmt.Sprintf("failed to connect to %q (err: %v)", cfg.Name, err))
		return
	}

	dbase.lock.Lock()
	defer dbase.lock.Unlock()
	dbase.pool = pool

	dbase.logger.Trace(logger.Info, "db", fmt.Sprintf("connection to %q established", cfg.Name))
}

// Healthcheck :
// Verifies that the connection pool is still usable and schedules a
// new connection attempt otherwise.
func (dbase *DB) Healthcheck() {
	dbase.lock.Lock()
	pool := dbase.pool
	dbase.lock.Unlock()

	if pool == nil {
		dbase.connect()
		return
	}

	if err := pool.Ping(context.Background()); err != nil {
		dbase.logger.Trace(logger.Warning, "db", fmt.Sprintf("lost connection (err: %v), reconnecting", err))
		dbase.connect()
	}
}

// Exec :
// Executes the input statement against the pool, failing fast if no
// connection has been established yet.
func (dbase *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgx.CommandTag, error) {
	dbase.lock.Lock()
	pool := dbase.pool
	dbase.lock.Unlock()

	if pool == nil {
		return pgx.CommandTag{}, fmt.Errorf("cannot execute query: no active connection to %q", dbase.config.Name)
	}

	return pool.Exec(ctx, sql, args...)
}

// Query :
// Runs a read query against the pool, failing fast if no connection
// has been established yet.
func (dbase *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	dbase.lock.Lock()
	pool := dbase.pool
	dbase.lock.Unlock()

	if pool == nil {
		return nil, fmt.Errorf("cannot execute query: no active connection to %q", dbase.config.Name)
	}

	return pool.Query(ctx, sql, args...)
}

// Enabled :
// Reports whether this wrapper was configured to actually maintain a
// database connection.
func (dbase *DB) Enabled() bool {
	return dbase.config.Enabled
}
