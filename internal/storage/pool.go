package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/justemzy101/weather-data-pipeline/internal/retry"
)

// Pool sizing mirrors the original deployment: 5 steady-state
// connections plus 10 overflow, recycled after an hour.
const (
	poolSize        = 5
	maxOverflow     = 10
	connMaxLifetime = time.Hour
)

// ErrPoolClosed is returned by Acquire after Dispose has run.
var ErrPoolClosed = errors.New("connection pool is closed")

// PoolConfig configures a Pool.
type PoolConfig struct {
	DSN    string
	Schema string
	Retry  retry.Config
}

// Pool is a bounded set of reusable Postgres connections owned by
// whoever constructed it. Connections are created lazily; Acquire
// validates each one with a round-trip query before handing it out.
type Pool struct {
	db       *sql.DB
	schema   string
	retryCfg retry.Config
	log      *zap.SugaredLogger
	now      func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewPool opens the database handle and applies the pool limits. No
// connection is established until the first Acquire.
func NewPool(cfg PoolConfig, log *zap.SugaredLogger) (*Pool, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	db.SetMaxIdleConns(poolSize)
	db.SetMaxOpenConns(poolSize + maxOverflow)
	db.SetConnMaxLifetime(connMaxLifetime)

	return newPool(db, cfg, log), nil
}

// NewPoolFromDB wraps an existing database handle. Used in tests.
func NewPoolFromDB(db *sql.DB, cfg PoolConfig, log *zap.SugaredLogger) *Pool {
	return newPool(db, cfg, log)
}

func newPool(db *sql.DB, cfg PoolConfig, log *zap.SugaredLogger) *Pool {
	schema := cfg.Schema
	if schema == "" {
		schema = "dev"
	}
	return &Pool{
		db:       db,
		schema:   schema,
		retryCfg: cfg.Retry,
		log:      log,
		now:      time.Now,
	}
}

// Acquire hands out a pooled connection validated with a trivial
// round-trip query. Transient failures are retried on the pool's
// backoff schedule; the final failure surfaces as a ConnectionError.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, &ConnectionError{Err: ErrPoolClosed}
	}

	var conn *sql.Conn
	err := retry.Do(ctx, p.log, p.retryCfg, func(ctx context.Context) error {
		c, err := p.db.Conn(ctx)
		if err != nil {
			p.log.Errorw("database connection failed", "error", err)
			return err
		}

		var one int
		if err := c.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			c.Close()
			p.log.Errorw("connection validation failed", "error", err)
			return err
		}

		conn = c
		return nil
	})
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	p.log.Infow("connected to database successfully")
	return conn, nil
}

// Dispose releases all pooled connections. Safe to call repeatedly and
// before any connection was ever acquired; the pool is unusable
// afterwards.
func (p *Pool) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("closing pool: %w", err)
	}
	p.log.Infow("connection pool disposed")
	return nil
}

// DB exposes the underlying handle for read-side consumers such as the
// quality and transform runners.
func (p *Pool) DB() *sql.DB { return p.db }

// Schema reports the target schema name.
func (p *Pool) Schema() string { return p.schema }
