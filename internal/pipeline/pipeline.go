package pipeline

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/justemzy101/weather-data-pipeline/internal/weather"
)

// Fetcher obtains a raw weather payload from the source.
type Fetcher interface {
	Fetch(ctx context.Context) (weather.Payload, error)
}

// Store is the storage surface the driver needs: pooled connections,
// idempotent schema setup, transactional inserts, and disposal.
type Store interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
	EnsureSchema(ctx context.Context, conn *sql.Conn) error
	InsertObservation(ctx context.Context, conn *sql.Conn, payload weather.Payload) error
	Dispose() error
}

// Driver runs one ingestion pass: fetch, ensure schema, insert. Each
// step handles its own transient retries; the driver never retries
// across steps. The pool is disposed when the run finishes, on both the
// success and failure paths.
type Driver struct {
	fetcher Fetcher
	store   Store
	log     *zap.SugaredLogger
}

// New creates a Driver that takes ownership of the store's lifecycle.
func New(fetcher Fetcher, store Store, log *zap.SugaredLogger) *Driver {
	return &Driver{
		fetcher: fetcher,
		store:   store,
		log:     log,
	}
}

// Run executes the linear fetch -> ensure-schema -> insert sequence.
// The first step failure aborts the run and propagates unmodified.
func (d *Driver) Run(ctx context.Context) error {
	defer func() {
		if err := d.store.Dispose(); err != nil {
			d.log.Errorw("failed to dispose connection pool", "error", err)
		}
		d.log.Infow("pipeline execution finished")
	}()

	payload, err := d.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	conn, err := d.store.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := d.store.EnsureSchema(ctx, conn); err != nil {
		return err
	}

	if err := d.store.InsertObservation(ctx, conn, payload); err != nil {
		return err
	}

	d.log.Infow("data pipeline completed successfully")
	return nil
}
