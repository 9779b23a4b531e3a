package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/justemzy101/weather-data-pipeline/internal/retry"
)

var fastRetry = retry.Config{
	MaxAttempts:     3,
	InitialInterval: 5 * time.Millisecond,
	MaxInterval:     20 * time.Millisecond,
}

func newTestPool(t *testing.T) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	pool := NewPoolFromDB(db, PoolConfig{Schema: "dev", Retry: fastRetry}, zap.NewNop().Sugar())
	return pool, mock
}

func TestAcquireValidatesConnection(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	conn, err := pool.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conn.Close()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAcquireRetriesThenFails(t *testing.T) {
	pool, mock := newTestPool(t)

	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("connection refused"))
	}

	start := time.Now()
	_, err := pool.Acquire(context.Background())

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	// Two backoff delays on the compressed schedule: 5ms + 10ms.
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("backoff finished too fast: %v", elapsed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDisposeIdempotent(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectClose()

	if err := pool.Dispose(); err != nil {
		t.Fatalf("first dispose: %v", err)
	}
	if err := pool.Dispose(); err != nil {
		t.Fatalf("second dispose: %v", err)
	}

	// The pool is unusable afterwards.
	_, err := pool.Acquire(context.Background())
	if !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
}

func TestDisposeWithoutAcquire(t *testing.T) {
	pool, mock := newTestPool(t)
	mock.ExpectClose()

	if err := pool.Dispose(); err != nil {
		t.Fatalf("dispose without any acquire: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
