package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func testConn(t *testing.T, pool *Pool) *sql.Conn {
	t.Helper()
	conn, err := pool.db.Conn(context.Background())
	if err != nil {
		t.Fatalf("failed to grab connection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func expectSchemaDDL(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS dev").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dev.raw_weather_data").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
}

func TestEnsureSchemaRunsBothStatementsInOneTx(t *testing.T) {
	pool, mock := newTestPool(t)
	conn := testConn(t, pool)
	expectSchemaDDL(mock)

	if err := pool.EnsureSchema(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	pool, mock := newTestPool(t)
	conn := testConn(t, pool)
	for i := 0; i < 3; i++ {
		expectSchemaDDL(mock)
	}

	for i := 0; i < 3; i++ {
		if err := pool.EnsureSchema(context.Background(), conn); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i+1, err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaRollsBackOnFailure(t *testing.T) {
	pool, mock := newTestPool(t)
	conn := testConn(t, pool)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE SCHEMA IF NOT EXISTS dev").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dev.raw_weather_data").
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := pool.EnsureSchema(context.Background(), conn)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
