package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	createSchemaStmt = `CREATE SCHEMA IF NOT EXISTS %s`

	createTableStmt = `
		CREATE TABLE IF NOT EXISTS %s.raw_weather_data(
			id SERIAL PRIMARY KEY,
			city TEXT,
			temp FLOAT,
			weather_description TEXT,
			wind_speed FLOAT,
			time TIMESTAMP,
			inserted_at TIMESTAMP DEFAULT NOW(),
			utc_offset TEXT
		)`
)

// EnsureSchema creates the target schema and raw table if they do not
// exist. Both statements run in a single transaction so the schema is
// never half-created. Idempotent.
func (p *Pool) EnsureSchema(ctx context.Context, conn *sql.Conn) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &SchemaError{Err: err}
	}

	stmts := []string{
		fmt.Sprintf(createSchemaStmt, p.schema),
		fmt.Sprintf(createTableStmt, p.schema),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			p.log.Errorw("failed to create table",
				"schema", p.schema,
				"table", "raw_weather_data",
				"error", err,
			)
			return &SchemaError{Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &SchemaError{Err: err}
	}

	p.log.Infow("table ready", "schema", p.schema, "table", "raw_weather_data")
	return nil
}
