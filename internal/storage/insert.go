package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/justemzy101/weather-data-pipeline/internal/retry"
	"github.com/justemzy101/weather-data-pipeline/internal/weather"
)

const insertStmt = `
	INSERT INTO %s.raw_weather_data
	(city, temp, weather_description, wind_speed, time, inserted_at, utc_offset)
	VALUES ($1, $2, $3, $4, $5, NOW(), $6)`

// InsertObservation maps the payload into a row and commits it inside a
// transaction. The whole transaction is retried on the pool's backoff
// schedule, which gives at-least-once semantics: a retry racing a
// slow commit can produce a duplicate row. There is no idempotency key
// in the schema, so duplicates are accepted rather than deduplicated.
func (p *Pool) InsertObservation(ctx context.Context, conn *sql.Conn, payload weather.Payload) error {
	obs, err := payload.Observation(p.now())
	if err != nil {
		return &InsertError{Err: err}
	}

	err = retry.Do(ctx, p.log, p.retryCfg, func(ctx context.Context) error {
		return p.insertOnce(ctx, conn, obs)
	})
	if err != nil {
		p.log.Errorw("failed to insert record", "city", obs.City, "error", err)
		return &InsertError{Err: err}
	}

	p.log.Infow("data inserted successfully",
		"city", obs.City,
		"temperature", obs.Temperature,
	)
	return nil
}

func (p *Pool) insertOnce(ctx context.Context, conn *sql.Conn, obs weather.Observation) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf(insertStmt, p.schema)
	if _, err := tx.ExecContext(ctx, stmt,
		obs.City,
		obs.Temperature,
		obs.Description,
		obs.WindSpeed,
		obs.ObservedAt,
		obs.UTCOffset,
	); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
