package transform

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Materialization decides how a model's SELECT is persisted.
type Materialization string

const (
	View  Materialization = "view"
	Table Materialization = "table"
)

// Model is one SQL transformation over the raw table. SQL is a SELECT
// statement with %[1]s placeholders for the schema name; models run in
// declaration order so later models may read earlier ones.
type Model struct {
	Name            string
	Materialization Materialization
	SQL             string
}

// models mirror the original project's dbt models: a staging view that
// renames and deduplicates the raw rows, plus two downstream tables.
var models = []Model{
	{
		Name:            "stg_weather_data",
		Materialization: View,
		SQL: `
			SELECT id, city, temp AS temperature, weather_description,
			       wind_speed, time AS observed_at, inserted_at, utc_offset
			FROM (
				SELECT *, ROW_NUMBER() OVER (
					PARTITION BY city, time ORDER BY inserted_at DESC
				) AS row_num
				FROM %[1]s.raw_weather_data
			) ranked
			WHERE row_num = 1`,
	},
	{
		Name:            "daily_average",
		Materialization: Table,
		SQL: `
			SELECT city,
			       DATE(observed_at) AS observation_date,
			       AVG(temperature) AS avg_temperature,
			       AVG(wind_speed) AS avg_wind_speed,
			       COUNT(*) AS observation_count
			FROM %[1]s.stg_weather_data
			GROUP BY city, DATE(observed_at)`,
	},
	{
		Name:            "weather_report",
		Materialization: Table,
		SQL: `
			SELECT DISTINCT ON (city)
			       city, temperature, weather_description,
			       wind_speed, observed_at, utc_offset
			FROM %[1]s.stg_weather_data
			ORDER BY city, observed_at DESC`,
	},
}

// Runner materializes the SQL models into the target schema.
type Runner struct {
	db     *sql.DB
	schema string
	models []Model
	log    *zap.SugaredLogger
}

// NewRunner creates a Runner with the standard model set.
func NewRunner(db *sql.DB, schema string, log *zap.SugaredLogger) *Runner {
	return &Runner{
		db:     db,
		schema: schema,
		models: models,
		log:    log,
	}
}

// Run materializes every model in order, each inside its own
// transaction. The first failing model aborts the run.
func (r *Runner) Run(ctx context.Context) error {
	for _, m := range r.models {
		if err := r.runModel(ctx, m); err != nil {
			r.log.Errorw("model failed", "model", m.Name, "error", err)
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
		r.log.Infow("model materialized", "model", m.Name, "materialization", m.Materialization)
	}
	return nil
}

func (r *Runner) runModel(ctx context.Context, m Model) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	selectSQL := fmt.Sprintf(m.SQL, r.schema)
	var stmts []string
	switch m.Materialization {
	case View:
		stmts = []string{
			fmt.Sprintf("CREATE OR REPLACE VIEW %s.%s AS %s", r.schema, m.Name, selectSQL),
		}
	case Table:
		stmts = []string{
			fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", r.schema, m.Name),
			fmt.Sprintf("CREATE TABLE %s.%s AS %s", r.schema, m.Name, selectSQL),
		}
	default:
		tx.Rollback()
		return fmt.Errorf("unknown materialization %q", m.Materialization)
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
