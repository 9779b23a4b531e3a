package quality

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Check is a single data-quality assertion: a query returning one
// numeric value, compared against optional lower and upper bounds.
type Check struct {
	Name  string
	Query string // one %s placeholder for the schema name
	Min   *float64
	Max   *float64
}

// Result is the outcome of one check.
type Result struct {
	Name   string
	Value  float64
	Passed bool
}

// Report collects the outcomes of a scan.
type Report struct {
	Results []Result
}

// Failed counts failing checks.
func (r Report) Failed() int {
	var n int
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Err returns a non-nil error naming the failing checks, or nil when
// all passed.
func (r Report) Err() error {
	var failed []string
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("data quality scan failed: %s", strings.Join(failed, ", "))
}

func bound(v float64) *float64 { return &v }

// rawTableChecks assert the raw table holds fresh, complete, plausible
// rows before any transformation runs.
var rawTableChecks = []Check{
	{
		Name:  "row_count_positive",
		Query: "SELECT COUNT(*) FROM %s.raw_weather_data",
		Min:   bound(1),
	},
	{
		Name:  "no_missing_city",
		Query: "SELECT COUNT(*) FROM %s.raw_weather_data WHERE city IS NULL OR city = ''",
		Max:   bound(0),
	},
	{
		Name:  "no_missing_temperature",
		Query: "SELECT COUNT(*) FROM %s.raw_weather_data WHERE temp IS NULL",
		Max:   bound(0),
	},
	{
		Name:  "temperature_lower_bound",
		Query: "SELECT COALESCE(MIN(temp), 0) FROM %s.raw_weather_data",
		Min:   bound(-60),
	},
	{
		Name:  "temperature_upper_bound",
		Query: "SELECT COALESCE(MAX(temp), 0) FROM %s.raw_weather_data",
		Max:   bound(60),
	},
	{
		Name:  "wind_speed_non_negative",
		Query: "SELECT COALESCE(MIN(wind_speed), 0) FROM %s.raw_weather_data",
		Min:   bound(0),
	},
	{
		Name:  "freshness_within_hour",
		Query: "SELECT EXTRACT(EPOCH FROM (NOW() - COALESCE(MAX(inserted_at), NOW()))) FROM %s.raw_weather_data",
		Max:   bound(3600),
	},
}

// Runner executes data-quality checks against the raw table.
type Runner struct {
	db     *sql.DB
	schema string
	checks []Check
	log    *zap.SugaredLogger
}

// NewRunner creates a Runner with the standard raw-table checks.
func NewRunner(db *sql.DB, schema string, log *zap.SugaredLogger) *Runner {
	return &Runner{
		db:     db,
		schema: schema,
		checks: rawTableChecks,
		log:    log,
	}
}

// Scan runs every check and returns the full report. A query error
// aborts the scan; a failed assertion does not, so the report names
// every failing check at once.
func (r *Runner) Scan(ctx context.Context) (Report, error) {
	report := Report{Results: make([]Result, 0, len(r.checks))}

	for _, check := range r.checks {
		var value float64
		query := fmt.Sprintf(check.Query, r.schema)
		if err := r.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
			return report, fmt.Errorf("check %s: %w", check.Name, err)
		}

		passed := true
		if check.Min != nil && value < *check.Min {
			passed = false
		}
		if check.Max != nil && value > *check.Max {
			passed = false
		}

		if passed {
			r.log.Infow("check passed", "check", check.Name, "value", value)
		} else {
			r.log.Warnw("check failed", "check", check.Name, "value", value)
		}
		report.Results = append(report.Results, Result{Name: check.Name, Value: value, Passed: passed})
	}

	return report, nil
}
