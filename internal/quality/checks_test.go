package quality

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

// expectScan queues one result row per check, in declaration order.
func expectScan(mock sqlmock.Sqlmock, values []float64) {
	for i, check := range rawTableChecks {
		mock.ExpectQuery(queryPattern(check)).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(values[i]))
	}
}

func queryPattern(c Check) string {
	// Match on the check's distinctive tail rather than the full
	// query, which contains regex metacharacters.
	switch c.Name {
	case "row_count_positive":
		return "FROM dev.raw_weather_data$"
	case "no_missing_city":
		return "WHERE city IS NULL"
	case "no_missing_temperature":
		return "WHERE temp IS NULL"
	case "temperature_lower_bound":
		return "MIN\\(temp\\)"
	case "temperature_upper_bound":
		return "MAX\\(temp\\)"
	case "wind_speed_non_negative":
		return "MIN\\(wind_speed\\)"
	default:
		return "inserted_at"
	}
}

func TestScanAllChecksPass(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	expectScan(mock, []float64{5, 0, 0, 2, 2, 0, 60})

	report, err := NewRunner(db, "dev", zap.NewNop().Sugar()).Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed() != 0 {
		t.Fatalf("failed checks = %d, want 0: %+v", report.Failed(), report.Results)
	}
	if report.Err() != nil {
		t.Fatalf("expected nil report error, got %v", report.Err())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestScanReportsAllFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	// Empty table and an implausible maximum temperature.
	expectScan(mock, []float64{0, 0, 0, 2, 75, 0, 60})

	report, err := NewRunner(db, "dev", zap.NewNop().Sugar()).Scan(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed() != 2 {
		t.Fatalf("failed checks = %d, want 2: %+v", report.Failed(), report.Results)
	}

	repErr := report.Err()
	if repErr == nil {
		t.Fatal("expected a report error")
	}
	for _, name := range []string{"row_count_positive", "temperature_upper_bound"} {
		if !strings.Contains(repErr.Error(), name) {
			t.Errorf("report error should name %s, got %q", name, repErr.Error())
		}
	}
}

func TestScanAbortsOnQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM dev.raw_weather_data$").
		WillReturnError(errors.New("relation does not exist"))

	_, err = NewRunner(db, "dev", zap.NewNop().Sugar()).Scan(context.Background())
	if err == nil {
		t.Fatal("expected an error when a check query fails")
	}
	if !strings.Contains(err.Error(), "row_count_positive") {
		t.Errorf("error should name the check, got %q", err.Error())
	}
}
