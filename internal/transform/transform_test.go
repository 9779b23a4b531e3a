package transform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestRunMaterializesModelsInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	// stg_weather_data is a view, replaced in place.
	mock.ExpectBegin()
	mock.ExpectExec("CREATE OR REPLACE VIEW dev.stg_weather_data").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// daily_average and weather_report are tables, dropped and rebuilt.
	for _, name := range []string{"daily_average", "weather_report"} {
		mock.ExpectBegin()
		mock.ExpectExec("DROP TABLE IF EXISTS dev." + name).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE dev." + name + " AS").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	if err := NewRunner(db, "dev", zap.NewNop().Sugar()).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunAbortsOnModelFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE OR REPLACE VIEW dev.stg_weather_data").
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = NewRunner(db, "dev", zap.NewNop().Sugar()).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error when a model fails")
	}
	if !strings.Contains(err.Error(), "stg_weather_data") {
		t.Errorf("error should name the failing model, got %q", err.Error())
	}
	// Downstream models must not have run.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
