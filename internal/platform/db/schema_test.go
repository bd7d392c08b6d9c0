package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
)

func TestEnsureSchemaCreatesAllTables(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	for _, table := range []string{"employee", "emergency_contact", "secondary_emergency_contact"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " (")).
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	}

	results := EnsureSchema(context.Background(), mock, zerolog.Nop())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("table %s: unexpected error %v", res.Table, res.Err)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	ddlErr := errors.New("permission denied")
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS employee (")).
		WillReturnError(ddlErr)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS emergency_contact (")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS secondary_emergency_contact (")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	results := EnsureSchema(context.Background(), mock, zerolog.Nop())

	if !errors.Is(results[0].Err, ddlErr) {
		t.Fatalf("expected first table to report %v, got %v", ddlErr, results[0].Err)
	}
	if results[1].Err != nil || results[2].Err != nil {
		t.Fatalf("expected remaining tables to succeed, got %+v", results[1:])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestChildTablesCascade(t *testing.T) {
	t.Parallel()

	for _, def := range tableDefinitions[1:] {
		if !regexp.MustCompile(`REFERENCES employee\(id\) ON DELETE CASCADE`).MatchString(def.DDL) {
			t.Errorf("table %s must cascade deletes from employee", def.Name)
		}
	}
}
