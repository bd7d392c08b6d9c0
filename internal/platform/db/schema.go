package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Execer is the subset of pgxpool.Pool used to run DDL.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type tableDefinition struct {
	Name string
	DDL  string
}

var tableDefinitions = []tableDefinition{
	{
		Name: "employee",
		DDL: `CREATE TABLE IF NOT EXISTS employee (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL UNIQUE,
    job_title VARCHAR(255) NOT NULL,
    phone_number VARCHAR(15),
    email VARCHAR(255),
    address VARCHAR(255),
    city VARCHAR(50),
    state VARCHAR(50)
  )`,
	},
	{
		Name: "emergency_contact",
		DDL: `CREATE TABLE IF NOT EXISTS emergency_contact (
    id BIGSERIAL PRIMARY KEY,
    primary_emergency_contact VARCHAR(255) NOT NULL,
    emergency_contact_phone VARCHAR(15),
    relationship VARCHAR(50),
    employee_id BIGINT NOT NULL REFERENCES employee(id) ON DELETE CASCADE
  )`,
	},
	{
		Name: "secondary_emergency_contact",
		DDL: `CREATE TABLE IF NOT EXISTS secondary_emergency_contact (
    id BIGSERIAL PRIMARY KEY,
    secondary_emergency_contact VARCHAR(255) NOT NULL,
    s_emergency_contact_phone VARCHAR(15),
    s_relationship VARCHAR(50),
    employee_id BIGINT NOT NULL REFERENCES employee(id) ON DELETE CASCADE
  )`,
	},
}

type TableResult struct {
	Table string
	Err   error
}

// EnsureSchema creates the directory tables if they do not exist. Every
// statement is attempted and logged on its own; failures are returned in the
// results but never stop the remaining statements.
func EnsureSchema(ctx context.Context, exec Execer, logger zerolog.Logger) []TableResult {
	results := make([]TableResult, 0, len(tableDefinitions))
	for _, def := range tableDefinitions {
		_, err := exec.Exec(ctx, def.DDL)
		if err != nil {
			logger.Error().Err(err).Str("table", def.Name).Msg("table creation failed")
		} else {
			logger.Info().Str("table", def.Name).Msg("table ready")
		}
		results = append(results, TableResult{Table: def.Name, Err: err})
	}
	return results
}
