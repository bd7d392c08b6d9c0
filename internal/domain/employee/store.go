package employee

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode  = "23505"
	notNullViolationCode = "23502"
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type Store struct {
	DB DB
}

func NewStore(db DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

// aggregateColumns is shared by List and GetByName. The employee columns
// come from the alias "e"; both contact tables are left joined so an
// employee without contacts still yields one row with NULL contact columns.
const aggregateColumns = `e.id, e.name, e.job_title, e.phone_number, e.email, e.address, e.city, e.state,
       ec.id, ec.primary_emergency_contact, ec.emergency_contact_phone, ec.relationship,
       sec.id, sec.secondary_emergency_contact, sec.s_emergency_contact_phone, sec.s_relationship`

const contactJoins = `
    LEFT JOIN emergency_contact ec ON ec.employee_id = e.id
    LEFT JOIN secondary_emergency_contact sec ON sec.employee_id = e.id`

// List returns one page of employees. LIMIT and OFFSET apply to employee
// rows in a CTE before the contact joins, so pageSize bounds the number of
// employees rather than the number of joined rows. A page whose offset does
// not fit in an int lies past any stored row and is returned empty.
func (s *Store) List(ctx context.Context, page, pageSize int) ([]Aggregate, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("employee: list: invalid page %d size %d", page, pageSize)
	}
	if page-1 > math.MaxInt/pageSize {
		return []Aggregate{}, nil
	}
	offset := (page - 1) * pageSize
	rows, err := s.DB.Query(ctx, `
    WITH e AS (
      SELECT id, name, job_title, phone_number, email, address, city, state
      FROM employee
      ORDER BY id
      LIMIT $1 OFFSET $2
    )
    SELECT `+aggregateColumns+`
    FROM e`+contactJoins+`
    ORDER BY e.id, ec.id, sec.id
  `, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("employee: list: %w", err)
	}

	out, err := collectAggregates(rows)
	if err != nil {
		return nil, fmt.Errorf("employee: list: %w", err)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(1) FROM employee`).Scan(&count); err != nil {
		return 0, fmt.Errorf("employee: count: %w", err)
	}
	return count, nil
}

// GetByName returns the employee with the given name and its contacts.
// ErrNotFound means no employee row matched; an employee without contacts
// is returned with empty collections.
func (s *Store) GetByName(ctx context.Context, name string) (*Aggregate, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+aggregateColumns+`
    FROM employee e`+contactJoins+`
    WHERE e.name = $1
    ORDER BY e.id, ec.id, sec.id
  `, name)
	if err != nil {
		return nil, fmt.Errorf("employee: get %q: %w", name, err)
	}

	out, err := collectAggregates(rows)
	if err != nil {
		return nil, fmt.Errorf("employee: get %q: %w", name, err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// collectAggregates groups joined rows by employee id in first-seen order.
// The double left join repeats each contact once per contact of the other
// kind, so contacts are de-duplicated by id.
func collectAggregates(rows pgx.Rows) ([]Aggregate, error) {
	defer rows.Close()

	var (
		order     []int64
		byID      = map[int64]*Aggregate{}
		seen      = map[int64]struct{}{}
		seenSec   = map[int64]struct{}{}
		employees = make([]Aggregate, 0)
	)

	for rows.Next() {
		var (
			emp                     Employee
			ecID                    *int64
			ecName, ecPhone, ecRel  *string
			secID                   *int64
			secName, secPhone, secR *string
		)
		if err := rows.Scan(
			&emp.ID, &emp.Name, &emp.JobTitle, &emp.PhoneNumber, &emp.Email, &emp.Address, &emp.City, &emp.State,
			&ecID, &ecName, &ecPhone, &ecRel,
			&secID, &secName, &secPhone, &secR,
		); err != nil {
			return nil, err
		}

		agg, ok := byID[emp.ID]
		if !ok {
			agg = &Aggregate{
				Employee:                   emp,
				EmergencyContacts:          []EmergencyContact{},
				SecondaryEmergencyContacts: []SecondaryEmergencyContact{},
			}
			byID[emp.ID] = agg
			order = append(order, emp.ID)
		}

		if ecName != nil && ecID != nil {
			if _, dup := seen[*ecID]; !dup {
				seen[*ecID] = struct{}{}
				agg.EmergencyContacts = append(agg.EmergencyContacts, EmergencyContact{
					ID:           *ecID,
					Name:         *ecName,
					Phone:        ecPhone,
					Relationship: ecRel,
				})
			}
		}

		if secName != nil && secID != nil {
			if _, dup := seenSec[*secID]; !dup {
				seenSec[*secID] = struct{}{}
				agg.SecondaryEmergencyContacts = append(agg.SecondaryEmergencyContacts, SecondaryEmergencyContact{
					ID:           *secID,
					Name:         *secName,
					Phone:        secPhone,
					Relationship: secR,
				})
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range order {
		employees = append(employees, *byID[id])
	}
	return employees, nil
}

// withTx runs fn in a transaction, committing on success and rolling back
// on any error returned by fn.
func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("employee: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("employee: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("employee: commit: %w", err)
	}
	return nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return ErrDuplicateName
		case notNullViolationCode:
			return fmt.Errorf("%w: %s", ErrMissingField, pgErr.ColumnName)
		}
	}
	return err
}

// nullIfEmpty sends an absent required string as NULL so the NOT NULL
// constraint rejects it. Any other value, blank or not, is stored as given.
func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
