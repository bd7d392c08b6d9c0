package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Create inserts the employee and its contacts in a single transaction and
// returns the employee with its generated id.
func (s *Store) Create(ctx context.Context, emp Employee, contacts []EmergencyContact, secondary []SecondaryEmergencyContact) (*Employee, error) {
	created := emp
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO employee (name, job_title, phone_number, email, address, city, state)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      RETURNING id
    `, nullIfEmpty(emp.Name), nullIfEmpty(emp.JobTitle), emp.PhoneNumber, emp.Email, emp.Address, emp.City, emp.State).Scan(&created.ID); err != nil {
			return fmt.Errorf("employee: insert %q: %w", emp.Name, translatePgError(err))
		}

		if err := insertEmergencyContacts(ctx, tx, created.ID, contacts); err != nil {
			return err
		}
		return insertSecondaryContacts(ctx, tx, created.ID, secondary)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ReplaceByName overwrites the scalar fields of the named employee and
// swaps both contact collections for the supplied ones, all in one
// transaction. A name that matches no row is not an error; the transaction
// commits without touching any contacts and the returned bool is false.
func (s *Store) ReplaceByName(ctx context.Context, name string, fields Fields, contacts []EmergencyContact, secondary []SecondaryEmergencyContact) (bool, error) {
	matched := false
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var employeeID int64
		err := tx.QueryRow(ctx, `
      UPDATE employee
      SET job_title = $1, phone_number = $2, email = $3, address = $4, city = $5, state = $6
      WHERE name = $7
      RETURNING id
    `, nullIfEmpty(fields.JobTitle), fields.PhoneNumber, fields.Email, fields.Address, fields.City, fields.State, name).Scan(&employeeID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("employee: update %q: %w", name, translatePgError(err))
		}
		matched = true

		if _, err := tx.Exec(ctx, `DELETE FROM emergency_contact WHERE employee_id = $1`, employeeID); err != nil {
			return fmt.Errorf("employee: clear emergency contacts: %w", err)
		}
		if err := insertEmergencyContacts(ctx, tx, employeeID, contacts); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM secondary_emergency_contact WHERE employee_id = $1`, employeeID); err != nil {
			return fmt.Errorf("employee: clear secondary emergency contacts: %w", err)
		}
		return insertSecondaryContacts(ctx, tx, employeeID, secondary)
	})
	if err != nil {
		return false, err
	}
	return matched, nil
}

// DeleteByName removes the named employee; contacts go with it through
// the cascading foreign keys.
func (s *Store) DeleteByName(ctx context.Context, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM employee WHERE name = $1`, name)
		if err != nil {
			return fmt.Errorf("employee: delete %q: %w", name, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM employee`)
		if err != nil {
			return fmt.Errorf("employee: delete all: %w", err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func insertEmergencyContacts(ctx context.Context, tx pgx.Tx, employeeID int64, contacts []EmergencyContact) error {
	for _, contact := range contacts {
		if _, err := tx.Exec(ctx, `
      INSERT INTO emergency_contact (primary_emergency_contact, emergency_contact_phone, relationship, employee_id)
      VALUES ($1,$2,$3,$4)
    `, nullIfEmpty(contact.Name), contact.Phone, contact.Relationship, employeeID); err != nil {
			return fmt.Errorf("employee: insert emergency contact: %w", translatePgError(err))
		}
	}
	return nil
}

func insertSecondaryContacts(ctx context.Context, tx pgx.Tx, employeeID int64, contacts []SecondaryEmergencyContact) error {
	for _, contact := range contacts {
		if _, err := tx.Exec(ctx, `
      INSERT INTO secondary_emergency_contact (secondary_emergency_contact, s_emergency_contact_phone, s_relationship, employee_id)
      VALUES ($1,$2,$3,$4)
    `, nullIfEmpty(contact.Name), contact.Phone, contact.Relationship, employeeID); err != nil {
			return fmt.Errorf("employee: insert secondary emergency contact: %w", translatePgError(err))
		}
	}
	return nil
}
