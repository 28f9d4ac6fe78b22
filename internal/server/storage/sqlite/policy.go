package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

const policyColumns = `id, owner_id, kind, name, policy_number, premium_amount, payment_frequency,
	next_due_date, maturity_date, nominee_name, coverage_amount, document_refs,
	password_protected, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicyRow(sc rowScanner) (*storage.PolicyRow, error) {
	row := &storage.PolicyRow{}
	err := sc.Scan(
		&row.ID,
		&row.OwnerID,
		&row.Kind,
		&row.Name,
		&row.PolicyNumber,
		&row.PremiumAmount,
		&row.PaymentFrequency,
		&row.NextDueDate,
		&row.MaturityDate,
		&row.NomineeName,
		&row.CoverageAmount,
		&row.DocumentRefs,
		&row.PasswordProtected,
		&row.Status,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	return row, err
}

// ListPolicies returns all records of the owner, newest first
func (s *Storage) ListPolicies(ctx context.Context, ownerID string) ([]*models.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE owner_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []*models.PolicyRecord{}
	for rows.Next() {
		row, err := scanPolicyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		records = append(records, storage.DeserializePolicy(row))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return records, nil
}

// GetPolicy retrieves a single record of the owner
func (s *Storage) GetPolicy(ctx context.Context, ownerID, id string) (*models.PolicyRecord, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE owner_id = ? AND id = ?`

	row, err := scanPolicyRow(s.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	return storage.DeserializePolicy(row), nil
}

// CreatePolicy inserts a new record
func (s *Storage) CreatePolicy(ctx context.Context, record *models.PolicyRecord) error {
	return s.CreatePolicies(ctx, []*models.PolicyRecord{record})
}

// CreatePolicies inserts records in one transaction
func (s *Storage) CreatePolicies(ctx context.Context, records []*models.PolicyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `INSERT INTO policies (` + policyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, record := range records {
		row := storage.SerializePolicy(record)
		_, err := stmt.ExecContext(ctx,
			row.ID,
			row.OwnerID,
			row.Kind,
			row.Name,
			row.PolicyNumber,
			row.PremiumAmount,
			row.PaymentFrequency,
			row.NextDueDate,
			row.MaturityDate,
			row.NomineeName,
			row.CoverageAmount,
			row.DocumentRefs,
			row.PasswordProtected,
			row.Status,
			row.CreatedAt,
			row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert policy %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit policies: %w", err)
	}

	return nil
}

// UpdatePolicy replaces mutable columns; id, owner and created_at never change
func (s *Storage) UpdatePolicy(ctx context.Context, record *models.PolicyRecord) error {
	query := `
		UPDATE policies
		SET kind = ?, name = ?, policy_number = ?, premium_amount = ?, payment_frequency = ?,
			next_due_date = ?, maturity_date = ?, nominee_name = ?, coverage_amount = ?,
			document_refs = ?, password_protected = ?, status = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?
	`

	row := storage.SerializePolicy(record)
	result, err := s.db.ExecContext(ctx, query,
		row.Kind,
		row.Name,
		row.PolicyNumber,
		row.PremiumAmount,
		row.PaymentFrequency,
		row.NextDueDate,
		row.MaturityDate,
		row.NomineeName,
		row.CoverageAmount,
		row.DocumentRefs,
		row.PasswordProtected,
		row.Status,
		row.UpdatedAt,
		row.OwnerID,
		row.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}

	return expectAffected(result, storage.ErrPolicyNotFound)
}

// UpdatePolicyStatus rewrites only the status column
func (s *Storage) UpdatePolicyStatus(ctx context.Context, ownerID, id string, status models.Status) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE policies SET status = ? WHERE owner_id = ? AND id = ?`,
		string(status), ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update policy status: %w", err)
	}

	return expectAffected(result, storage.ErrPolicyNotFound)
}

// CountPolicies returns the number of records of the owner
func (s *Storage) CountPolicies(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM policies WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count policies: %w", err)
	}
	return n, nil
}
