package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

const typeColumns = `key, owner_id, name, category, icon, color, is_default, is_active`

func scanType(sc rowScanner) (*models.InvestmentType, error) {
	it := &models.InvestmentType{}
	var category string
	err := sc.Scan(&it.Key, &it.OwnerID, &it.Name, &category, &it.Icon, &it.Color, &it.IsDefault, &it.IsActive)
	if err != nil {
		return nil, err
	}
	it.Category = models.Category(category)
	return it, nil
}

// ListTypes returns registry entries of the owner in insertion order
func (s *Storage) ListTypes(ctx context.Context, ownerID string) ([]*models.InvestmentType, error) {
	query := `SELECT ` + typeColumns + ` FROM investment_types WHERE owner_id = ? ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query investment types: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	types := []*models.InvestmentType{}
	for rows.Next() {
		it, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment type: %w", err)
		}
		types = append(types, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return types, nil
}

// GetType retrieves a single entry
func (s *Storage) GetType(ctx context.Context, ownerID, key string) (*models.InvestmentType, error) {
	query := `SELECT ` + typeColumns + ` FROM investment_types WHERE owner_id = ? AND key = ?`

	it, err := scanType(s.db.QueryRowContext(ctx, query, ownerID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTypeNotFound
		}
		return nil, fmt.Errorf("failed to get investment type: %w", err)
	}

	return it, nil
}

// CreateTypes appends entries to the owner's registry in one transaction
func (s *Storage) CreateTypes(ctx context.Context, types []*models.InvestmentType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO investment_types (key, owner_id, name, category, icon, color, is_default, is_active, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM investment_types WHERE owner_id = ?))
	`

	for _, it := range types {
		_, err := tx.ExecContext(ctx, query,
			it.Key, it.OwnerID, it.Name, string(it.Category), it.Icon, it.Color,
			it.IsDefault, it.IsActive, it.OwnerID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrTypeAlreadyExists
			}
			return fmt.Errorf("failed to insert investment type %s: %w", it.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit investment types: %w", err)
	}

	return nil
}

// SetTypeActive toggles visibility of an entry
func (s *Storage) SetTypeActive(ctx context.Context, ownerID, key string, active bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE investment_types SET is_active = ? WHERE owner_id = ? AND key = ?`,
		active, ownerID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to update investment type: %w", err)
	}

	return expectAffected(result, storage.ErrTypeNotFound)
}

// DeleteType removes an entry
func (s *Storage) DeleteType(ctx context.Context, ownerID, key string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM investment_types WHERE owner_id = ? AND key = ?`,
		ownerID, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete investment type: %w", err)
	}

	return expectAffected(result, storage.ErrTypeNotFound)
}
