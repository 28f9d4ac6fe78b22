package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/wealthvault/internal/models"
	"github.com/iudanet/wealthvault/internal/server/storage"
)

const shareColumns = `id, owner_id, options, created_at, expires_at, revoked_at`

func scanShare(sc rowScanner) (*models.GuardianShare, error) {
	share := &models.GuardianShare{}
	var options, createdAt, expiresAt string
	var revokedAt sql.NullString

	if err := sc.Scan(&share.ID, &share.OwnerID, &options, &createdAt, &expiresAt, &revokedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(options), &share.Options); err != nil {
		return nil, fmt.Errorf("failed to decode share options: %w", err)
	}
	share.CreatedAt = storage.ParseTime(createdAt)
	share.ExpiresAt = storage.ParseTime(expiresAt)
	share.RevokedAt = timeFromNull(revokedAt)

	return share, nil
}

// CreateShare stores a new share
func (s *Storage) CreateShare(ctx context.Context, share *models.GuardianShare) error {
	options, err := json.Marshal(share.Options)
	if err != nil {
		return fmt.Errorf("failed to encode share options: %w", err)
	}

	query := `INSERT INTO guardian_shares (` + shareColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		share.ID,
		share.OwnerID,
		string(options),
		storage.FormatTime(share.CreatedAt),
		storage.FormatTime(share.ExpiresAt),
		nullTime(share.RevokedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}

	return nil
}

// GetShare retrieves share by ID
func (s *Storage) GetShare(ctx context.Context, id string) (*models.GuardianShare, error) {
	query := `SELECT ` + shareColumns + ` FROM guardian_shares WHERE id = ?`

	share, err := scanShare(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return share, nil
}

// ListShares returns shares of the owner, newest first
func (s *Storage) ListShares(ctx context.Context, ownerID string) ([]*models.GuardianShare, error) {
	query := `SELECT ` + shareColumns + ` FROM guardian_shares WHERE owner_id = ? ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	shares := []*models.GuardianShare{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, share)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return shares, nil
}

// RevokeShare marks an active share of the owner as revoked
func (s *Storage) RevokeShare(ctx context.Context, ownerID, id string, revokedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE guardian_shares SET revoked_at = ? WHERE owner_id = ? AND id = ? AND revoked_at IS NULL`,
		storage.FormatTime(revokedAt), ownerID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke share: %w", err)
	}

	return expectAffected(result, storage.ErrShareNotFound)
}
