package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/wealthvault/internal/client/storage"
)

// На устройстве хранится одна сессия
var sessionKey = []byte("session")

// SaveAuth replaces the stored session. Tokens arrive already encrypted.
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	raw, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.put(bucketAuth, sessionKey, raw); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetAuth returns storage.ErrAuthNotFound before the first login and after logout
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	raw, err := s.get(bucketAuth, sessionKey, storage.ErrAuthNotFound)
	if err != nil {
		return nil, err
	}

	var auth storage.AuthData
	if err := json.Unmarshal(raw, &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &auth, nil
}

func (s *Storage) DeleteAuth(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAuth)
		if b.Get(sessionKey) == nil {
			return storage.ErrAuthNotFound
		}
		return b.Delete(sessionKey)
	})
}
