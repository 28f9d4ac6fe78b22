package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	keyLastReload = "last_reload"
)

// SaveLastReload saves the time of the last successful reload
func (s *Storage) SaveLastReload(ctx context.Context, at time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		// Храним unix nano в big endian
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(at.UnixNano()))

		if err := tx.Bucket(bucketMetadata).Put([]byte(keyLastReload), buf); err != nil {
			return fmt.Errorf("failed to save last reload time: %w", err)
		}
		return nil
	})
}

// GetLastReload returns the time of the last successful reload
// Returns zero time if the list was never loaded
func (s *Storage) GetLastReload(ctx context.Context) (time.Time, error) {
	var at time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		buf := tx.Bucket(bucketMetadata).Get([]byte(keyLastReload))
		if len(buf) != 8 {
			return nil
		}
		at = time.Unix(0, int64(binary.BigEndian.Uint64(buf)))
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last reload time: %w", err)
	}

	return at, nil
}
