package storage

import "context"

// SnapshotStorage хранит последний загруженный список записей.
// Данные уже зашифрованы ключом сессии.
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, data []byte) error
	// GetSnapshot returns ErrSnapshotNotFound if nothing was cached
	GetSnapshot(ctx context.Context) ([]byte, error)
	DeleteSnapshot(ctx context.Context) error
}
