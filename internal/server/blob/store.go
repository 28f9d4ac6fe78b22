// Package blob хранит загруженные документы полисов в BoltDB.
// Каждый документ адресуется ключом, который входит в публичный URL.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/iudanet/wealthvault/internal/server/storage"
)

// MaxSize upload limit for a single document
const MaxSize = 10 << 20

var (
	// ErrTooLarge file exceeds MaxSize
	ErrTooLarge = errors.New("file exceeds 10 MB limit")
	// ErrUnsupportedType file extension is not accepted
	ErrUnsupportedType = errors.New("unsupported file type, allowed: pdf, jpg, jpeg, png")
)

var (
	bucketData = []byte("blobs")
	bucketMeta = []byte("blob_meta")
)

// contentTypes разрешенные расширения и их MIME типы
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Object metadata of a stored document
type Object struct {
	CreatedAt         time.Time `json:"created_at"`
	Key               string    `json:"key"`
	OwnerID           string    `json:"owner_id"`
	Filename          string    `json:"filename"`
	ContentType       string    `json:"content_type"`
	Size              int64     `json:"size"`
	PasswordProtected bool      `json:"password_protected"`
}

// Store BoltDB implementation of the document store
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the blob database at path
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketData, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Validate checks the upload limits: extension and size
func Validate(filename string, size int64) error {
	if _, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; !ok {
		return ErrUnsupportedType
	}
	if size > MaxSize {
		return ErrTooLarge
	}
	return nil
}

// ContentType returns the MIME type for an accepted filename
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Key builds a unique storage key preserving a sanitized file name
func Key(filename string) string {
	base := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	return uuid.New().String() + "_" + strings.Trim(base, "_")
}

// Put stores a document and returns its metadata
func (s *Store) Put(ctx context.Context, ownerID, filename string, data []byte, passwordProtected bool) (*Object, error) {
	if err := Validate(filename, int64(len(data))); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj := &Object{
		Key:               Key(filename),
		OwnerID:           ownerID,
		Filename:          filepath.Base(filename),
		ContentType:       ContentType(filename),
		Size:              int64(len(data)),
		PasswordProtected: passwordProtected,
		CreatedAt:         time.Now().UTC(),
	}

	meta, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blob metadata: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketData).Put([]byte(obj.Key), data); err != nil {
			return fmt.Errorf("failed to save blob: %w", err)
		}
		if err := tx.Bucket(bucketMeta).Put([]byte(obj.Key), meta); err != nil {
			return fmt.Errorf("failed to save blob metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return obj, nil
}

// Get returns metadata and content of a document
// Returns storage.ErrBlobNotFound if key is unknown
func (s *Store) Get(ctx context.Context, key string) (*Object, []byte, error) {
	var obj *Object
	var data []byte

	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta).Get([]byte(key))
		if meta == nil {
			return storage.ErrBlobNotFound
		}

		obj = &Object{}
		if err := json.Unmarshal(meta, obj); err != nil {
			return fmt.Errorf("failed to unmarshal blob metadata: %w", err)
		}

		// Данные валидны только внутри транзакции, копируем
		content := tx.Bucket(bucketData).Get([]byte(key))
		data = make([]byte, len(content))
		copy(data, content)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return obj, data, nil
}
