// Package crypto производит ключи из master password и шифрует локальные данные клиента.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id
const (
	Argon2Time    = 1
	Argon2Memory  = 64 * 1024 // KB
	Argon2Threads = 4
	KeyLen        = 32
	SaltSize      = 32
)

// Keys производные ключи: AuthKey уходит на сервер только в виде хеша,
// EncryptionKey шифрует токены и кэш записей на диске.
type Keys struct {
	AuthKey       []byte
	EncryptionKey []byte
}

// GenerateSaltBase64 генерирует случайную публичную соль пользователя
func GenerateSaltBase64() (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveKeys генерирует два независимых ключа из master password.
// Ключи разделены context строкой.
func DeriveKeys(masterPassword, username string, salt []byte) (*Keys, error) {
	if masterPassword == "" {
		return nil, fmt.Errorf("master password cannot be empty")
	}
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	derive := func(context string) []byte {
		input := []byte(masterPassword + "\x00" + username + "\x00" + context)
		return argon2.IDKey(input, salt, Argon2Time, Argon2Memory, Argon2Threads, KeyLen)
	}

	return &Keys{
		AuthKey:       derive("wealthvault-auth"),
		EncryptionKey: derive("wealthvault-local"),
	}, nil
}

// DeriveKeysFromBase64Salt генерирует ключи из Base64-кодированной соли
func DeriveKeysFromBase64Salt(masterPassword, username, saltBase64 string) (*Keys, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveKeys(masterPassword, username, salt)
}

// HashAuthKey hex SHA256 от auth_key; сервер хранит bcrypt от этого значения
func HashAuthKey(authKey []byte) (string, error) {
	if len(authKey) == 0 {
		return "", fmt.Errorf("auth key cannot be empty")
	}
	sum := sha256.Sum256(authKey)
	return hex.EncodeToString(sum[:]), nil
}
