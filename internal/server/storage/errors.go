package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrInvalidToken indicates that token format is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrPolicyNotFound indicates that the record does not exist or belongs to another owner
	ErrPolicyNotFound = errors.New("policy not found")

	// ErrShareNotFound indicates that guardian share was not found
	ErrShareNotFound = errors.New("share not found")

	// ErrTypeNotFound indicates that investment type was not found
	ErrTypeNotFound = errors.New("investment type not found")

	// ErrTypeAlreadyExists indicates that investment type key is taken for this owner
	ErrTypeAlreadyExists = errors.New("investment type already exists")

	// ErrBlobNotFound indicates that stored document was not found
	ErrBlobNotFound = errors.New("document not found")
)
