// Package service implements the use cases behind the HTTP API:
// policy records, the investment type registry, guardian shares and documents.
package service

import "errors"

var (
	// ErrAccessDenied is the only error a guardian resolve reports to the caller
	ErrAccessDenied = errors.New("access denied")
	// ErrDefaultType indicates an attempt to delete a built-in investment type
	ErrDefaultType = errors.New("default investment type cannot be deleted")
)
