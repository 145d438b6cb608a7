package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates the unique email index rejected a write.
	ErrDuplicateEmail = errors.New("repository: email already registered")
	// ErrDuplicatePhone indicates the unique phone index rejected a write.
	ErrDuplicatePhone = errors.New("repository: phone number already registered")
)
