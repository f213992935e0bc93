package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the query constraints.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when creating a user with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email already registered")
)
