package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("athlete not found")
	ErrDuplicate      = errors.New("athlete already exists")
	ErrInvalidLimit   = errors.New("invalid page limit")
	ErrUnknownDriver  = errors.New("unknown store driver")
	ErrDirtyMigration = errors.New("database schema is dirty")
)
