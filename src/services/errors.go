package services

import (
	"errors"

	"github.com/username/investfolio/backend/src/store"
)

var (
	// ErrUnknownSource means no parser is registered for the statement source.
	ErrUnknownSource = errors.New("unknown statement source")
	// ErrParsingFailed wraps statement parse failures.
	ErrParsingFailed = errors.New("statement parsing failed")
	// ErrFileUnreadable means the statement file could not be opened or read.
	// Fatal for that file only.
	ErrFileUnreadable = errors.New("statement file unreadable")
	// ErrStoreUnavailable aborts the whole file; the caller may retry later.
	ErrStoreUnavailable = store.ErrUnavailable
)
