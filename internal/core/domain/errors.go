package domain

import "errors"

var (
	ErrCursorInit          = errors.New("cursor initialization failed")
	ErrCursorUnset         = errors.New("cursor has not been initialized")
	ErrTickInFlight        = errors.New("previous poll tick still in flight")
	ErrInvalidOrganization = errors.New("invalid organization key")
	ErrInvalidCursor       = errors.New("invalid cursor")
	ErrStoreUnavailable    = errors.New("event store unavailable")
	ErrInvalidColor        = errors.New("invalid color")
	ErrEmptyPalette        = errors.New("palette must hold at least one color")
)
