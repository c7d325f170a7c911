package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
var (
	// ErrNoDataDir is returned when no data directory is configured.
	ErrNoDataDir = errors.New("no data directory configured")

	// ErrInvalidCatalogBackend is returned for a catalog backend other than json or sqlite.
	ErrInvalidCatalogBackend = errors.New("invalid catalog backend: must be json or sqlite")

	// ErrInvalidTimeout is returned when any timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrRequestTimeoutTooLong is returned when the per-request timeout exceeds
	// the whole-resource timeout it is part of.
	ErrRequestTimeoutTooLong = errors.New("invalid request timeout: must not exceed the resource timeout")

	// ErrInvalidMaxBodyBytes is returned when the body cap is not positive.
	ErrInvalidMaxBodyBytes = errors.New("invalid max body bytes: must be positive")

	// ErrInvalidMaxContentChars is returned when the content ceiling is not positive.
	ErrInvalidMaxContentChars = errors.New("invalid max content chars: must be positive")

	// ErrRequestTimeoutAboveLimit is returned when the request timeout exceeds 10s.
	ErrRequestTimeoutAboveLimit = errors.New("invalid request timeout: must not exceed 10s")

	// ErrResourceTimeoutAboveLimit is returned when the resource timeout exceeds 15s.
	ErrResourceTimeoutAboveLimit = errors.New("invalid resource timeout: must not exceed 15s")

	// ErrMaxBodyBytesAboveLimit is returned when the body cap exceeds 1,000,000 bytes.
	ErrMaxBodyBytesAboveLimit = errors.New("invalid max body bytes: must not exceed 1000000")

	// ErrMaxContentCharsAboveLimit is returned when the content ceiling exceeds 50,000 characters.
	ErrMaxContentCharsAboveLimit = errors.New("invalid max content chars: must not exceed 50000")
)
