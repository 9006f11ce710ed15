package cardcache

import "errors"

var (
	// ErrNotInitialized is returned by mutating calls made before Initialize.
	ErrNotInitialized = errors.New("cardcache: engine not initialized")
	// ErrMissingBasicInfo is returned when a detail record is written for an
	// id that has no basic (A/B) records.
	ErrMissingBasicInfo = errors.New("cardcache: basic info missing")
	// ErrInvalidID is returned for blank identifiers.
	ErrInvalidID = errors.New("cardcache: invalid id")
)
