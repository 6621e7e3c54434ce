package repository

import "errors"

// Adapter-neutral failures. Every store implementation translates its
// driver's own sentinels into these so services never import a driver.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrStale means a conditional update found the record in a different
	// state than the caller expected.
	ErrStale = errors.New("record changed concurrently")
	// ErrMalformed is returned when a stored document does not match the
	// expected shape.
	ErrMalformed = errors.New("malformed record")
)
