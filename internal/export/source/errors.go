package source

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches every FetchError via errors.Is.
	ErrFetch = errors.New("fetch failed")

	// ErrNoFetcher is returned for a bundle id with no registered fetcher.
	ErrNoFetcher = errors.New("no fetcher registered for bundle")

	// ErrInvalidScope is returned when a scope does not name exactly one
	// event of one company.
	ErrInvalidScope = errors.New("scope must name an event and a company")
)

// FetchErrorKind classifies a recoverable fetch failure.
type FetchErrorKind string

const (
	FetchTransport  FetchErrorKind = "transport"
	FetchPermission FetchErrorKind = "permission"
	FetchNotFound   FetchErrorKind = "not_found"
)

// FetchError is a recoverable failure reading from the backing store. The
// registry turns it into an empty, degraded result instead of failing the job.
type FetchError struct {
	Kind  FetchErrorKind
	Table string
	Err   error
}

func (e *FetchError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s error querying %s: %v", e.Kind, e.Table, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrFetch as a match so callers need not type-assert.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}
