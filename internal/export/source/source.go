// Package source fetches the records behind each bundle from the backing
// store, scoped to one event of one company.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/eventexport/internal/export/record"
)

// Scope identifies the event being exported and who asked for it.
type Scope struct {
	EventID   string
	CompanyID string
	UserID    string
	EventName string
}

// Validate checks the scope names one event and one company.
func (s Scope) Validate() error {
	if s.EventID == "" || s.CompanyID == "" {
		return ErrInvalidScope
	}
	return nil
}

// Filters restrict a store query. EventID and CompanyID are mandatory.
type Filters struct {
	EventID   string
	CompanyID string
	OrderBy   string
}

// Store is the read-only backing store boundary.
type Store interface {
	Query(ctx context.Context, table string, f Filters) ([]record.Record, error)
}

// Fetcher returns the records for one bundle.
type Fetcher func(ctx context.Context, scope Scope) ([]record.Record, error)

// Result is the outcome of a registry fetch.
type Result struct {
	Records []record.Record
	// Degraded is set when a recoverable fetch error was swallowed and
	// Records is empty because of it.
	Degraded bool
	Cause    error
}

// Registry maps bundle ids to fetchers.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{fetchers: make(map[string]Fetcher), logger: slog.Default()}
}

// WithLogger sets the logger used to report swallowed fetch errors.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Register binds a fetcher to a bundle id, replacing any previous one.
func (r *Registry) Register(bundleID string, f Fetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[bundleID] = f
}

// Has reports whether a fetcher is registered for bundleID.
func (r *Registry) Has(bundleID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fetchers[bundleID]
	return ok
}

// Fetch runs the bundle's fetcher. A FetchError is recovered into an empty,
// degraded Result; every other error is returned.
func (r *Registry) Fetch(ctx context.Context, bundleID string, scope Scope) (Result, error) {
	if err := scope.Validate(); err != nil {
		return Result{}, err
	}

	r.mu.RLock()
	f, ok := r.fetchers[bundleID]
	r.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNoFetcher, bundleID)
	}

	records, err := f(ctx, scope)
	if err != nil {
		if errors.Is(err, ErrFetch) {
			r.logger.WarnContext(ctx, "fetch degraded to empty result",
				slog.String("bundle_id", bundleID),
				slog.String("event_id", scope.EventID),
				slog.String("error", err.Error()),
			)
			return Result{Degraded: true, Cause: err}, nil
		}
		return Result{}, fmt.Errorf("fetching %s: %w", bundleID, err)
	}
	return Result{Records: records}, nil
}
