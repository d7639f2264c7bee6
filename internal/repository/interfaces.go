// Package repository provides read access to event data for the exporters.
// Every query is pinned to one event of one company.
package repository

import (
	"context"

	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/models"
)

// RecordRepository reads loosely-typed rows from event tables.
type RecordRepository interface {
	source.Store
	// Count returns the number of scoped rows in table.
	Count(ctx context.Context, table string, f source.Filters) (int64, error)
}

// EventRepository resolves the events being exported.
type EventRepository interface {
	// GetByID retrieves an event owned by companyID. Returns nil when absent.
	GetByID(ctx context.Context, eventID, companyID models.ULID) (*models.Event, error)
	// GetAll retrieves every event, most recent start first.
	GetAll(ctx context.Context) ([]*models.Event, error)
}

var (
	_ RecordRepository = (*recordRepo)(nil)
	_ EventRepository  = (*eventRepo)(nil)
)
