package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/models"
)

var (
	// ErrUnscopedQuery is returned when a query omits the event or company.
	ErrUnscopedQuery = errors.New("query must be scoped to an event and a company")
	// ErrUnknownTable is returned for tables outside models.EventTables.
	ErrUnknownTable = errors.New("unknown event table")
	// ErrInvalidOrder is returned for an order clause that is not a column name.
	ErrInvalidOrder = errors.New("invalid order column")
)

var orderPattern = regexp.MustCompile(`^[a-z_]+( (ASC|DESC))?$`)

// recordRepo implements RecordRepository using GORM.
type recordRepo struct {
	db *gorm.DB
}

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(db *gorm.DB) *recordRepo {
	return &recordRepo{db: db}
}

func (r *recordRepo) scoped(ctx context.Context, table string, f source.Filters) (*gorm.DB, error) {
	if f.EventID == "" || f.CompanyID == "" {
		return nil, ErrUnscopedQuery
	}
	if !slices.Contains(models.EventTables, table) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return r.db.WithContext(ctx).
		Table(table).
		Where("event_id = ? AND company_id = ? AND deleted_at IS NULL", f.EventID, f.CompanyID), nil
}

// Query returns every live row of table for the filtered event. JSON
// columns are decoded into nested maps.
func (r *recordRepo) Query(ctx context.Context, table string, f source.Filters) ([]record.Record, error) {
	q, err := r.scoped(ctx, table, f)
	if err != nil {
		return nil, err
	}
	if f.OrderBy != "" {
		if !orderPattern.MatchString(f.OrderBy) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, f.OrderBy)
		}
		q = q.Order(f.OrderBy + ", id")
	} else {
		q = q.Order("id")
	}

	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, classify(ctx, table, err)
	}

	jsonCols := models.JSONColumns[table]
	out := make([]record.Record, len(rows))
	for i, row := range rows {
		for _, col := range jsonCols {
			row[col] = decodeJSON(row[col])
		}
		out[i] = record.Record(row)
	}
	return out, nil
}

// Count returns the number of live rows of table for the filtered event.
func (r *recordRepo) Count(ctx context.Context, table string, f source.Filters) (int64, error) {
	q, err := r.scoped(ctx, table, f)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, classify(ctx, table, err)
	}
	return n, nil
}

// classify maps driver errors onto recoverable fetch errors. Cancellation is
// returned unchanged so the job fails instead of degrading.
func classify(ctx context.Context, table string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	kind := source.FetchTransport
	switch {
	case strings.Contains(msg, "no such table"), strings.Contains(msg, "does not exist"),
		strings.Contains(msg, "doesn't exist"):
		kind = source.FetchNotFound
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "access denied"):
		kind = source.FetchPermission
	}
	return &source.FetchError{Kind: kind, Table: table, Err: err}
}

func decodeJSON(v any) any {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		return v
	}
	if len(raw) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}
