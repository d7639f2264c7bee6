package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
)

// fakeStore serves canned tables and optional per-table errors.
type fakeStore struct {
	tables  map[string][]record.Record
	errs    map[string]error
	queries []Filters
}

func (s *fakeStore) Query(_ context.Context, table string, f Filters) ([]record.Record, error) {
	s.queries = append(s.queries, f)
	if err, ok := s.errs[table]; ok {
		return nil, err
	}
	return s.tables[table], nil
}

var testScope = Scope{EventID: "evt-1", CompanyID: "co-1", EventName: "Summit"}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tables: map[string][]record.Record{
			"guests": {
				{"id": "g1", "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com"},
				{"id": "g2", "firstName": "Alan", "lastName": "Turing", "email": "alan@example.com"},
			},
			"add_ons":       {{"id": "a1", "name": "Dinner", "price_cents": int64(8550), "currency": "GBP"}},
			"guest_add_ons": {{"guest_id": "g1", "add_on_id": "a1", "quantity": int64(2), "status": "confirmed"}},
			"modules": {
				{"id": "m1", "title": "Feedback", "module_type": "rating"},
				{"id": "m2", "title": "Photos", "module_type": "media"},
			},
			"module_responses": {
				{"module_id": "m1", "guest_id": "g1", "payload": map[string]any{"rating": 5.0}},
				{"module_id": "m2", "guest_id": "g2", "payload": map[string]any{"file_url": "https://cdn.example.com/a.jpg"}},
			},
			"messages":      {{"guest_id": "g2", "body": "hi"}},
			"announcements": {{"title": "Welcome", "image_url": "https://cdn.example.com/w.png"}, {"title": "No image"}},
			"itineraries":   {{"title": "Keynote", "attachment_url": "https://cdn.example.com/k.pdf"}},
			"activity_logs": {{"action": "guest.created"}},
		},
		errs: map[string]error{},
	}
}

func TestScope_Validate(t *testing.T) {
	assert.NoError(t, testScope.Validate())
	assert.ErrorIs(t, Scope{EventID: "e"}.Validate(), ErrInvalidScope)
	assert.ErrorIs(t, Scope{CompanyID: "c"}.Validate(), ErrInvalidScope)
}

func TestRegistry_CoversCatalog(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())
	for _, id := range catalog.Default().IDs() {
		assert.True(t, reg.Has(id), id)
	}
}

func TestRegistry_Fetch_ScopesEveryQuery(t *testing.T) {
	store := newFakeStore()
	reg := NewStoreRegistry(store)

	_, err := reg.Fetch(context.Background(), catalog.AnalyticsReport, testScope)
	require.NoError(t, err)
	require.NotEmpty(t, store.queries)
	for _, q := range store.queries {
		assert.Equal(t, "evt-1", q.EventID)
		assert.Equal(t, "co-1", q.CompanyID)
	}
}

func TestRegistry_Fetch_InvalidScope(t *testing.T) {
	store := newFakeStore()
	reg := NewStoreRegistry(store)

	_, err := reg.Fetch(context.Background(), catalog.GuestList, Scope{EventID: "evt-1"})
	assert.ErrorIs(t, err, ErrInvalidScope)
	assert.Empty(t, store.queries)
}

func TestRegistry_Fetch_UnknownBundle(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())
	_, err := reg.Fetch(context.Background(), "nope", testScope)
	assert.ErrorIs(t, err, ErrNoFetcher)
}

func TestRegistry_Fetch_FetchErrorDegrades(t *testing.T) {
	store := newFakeStore()
	store.errs["guests"] = &FetchError{Kind: FetchPermission, Table: "guests", Err: errors.New("denied")}
	reg := NewStoreRegistry(store)

	res, err := reg.Fetch(context.Background(), catalog.GuestList, testScope)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Empty(t, res.Records)
	assert.ErrorIs(t, res.Cause, ErrFetch)
}

func TestRegistry_Fetch_OtherErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	reg := NewRegistry()
	reg.Register("b", func(context.Context, Scope) ([]record.Record, error) { return nil, boom })

	_, err := reg.Fetch(context.Background(), "b", testScope)
	assert.ErrorIs(t, err, boom)
}

func TestFetchers_GuestAddOnsJoin(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())

	res, err := reg.Fetch(context.Background(), catalog.GuestAddOns, testScope)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	r := res.Records[0]
	assert.Equal(t, "Ada Lovelace", r["guest_name"])
	assert.Equal(t, "ada@example.com", r["guest_email"])
	assert.Equal(t, "Dinner", r["add_on_name"])
	assert.Equal(t, "85.50", r["unit_price"])
}

func TestFetchers_ModuleResponsesJoin(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())

	res, err := reg.Fetch(context.Background(), catalog.ModuleResponses, testScope)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "Feedback", res.Records[0]["module_title"])
	assert.Equal(t, "rating", res.Records[0]["module_type"])
	assert.Equal(t, "Alan Turing", res.Records[1]["guest_name"], "camelCase name keys")
}

func TestFetchers_GuestUploads(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())

	res, err := reg.Fetch(context.Background(), catalog.GuestUploads, testScope)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Alan Turing", res.Records[0][record.MediaCategory])
	assert.Equal(t, "https://cdn.example.com/a.jpg", res.Records[0][record.MediaURL])
}

func TestFetchers_EventMedia(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())

	res, err := reg.Fetch(context.Background(), catalog.EventMedia, testScope)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "announcements", res.Records[0][record.MediaCategory])
	assert.Equal(t, "itineraries", res.Records[1][record.MediaCategory])
}

func TestFetchers_ReportSections(t *testing.T) {
	reg := NewStoreRegistry(newFakeStore())

	res, err := reg.Fetch(context.Background(), catalog.AnalyticsReport, testScope)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, r := range res.Records {
		counts[r.Section()]++
	}
	assert.Equal(t, 1, counts[SectionMessages])
	assert.Equal(t, 2, counts[SectionGuests])
	assert.Equal(t, 2, counts[SectionModules])
	assert.Equal(t, 2, counts[SectionResponses])
	assert.Equal(t, 2, counts[SectionAnnouncements])
	assert.Equal(t, 1, counts[SectionItineraries])
	assert.Equal(t, 1, counts[SectionActivity])
}

func TestParsePlaceholderMode(t *testing.T) {
	m, err := ParsePlaceholderMode("")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderOnFailure, m)

	m, err = ParsePlaceholderMode("on_empty")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderOnEmpty, m)

	_, err = ParsePlaceholderMode("sometimes")
	assert.Error(t, err)
}

func TestPlaceholderPolicy_Apply(t *testing.T) {
	data := []record.Record{{"id": "x"}}

	tests := []struct {
		name       string
		mode       PlaceholderMode
		res        Result
		substitute bool
	}{
		{"off keeps degraded empty", PlaceholderOff, Result{Degraded: true}, false},
		{"on_failure substitutes degraded", PlaceholderOnFailure, Result{Degraded: true}, true},
		{"on_failure keeps genuine empty", PlaceholderOnFailure, Result{}, false},
		{"on_empty substitutes empty", PlaceholderOnEmpty, Result{}, true},
		{"on_empty keeps data", PlaceholderOnEmpty, Result{Records: data}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, substituted := PlaceholderPolicy{Mode: tt.mode}.Apply(catalog.GuestList, tt.res)
			assert.Equal(t, tt.substitute, substituted)
			if tt.substitute {
				assert.Equal(t, Placeholder(catalog.GuestList), records)
			} else {
				assert.Equal(t, tt.res.Records, records)
			}
		})
	}
}

func TestPlaceholder_DeterministicForEveryBundle(t *testing.T) {
	for _, id := range catalog.Default().IDs() {
		a, b := Placeholder(id), Placeholder(id)
		assert.NotEmpty(t, a, id)
		assert.Equal(t, a, b, id)
	}
	assert.Nil(t, Placeholder("unknown"))
}

func TestPlaceholder_FixedTimestamps(t *testing.T) {
	guests := Placeholder(catalog.GuestList)
	assert.Equal(t, time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC), guests[0]["created_at"])
}
