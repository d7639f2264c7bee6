package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/response"
)

// Report sections, in the order the report renders them.
const (
	SectionMessages      = "messages"
	SectionGuests        = "guests"
	SectionModules       = "modules"
	SectionResponses     = "responses"
	SectionAnnouncements = "announcements"
	SectionItineraries   = "itineraries"
	SectionActivity      = "activity"
)

// NewStoreRegistry registers a fetcher for every catalog bundle, all reading
// from store.
func NewStoreRegistry(store Store) *Registry {
	f := &storeFetchers{store: store}
	r := NewRegistry()
	r.Register(catalog.GuestList, f.table("guests", "created_at"))
	r.Register(catalog.GuestAddOns, f.guestAddOns)
	r.Register(catalog.Itineraries, f.table("itineraries", "starts_at"))
	r.Register(catalog.Announcements, f.table("announcements", "sent_at"))
	r.Register(catalog.Messages, f.messages)
	r.Register(catalog.ModuleResponses, f.moduleResponses)
	r.Register(catalog.ActivityLog, f.table("activity_logs", "occurred_at"))
	r.Register(catalog.GuestUploads, f.guestUploads)
	r.Register(catalog.EventMedia, f.eventMedia)
	r.Register(catalog.AnalyticsReport, f.report)
	return r
}

type storeFetchers struct {
	store Store
}

func (f *storeFetchers) query(ctx context.Context, scope Scope, table, orderBy string) ([]record.Record, error) {
	return f.store.Query(ctx, table, Filters{
		EventID:   scope.EventID,
		CompanyID: scope.CompanyID,
		OrderBy:   orderBy,
	})
}

func (f *storeFetchers) table(table, orderBy string) Fetcher {
	return func(ctx context.Context, scope Scope) ([]record.Record, error) {
		return f.query(ctx, scope, table, orderBy)
	}
}

// byID indexes records on their "id" field.
func byID(records []record.Record) map[string]record.Record {
	out := make(map[string]record.Record, len(records))
	for _, r := range records {
		if id, ok := r["id"]; ok && id != nil {
			out[fmt.Sprint(id)] = r
		}
	}
	return out
}

func guestName(g record.Record) string {
	first, _ := g.First("first_name", "firstName")
	last, _ := g.First("last_name", "lastName")
	return strings.TrimSpace(fmt.Sprintf("%v %v", orEmpty(first), orEmpty(last)))
}

func orEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}

func withGuest(r record.Record, guests map[string]record.Record) record.Record {
	out := make(record.Record, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	if g, ok := guests[fmt.Sprint(r["guest_id"])]; ok {
		out["guest_name"] = guestName(g)
		out["guest_email"] = g["email"]
	}
	return out
}

func (f *storeFetchers) guests(ctx context.Context, scope Scope) (map[string]record.Record, error) {
	guests, err := f.query(ctx, scope, "guests", "created_at")
	if err != nil {
		return nil, err
	}
	return byID(guests), nil
}

func (f *storeFetchers) guestAddOns(ctx context.Context, scope Scope) ([]record.Record, error) {
	links, err := f.query(ctx, scope, "guest_add_ons", "created_at")
	if err != nil {
		return nil, err
	}
	addOns, err := f.query(ctx, scope, "add_ons", "name")
	if err != nil {
		return nil, err
	}
	guests, err := f.guests(ctx, scope)
	if err != nil {
		return nil, err
	}
	byAddOn := byID(addOns)

	out := make([]record.Record, 0, len(links))
	for _, link := range links {
		r := withGuest(link, guests)
		if a, ok := byAddOn[fmt.Sprint(link["add_on_id"])]; ok {
			r["add_on_name"] = a["name"]
			r["currency"] = a["currency"]
			if cents, ok := toInt64(a["price_cents"]); ok {
				r["unit_price"] = fmt.Sprintf("%d.%02d", cents/100, abs(cents%100))
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *storeFetchers) messages(ctx context.Context, scope Scope) ([]record.Record, error) {
	messages, err := f.query(ctx, scope, "messages", "sent_at")
	if err != nil {
		return nil, err
	}
	guests, err := f.guests(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make([]record.Record, len(messages))
	for i, m := range messages {
		out[i] = withGuest(m, guests)
	}
	return out, nil
}

func (f *storeFetchers) moduleResponses(ctx context.Context, scope Scope) ([]record.Record, error) {
	responses, err := f.query(ctx, scope, "module_responses", "submitted_at")
	if err != nil {
		return nil, err
	}
	modules, err := f.query(ctx, scope, "modules", "position")
	if err != nil {
		return nil, err
	}
	guests, err := f.guests(ctx, scope)
	if err != nil {
		return nil, err
	}
	byModule := byID(modules)

	out := make([]record.Record, len(responses))
	for i, resp := range responses {
		r := withGuest(resp, guests)
		if m, ok := byModule[fmt.Sprint(resp["module_id"])]; ok {
			r["module_title"] = m["title"]
			r["module_type"] = m["module_type"]
		}
		out[i] = r
	}
	return out, nil
}

// guestUploads returns one media record per response that decodes to a file.
func (f *storeFetchers) guestUploads(ctx context.Context, scope Scope) ([]record.Record, error) {
	responses, err := f.moduleResponses(ctx, scope)
	if err != nil {
		return nil, err
	}

	var out []record.Record
	for _, r := range responses {
		media, ok := response.Decode(r.String("module_type"), r["payload"]).(response.Media)
		if !ok {
			continue
		}
		category := r.String("guest_name")
		if category == "" {
			category = "unknown-guest"
		}
		out = append(out, record.Record{
			record.MediaCategory: category,
			record.MediaName:     media.FileName,
			record.MediaURL:      media.URL,
		})
	}
	return out, nil
}

// eventMedia returns announcement images and itinerary attachments.
func (f *storeFetchers) eventMedia(ctx context.Context, scope Scope) ([]record.Record, error) {
	announcements, err := f.query(ctx, scope, "announcements", "sent_at")
	if err != nil {
		return nil, err
	}
	itineraries, err := f.query(ctx, scope, "itineraries", "starts_at")
	if err != nil {
		return nil, err
	}

	var out []record.Record
	for _, a := range announcements {
		if url := a.String("image_url"); url != "" {
			out = append(out, record.Record{record.MediaCategory: "announcements", record.MediaURL: url})
		}
	}
	for _, it := range itineraries {
		if url := it.String("attachment_url"); url != "" {
			out = append(out, record.Record{record.MediaCategory: "itineraries", record.MediaURL: url})
		}
	}
	return out, nil
}

// report gathers every section the analytics report summarises.
func (f *storeFetchers) report(ctx context.Context, scope Scope) ([]record.Record, error) {
	sections := []struct {
		name  string
		fetch Fetcher
	}{
		{SectionMessages, f.table("messages", "sent_at")},
		{SectionGuests, f.table("guests", "created_at")},
		{SectionModules, f.table("modules", "position")},
		{SectionResponses, f.moduleResponses},
		{SectionAnnouncements, f.table("announcements", "sent_at")},
		{SectionItineraries, f.table("itineraries", "starts_at")},
		{SectionActivity, f.table("activity_logs", "occurred_at")},
	}

	var out []record.Record
	for _, s := range sections {
		records, err := s.fetch(ctx, scope)
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			out = append(out, r.WithSection(s.name))
		}
	}
	return out, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
