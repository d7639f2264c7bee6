package source

import (
	"fmt"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
)

// PlaceholderMode selects when synthetic records replace a fetch result.
type PlaceholderMode string

const (
	// PlaceholderOff never substitutes.
	PlaceholderOff PlaceholderMode = "off"
	// PlaceholderOnFailure substitutes only when the fetch was degraded by
	// a recoverable error. An event with no data still exports empty.
	PlaceholderOnFailure PlaceholderMode = "on_failure"
	// PlaceholderOnEmpty substitutes whenever the result is empty.
	PlaceholderOnEmpty PlaceholderMode = "on_empty"
)

// ParsePlaceholderMode maps a config value onto a mode.
func ParsePlaceholderMode(s string) (PlaceholderMode, error) {
	switch m := PlaceholderMode(s); m {
	case PlaceholderOff, PlaceholderOnFailure, PlaceholderOnEmpty:
		return m, nil
	case "":
		return PlaceholderOnFailure, nil
	}
	return "", fmt.Errorf("unknown placeholder mode %q", s)
}

// PlaceholderPolicy decides whether a fetch result is replaced with the
// bundle's deterministic placeholder dataset.
type PlaceholderPolicy struct {
	Mode PlaceholderMode
}

// Apply returns the records to encode and whether they are synthetic.
func (p PlaceholderPolicy) Apply(bundleID string, res Result) ([]record.Record, bool) {
	substitute := false
	switch p.Mode {
	case PlaceholderOnFailure:
		substitute = res.Degraded
	case PlaceholderOnEmpty:
		substitute = len(res.Records) == 0
	}
	if !substitute {
		return res.Records, false
	}
	return Placeholder(bundleID), true
}

// placeholderEpoch anchors every placeholder timestamp so datasets are
// byte-for-byte stable.
var placeholderEpoch = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return placeholderEpoch.Add(time.Duration(hours) * time.Hour)
}

// Placeholder returns the synthetic dataset for a bundle. Unknown bundles
// get an empty dataset.
func Placeholder(bundleID string) []record.Record {
	switch bundleID {
	case catalog.GuestList:
		return placeholderGuests()
	case catalog.GuestAddOns:
		return []record.Record{
			{"guest_name": "Sample Guest One", "guest_email": "guest.one@example.com", "add_on_name": "Gala Dinner",
				"quantity": 1, "unit_price": "85.00", "currency": "GBP", "status": "confirmed"},
			{"guest_name": "Sample Guest Two", "guest_email": "guest.two@example.com", "add_on_name": "Workshop Pass",
				"quantity": 2, "unit_price": "150.00", "currency": "GBP", "status": "pending"},
		}
	case catalog.Itineraries:
		return placeholderItineraries()
	case catalog.Announcements:
		return placeholderAnnouncements()
	case catalog.Messages:
		return placeholderMessages()
	case catalog.ModuleResponses:
		return placeholderResponses()
	case catalog.ActivityLog:
		return placeholderActivity()
	case catalog.GuestUploads:
		return []record.Record{
			{record.MediaCategory: "Sample Guest One", record.MediaName: "photo-1.jpg", record.MediaURL: "https://placeholder.invalid/uploads/photo-1.jpg"},
		}
	case catalog.EventMedia:
		return []record.Record{
			{record.MediaCategory: "announcements", record.MediaURL: "https://placeholder.invalid/media/welcome.jpg"},
		}
	case catalog.AnalyticsReport:
		var out []record.Record
		for _, s := range []struct {
			name    string
			records []record.Record
		}{
			{SectionMessages, placeholderMessages()},
			{SectionGuests, placeholderGuests()},
			{SectionModules, placeholderModules()},
			{SectionResponses, placeholderResponses()},
			{SectionAnnouncements, placeholderAnnouncements()},
			{SectionItineraries, placeholderItineraries()},
			{SectionActivity, placeholderActivity()},
		} {
			for _, r := range s.records {
				out = append(out, r.WithSection(s.name))
			}
		}
		return out
	}
	return nil
}

func placeholderGuests() []record.Record {
	return []record.Record{
		{"id": "guest-1", "first_name": "Sample", "last_name": "Guest One", "email": "guest.one@example.com",
			"guest_group": "VIP", "profile": map[string]any{"dietaryRequirements": "Vegetarian"}, "created_at": at(-72)},
		{"id": "guest-2", "first_name": "Sample", "last_name": "Guest Two", "email": "guest.two@example.com",
			"guest_group": "Delegates", "created_at": at(-48)},
		{"id": "guest-3", "firstName": "Sample", "lastName": "Guest Three", "emailAddress": "guest.three@example.com",
			"guestGroup": "Delegates", "createdAt": at(-24)},
	}
}

func placeholderItineraries() []record.Record {
	return []record.Record{
		{"title": "Registration", "location": "Main Foyer", "starts_at": at(0), "ends_at": at(1)},
		{"title": "Opening Keynote", "location": "Hall A", "starts_at": at(1), "ends_at": at(2)},
		{"title": "Networking Lunch", "location": "Terrace", "starts_at": at(27), "ends_at": at(28)},
	}
}

func placeholderAnnouncements() []record.Record {
	return []record.Record{
		{"title": "Welcome", "body": "Doors open at 9am.", "audience": "all", "sent_at": at(-12)},
		{"title": "Lunch moved", "body": "Lunch is now on the terrace.", "audience": "all", "sent_at": at(26)},
	}
}

func placeholderMessages() []record.Record {
	return []record.Record{
		{"guest_name": "Sample Guest One", "guest_email": "guest.one@example.com", "sender": "organiser",
			"channel": "email", "body": "Your badge is ready for collection.", "sent_at": at(-2)},
		{"guest_name": "Sample Guest One", "guest_email": "guest.one@example.com", "sender": "guest",
			"channel": "app", "body": "Thank you!", "sent_at": at(-1)},
		{"guest_name": "Sample Guest Two", "guest_email": "guest.two@example.com", "sender": "organiser",
			"channel": "sms", "body": "Parking is at gate B.", "sent_at": at(25)},
	}
}

func placeholderModules() []record.Record {
	return []record.Record{
		{"title": "Session Feedback", "module_type": "rating"},
		{"title": "Suggestions", "module_type": "text"},
	}
}

func placeholderResponses() []record.Record {
	return []record.Record{
		{"guest_name": "Sample Guest One", "guest_email": "guest.one@example.com", "module_title": "Session Feedback",
			"module_type": "rating", "payload": `{"rating":5,"comment":"Great event!"}`, "submitted_at": at(3)},
		{"guest_name": "Sample Guest Two", "guest_email": "guest.two@example.com", "module_title": "Session Feedback",
			"module_type": "rating", "payload": `{"rating":4}`, "submitted_at": at(4)},
		{"guest_name": "Sample Guest Three", "guest_email": "guest.three@example.com", "module_title": "Suggestions",
			"module_type": "text", "payload": `{"text":"More coffee breaks"}`, "submitted_at": at(5)},
	}
}

func placeholderActivity() []record.Record {
	return []record.Record{
		{"actor": "admin@example.com", "action": "guest.created", "entity_type": "guest", "entity_id": "guest-1", "occurred_at": at(-72)},
		{"actor": "admin@example.com", "action": "guest.created", "entity_type": "guest", "entity_id": "guest-2", "occurred_at": at(-48)},
		{"actor": "admin@example.com", "action": "announcement.sent", "entity_type": "announcement", "entity_id": "ann-1", "occurred_at": at(-12)},
	}
}
