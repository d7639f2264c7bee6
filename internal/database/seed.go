package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/jmylchreest/eventexport/internal/urlutil"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedOptions controls the demo dataset written by Seed.
type SeedOptions struct {
	CompanyName string
	EventName   string
	// MediaBaseURL prefixes the object references of uploaded media, e.g.
	// "https://project.supabase.co". Empty keeps references relative.
	MediaBaseURL string
	// StartsAt anchors every timestamp in the dataset. Zero means now.
	StartsAt time.Time
}

// SeedResult identifies the seeded tenant and event.
type SeedResult struct {
	CompanyID models.ULID
	EventID   models.ULID
	Guests    int
}

// Seed writes a small but shape-diverse demo event: guest profiles and
// module payloads deliberately mix current and legacy key conventions.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (SeedResult, error) {
	if opts.CompanyName == "" {
		opts.CompanyName = "Demo Company"
	}
	if opts.EventName == "" {
		opts.EventName = "Demo Summit"
	}
	start := opts.StartsAt
	if start.IsZero() {
		start = time.Now().UTC().Truncate(time.Hour)
	}
	at := func(days, hours int) time.Time {
		return start.Add(time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour)
	}
	ptr := func(t time.Time) *time.Time { return &t }

	var result SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		company := models.Company{Name: opts.CompanyName}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("creating company: %w", err)
		}
		event := models.Event{
			CompanyID: company.ID,
			Name:      opts.EventName,
			Venue:     "Harbour Convention Centre",
			StartsAt:  ptr(at(0, 0)),
			EndsAt:    ptr(at(2, 8)),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("creating event: %w", err)
		}
		scope := models.ScopedModel{EventID: event.ID, CompanyID: company.ID}
		scoped := func() models.ScopedModel { return scope }

		guests := []models.Guest{
			{ScopedModel: scoped(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "+44 20 7946 0001",
				Organisation: "Analytical Engines", JobTitle: "Programmer", GuestGroup: "Speakers",
				Profile: datatypes.JSON(`{"dietaryRequirements":"Vegetarian","tshirtSize":"M"}`)},
			{ScopedModel: scoped(), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
				Organisation: "US Navy", JobTitle: "Rear Admiral", GuestGroup: "Speakers",
				Profile: datatypes.JSON(`{"dietary_requirements":"None","tshirt_size":"L"}`)},
			{ScopedModel: scoped(), FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Phone: "+44 161 496 0002",
				Organisation: "Bletchley Park", GuestGroup: "Delegates",
				Profile: datatypes.JSON(`{"dietary":"Vegan, \"no nuts\""}`)},
			{ScopedModel: scoped(), FirstName: "Katherine", LastName: "Johnson", Email: "katherine@example.com",
				Organisation: "NASA", JobTitle: "Mathematician", GuestGroup: "Delegates"},
		}
		if err := tx.Create(&guests).Error; err != nil {
			return fmt.Errorf("creating guests: %w", err)
		}

		addOns := []models.AddOn{
			{ScopedModel: scoped(), Name: "Gala Dinner", Description: "Three course dinner, evening one", PriceCents: 8500, Currency: "GBP"},
			{ScopedModel: scoped(), Name: "Workshop Pass", Description: "Hands-on sessions", PriceCents: 15000, Currency: "GBP"},
		}
		if err := tx.Create(&addOns).Error; err != nil {
			return fmt.Errorf("creating add-ons: %w", err)
		}
		guestAddOns := []models.GuestAddOn{
			{ScopedModel: scoped(), GuestID: guests[0].ID, AddOnID: addOns[0].ID, Quantity: 1, Status: "confirmed"},
			{ScopedModel: scoped(), GuestID: guests[1].ID, AddOnID: addOns[0].ID, Quantity: 2, Status: "confirmed"},
			{ScopedModel: scoped(), GuestID: guests[2].ID, AddOnID: addOns[1].ID, Quantity: 1, Status: "pending"},
		}
		if err := tx.Create(&guestAddOns).Error; err != nil {
			return fmt.Errorf("creating guest add-ons: %w", err)
		}

		baseURL := urlutil.NormalizeBaseURL(opts.MediaBaseURL)
		media := func(bucket, path string) string {
			return urlutil.JoinPath(baseURL, "/storage/v1/object/public/"+bucket+"/"+path)
		}

		itineraries := []models.Itinerary{
			{ScopedModel: scoped(), Title: "Registration", Location: "Foyer", StartsAt: ptr(at(0, 8)), EndsAt: ptr(at(0, 9))},
			{ScopedModel: scoped(), Title: "Opening Keynote", Description: "Welcome, housekeeping, keynote", Location: "Hall A",
				StartsAt: ptr(at(0, 9)), EndsAt: ptr(at(0, 10)), AttachmentURL: media("event-files", "agenda/keynote.pdf")},
			{ScopedModel: scoped(), Title: "Workshops", Location: "Rooms 1-4", StartsAt: ptr(at(1, 10)), EndsAt: ptr(at(1, 16))},
		}
		if err := tx.Create(&itineraries).Error; err != nil {
			return fmt.Errorf("creating itineraries: %w", err)
		}

		modules := []models.Module{
			{ScopedModel: scoped(), Title: "Session Feedback", ModuleType: models.ModuleTypeRating, Question: "How was the keynote?", Position: 1},
			{ScopedModel: scoped(), Title: "Suggestions", ModuleType: models.ModuleTypeText, Question: "What should we change?", Position: 2},
			{ScopedModel: scoped(), Title: "Track Poll", ModuleType: models.ModuleTypeChoice, Question: "Which tracks interest you?", Position: 3},
			{ScopedModel: scoped(), Title: "Photo Wall", ModuleType: models.ModuleTypeMedia, Question: "Share a photo", Position: 4},
		}
		if err := tx.Create(&modules).Error; err != nil {
			return fmt.Errorf("creating modules: %w", err)
		}

		responses := []models.ModuleResponse{
			{ScopedModel: scoped(), ModuleID: modules[0].ID, GuestID: guests[0].ID, SubmittedAt: at(0, 11),
				Payload: datatypes.JSON(`{"rating":5,"comment":"Great event!"}`)},
			{ScopedModel: scoped(), ModuleID: modules[0].ID, GuestID: guests[1].ID, SubmittedAt: at(0, 12),
				Payload: datatypes.JSON(`{"rating":"4","feedback":"Good pacing"}`)},
			{ScopedModel: scoped(), ModuleID: modules[1].ID, GuestID: guests[2].ID, SubmittedAt: at(1, 9),
				Payload: datatypes.JSON(`{"answer":"More coffee, please"}`)},
			{ScopedModel: scoped(), ModuleID: modules[2].ID, GuestID: guests[3].ID, SubmittedAt: at(1, 9),
				Payload: datatypes.JSON(`{"selected":["AI","Security"],"other":"Quantum"}`)},
			{ScopedModel: scoped(), ModuleID: modules[3].ID, GuestID: guests[0].ID, SubmittedAt: at(1, 13),
				Payload: datatypes.JSON(`{"file_url":"` + media("guest-uploads", "photos/ada-stage.jpg") + `","file_name":"ada-stage.jpg","mime_type":"image/jpeg"}`)},
			{ScopedModel: scoped(), ModuleID: modules[3].ID, GuestID: guests[1].ID, SubmittedAt: at(1, 14),
				Payload: datatypes.JSON(`{"fileUrl":"` + media("guest-uploads", "photos/hopper.png") + `"}`)},
		}
		if err := tx.Create(&responses).Error; err != nil {
			return fmt.Errorf("creating module responses: %w", err)
		}

		announcements := []models.Announcement{
			{ScopedModel: scoped(), Title: "Welcome", Body: "Doors open at 8am.", Audience: "all", SentAt: ptr(at(-1, 18)),
				ImageURL: media("event-files", "announcements/welcome.jpg")},
			{ScopedModel: scoped(), Title: "Room change", Body: "Workshops move to rooms 5-8.", Audience: "Delegates", SentAt: ptr(at(1, 8))},
		}
		if err := tx.Create(&announcements).Error; err != nil {
			return fmt.Errorf("creating announcements: %w", err)
		}

		messages := []models.Message{
			{ScopedModel: scoped(), GuestID: guests[0].ID, Sender: "organiser", Body: "Your slot is confirmed for 9:15.", Channel: "email", SentAt: at(-1, 10), ReadAt: ptr(at(-1, 11))},
			{ScopedModel: scoped(), GuestID: guests[0].ID, Sender: "guest", Body: "Thanks, see you there", Channel: "app", SentAt: at(-1, 12)},
			{ScopedModel: scoped(), GuestID: guests[2].ID, Sender: "organiser", Body: "Parking, gate B", Channel: "sms", SentAt: at(0, 7)},
		}
		if err := tx.Create(&messages).Error; err != nil {
			return fmt.Errorf("creating messages: %w", err)
		}

		activity := []models.ActivityLog{
			{ScopedModel: scoped(), Actor: "admin@example.com", Action: "guest.created", EntityType: "guest", EntityID: guests[0].ID.String(), OccurredAt: at(-7, 0)},
			{ScopedModel: scoped(), Actor: "admin@example.com", Action: "guest.created", EntityType: "guest", EntityID: guests[1].ID.String(), OccurredAt: at(-7, 1)},
			{ScopedModel: scoped(), Actor: "admin@example.com", Action: "announcement.sent", EntityType: "announcement", EntityID: announcements[0].ID.String(),
				Details: datatypes.JSON(`{"recipients":4}`), OccurredAt: at(-1, 18)},
		}
		if err := tx.Create(&activity).Error; err != nil {
			return fmt.Errorf("creating activity log: %w", err)
		}

		result = SeedResult{CompanyID: company.ID, EventID: event.ID, Guests: len(guests)}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("seeding demo event: %w", err)
	}
	return result, nil
}
