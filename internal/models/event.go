package models

import (
	"time"

	"gorm.io/datatypes"
)

// Company is the tenant that owns events.
type Company struct {
	BaseModel
	Name string `gorm:"not null;size:255" json:"name"`
}

// Event is a single managed event. Every exported record hangs off one.
type Event struct {
	BaseModel
	CompanyID ULID       `gorm:"type:varchar(26);not null;index" json:"company_id"`
	Name      string     `gorm:"not null;size:255" json:"name"`
	Venue     string     `gorm:"size:255" json:"venue,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// Guest is an attendee of an event. Profile carries free-form registration
// answers (dietary requirements, t-shirt size, ...).
type Guest struct {
	ScopedModel
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	Email        string         `gorm:"size:255;index" json:"email"`
	Phone        string         `gorm:"size:50" json:"phone,omitempty"`
	Organisation string         `gorm:"size:255" json:"organisation,omitempty"`
	JobTitle     string         `gorm:"size:255" json:"job_title,omitempty"`
	GuestGroup   string         `gorm:"size:100" json:"guest_group,omitempty"`
	Profile      datatypes.JSON `json:"profile,omitempty"`
}

// AddOn is a purchasable extra offered at an event.
type AddOn struct {
	ScopedModel
	Name        string `gorm:"not null;size:255" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `gorm:"size:3" json:"currency"`
}

// GuestAddOn links a guest to an add-on they selected.
type GuestAddOn struct {
	ScopedModel
	GuestID  ULID   `gorm:"type:varchar(26);not null;index" json:"guest_id"`
	AddOnID  ULID   `gorm:"type:varchar(26);not null;index" json:"add_on_id"`
	Quantity int    `gorm:"default:1" json:"quantity"`
	Status   string `gorm:"size:50" json:"status"`
}

// Itinerary is a scheduled agenda item.
type Itinerary struct {
	ScopedModel
	Title         string     `gorm:"not null;size:255" json:"title"`
	Description   string     `gorm:"type:text" json:"description,omitempty"`
	Location      string     `gorm:"size:255" json:"location,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	AttachmentURL string     `gorm:"size:1024" json:"attachment_url,omitempty"`
}

// Module types understood by the response decoder.
const (
	ModuleTypeRating = "rating"
	ModuleTypeText   = "text"
	ModuleTypeChoice = "choice"
	ModuleTypeMedia  = "media"
)

// Module is an engagement prompt (poll, feedback form, photo upload).
type Module struct {
	ScopedModel
	Title      string `gorm:"not null;size:255" json:"title"`
	ModuleType string `gorm:"size:50;index" json:"module_type"`
	Question   string `gorm:"type:text" json:"question,omitempty"`
	Position   int    `json:"position"`
}

// ModuleResponse is one guest's answer to a module. Payload shape depends on
// the module type and has drifted over time.
type ModuleResponse struct {
	ScopedModel
	ModuleID    ULID           `gorm:"type:varchar(26);not null;index" json:"module_id"`
	GuestID     ULID           `gorm:"type:varchar(26);index" json:"guest_id"`
	Payload     datatypes.JSON `json:"payload"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Announcement is a broadcast to some or all guests.
type Announcement struct {
	ScopedModel
	Title    string     `gorm:"not null;size:255" json:"title"`
	Body     string     `gorm:"type:text" json:"body"`
	ImageURL string     `gorm:"size:1024" json:"image_url,omitempty"`
	Audience string     `gorm:"size:100" json:"audience,omitempty"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
}

// Message is a direct message between organiser and guest.
type Message struct {
	ScopedModel
	GuestID ULID       `gorm:"type:varchar(26);index" json:"guest_id"`
	Sender  string     `gorm:"size:255" json:"sender"`
	Body    string     `gorm:"type:text" json:"body"`
	Channel string     `gorm:"size:50" json:"channel"`
	SentAt  time.Time  `json:"sent_at"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}

// ActivityLog is an audit entry for changes made within an event.
type ActivityLog struct {
	ScopedModel
	Actor      string         `gorm:"size:255" json:"actor"`
	Action     string         `gorm:"size:100;index" json:"action"`
	EntityType string         `gorm:"size:100" json:"entity_type"`
	EntityID   string         `gorm:"size:26" json:"entity_id"`
	Details    datatypes.JSON `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// EventTables lists the event-scoped table names in a stable order.
// The record store refuses queries against any other table.
var EventTables = []string{
	"guests",
	"add_ons",
	"guest_add_ons",
	"itineraries",
	"modules",
	"module_responses",
	"announcements",
	"messages",
	"activity_logs",
}

// JSONColumns maps a table to its JSON-typed columns.
var JSONColumns = map[string][]string{
	"guests":           {"profile"},
	"module_responses": {"payload"},
	"activity_logs":    {"details"},
}
