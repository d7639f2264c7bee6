// Package models defines the GORM models of the backing event store.
package models

import (
	"bytes"
	"crypto/rand"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// ULID identifies records and export jobs. It stores as varchar(26) and
// encodes as its canonical string in JSON, text and SQL. The zero value
// means "unset" everywhere: NULL in SQL, null in JSON.
type ULID ulid.ULID

var (
	entropyMu sync.Mutex
	// entropy is monotonic so ids minted in the same millisecond still sort
	// in creation order. Jobs of one submission rely on that.
	entropy io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// NewULID mints a ULID for the current time.
func NewULID() ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ULID(ulid.MustNew(ulid.Timestamp(time.Now()), entropy))
}

// ParseULID parses the canonical 26-character form.
func ParseULID(s string) (ULID, error) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return ULID{}, fmt.Errorf("invalid ULID %q: %w", s, err)
	}
	return ULID(id), nil
}

func (u ULID) String() string {
	return ulid.ULID(u).String()
}

// IsZero reports whether u is unset.
func (u ULID) IsZero() bool {
	return u == ULID{}
}

// Time returns the millisecond timestamp embedded in u.
func (u ULID) Time() time.Time {
	return ulid.Time(ulid.ULID(u).Time())
}

// MarshalText implements encoding.TextMarshaler. The zero value is empty.
func (u ULID) MarshalText() ([]byte, error) {
	if u.IsZero() {
		return nil, nil
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text yields the
// zero value.
func (u *ULID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = ULID{}
		return nil
	}
	id, err := ParseULID(string(text))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

// MarshalJSON implements json.Marshaler.
func (u ULID) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("null"), nil
	}
	return fmt.Appendf(nil, "%q", u.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *ULID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*u = ULID{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid ULID JSON: %s", data)
	}
	return u.UnmarshalText(data[1 : len(data)-1])
}

// Value implements driver.Valuer.
func (u ULID) Value() (driver.Value, error) {
	if u.IsZero() {
		return nil, nil
	}
	return u.String(), nil
}

// Scan implements sql.Scanner for string and []byte columns.
func (u *ULID) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*u = ULID{}
		return nil
	case string:
		return u.UnmarshalText([]byte(v))
	case []byte:
		return u.UnmarshalText(v)
	}
	return fmt.Errorf("cannot scan %T into ULID", value)
}

// GormDataType implements schema.GormDataTypeInterface.
func (ULID) GormDataType() string {
	return "varchar(26)"
}

// BaseModel carries the ULID primary key and gorm timestamps.
type BaseModel struct {
	ID        ULID           `gorm:"primarykey;type:varchar(26)" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// BeforeCreate assigns an ID when the caller did not.
func (b *BaseModel) BeforeCreate(*gorm.DB) error {
	if b.ID.IsZero() {
		b.ID = NewULID()
	}
	return nil
}

// ScopedModel is embedded by every record that belongs to one event of one
// company. Queries against these tables must filter on both columns.
type ScopedModel struct {
	BaseModel
	EventID   ULID `gorm:"type:varchar(26);not null;index" json:"event_id"`
	CompanyID ULID `gorm:"type:varchar(26);not null;index" json:"company_id"`
}
