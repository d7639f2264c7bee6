package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrValidation represents a validation error with field and message.
type ErrValidation struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ErrValidation) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// Common validation errors for models.
var (
	// ErrNameRequired indicates a required name field is empty.
	ErrNameRequired = errors.New("name is required")

	// ErrEventIDRequired indicates an event-scoped record has no event.
	ErrEventIDRequired = errors.New("event_id is required")

	// ErrCompanyIDRequired indicates a record has no owning company.
	ErrCompanyIDRequired = errors.New("company_id is required")
)

// Validate checks the company has a name.
func (c *Company) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the company and generates ULID.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the event has a name, an owner and a sane time range.
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.CompanyID.IsZero() {
		return ErrCompanyIDRequired
	}
	if e.StartsAt != nil && e.EndsAt != nil && e.EndsAt.Before(*e.StartsAt) {
		return ErrValidation{Field: "ends_at", Message: "must not be before starts_at"}
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the event and generates ULID.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if err := e.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return e.Validate()
}

// Validate checks the record is scoped to one event of one company.
func (s *ScopedModel) Validate() error {
	if s.EventID.IsZero() {
		return ErrEventIDRequired
	}
	if s.CompanyID.IsZero() {
		return ErrCompanyIDRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that rejects unscoped records and generates ULID.
func (s *ScopedModel) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return s.Validate()
}
