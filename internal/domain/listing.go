package domain

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// PartyRef is an embedded name/email copy of a Principal.
type PartyRef struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image,omitempty"`
}

type Listing struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title" validate:"required"`
	Category    string     `json:"category" validate:"required"`
	Location    string     `json:"location" validate:"required"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Price       float64    `json:"price" validate:"gte=0"`
	Guests      int        `json:"guests" validate:"gte=0"`
	Bedrooms    int        `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int        `json:"bathrooms" validate:"gte=0"`
	From        *time.Time `json:"from,omitempty"`
	To          *time.Time `json:"to,omitempty"`
	Host        PartyRef   `json:"host"`
	Booked      bool       `json:"booked"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (l *Listing) Validate() error {
	if err := validateStruct(l); err != nil {
		return err
	}
	if l.From != nil && l.To != nil && l.To.Before(*l.From) {
		return fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}
	return nil
}

// OwnedBy reports whether email is the listing's host.
func (l *Listing) OwnedBy(email string) bool {
	return strings.EqualFold(l.Host.Email, email)
}

// CategoryFilter maps the query value to a filter; "" and "null" mean none.
func CategoryFilter(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "null" {
		return ""
	}
	return raw
}

// BookedStatus is the body of the open status patch. Only JSON booleans are accepted.
type BookedStatus struct {
	Status bool
}

func (s *BookedStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status rawBool `json:"status"`
	}
	if err := unmarshalJSON(data, &raw); err != nil {
		return err
	}
	if !raw.Status.set {
		return fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	s.Status = raw.Status.value
	return nil
}

type rawBool struct {
	set   bool
	value bool
}

func (b *rawBool) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("true")):
		b.set, b.value = true, true
	case bytes.Equal(data, []byte("false")):
		b.set, b.value = true, false
	default:
		return fmt.Errorf("%w: status must be a boolean", ErrInvalidInput)
	}
	return nil
}
