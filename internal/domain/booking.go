package domain

import (
	"strings"
	"time"

	"github.com/diagnosis/stayvista-server/internal/utils"
)

// Booking keeps Guest and Host as point-in-time snapshots; later profile
// changes never rewrite past bookings.
type Booking struct {
	ID            string     `json:"_id"`
	RoomID        string     `json:"roomId" validate:"required"`
	Title         string     `json:"title,omitempty"`
	Location      string     `json:"location,omitempty"`
	Image         string     `json:"image,omitempty"`
	Guest         PartyRef   `json:"guest"`
	Host          PartyRef   `json:"host"`
	Date          time.Time  `json:"date"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	Price         float64    `json:"price" validate:"gte=0"`
	TransactionID string     `json:"transactionId"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Validate checks shape only. Price and transaction id are trusted as sent.
func (b *Booking) Validate() error {
	return validateStruct(b)
}

func (b *Booking) Normalize() {
	b.Guest.Email = utils.NormalizeEmail(b.Guest.Email)
	b.Host.Email = utils.NormalizeEmail(b.Host.Email)
	if b.Date.IsZero() {
		b.Date = time.Now().UTC()
	}
}

func (b *Booking) IsGuest(email string) bool {
	return strings.EqualFold(b.Guest.Email, email)
}
