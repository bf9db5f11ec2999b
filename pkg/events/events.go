package events

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/diagnosis/stayvista-server/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("stayvista-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// NopBus discards events. Used when NATS_URL is unset.
type NopBus struct{}

func (NopBus) Publish(ctx context.Context, subject string, data any) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (NopBus) Close() error { return nil }

const (
	UserCreated = "user.created"

	ListingCreated       = "listing.created"
	ListingDeleted       = "listing.deleted"
	ListingStatusChanged = "listing.status.changed"

	BookingCreated  = "booking.created"
	BookingCanceled = "booking.canceled"
)

type UserCreatedEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ListingCreatedEvent struct {
	ListingID string    `json:"listing_id"`
	HostEmail string    `json:"host_email"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

type ListingDeletedEvent struct {
	ListingID string    `json:"listing_id"`
	HostEmail string    `json:"host_email"`
	DeletedAt time.Time `json:"deleted_at"`
}

type ListingStatusChangedEvent struct {
	ListingID string    `json:"listing_id"`
	Booked    bool      `json:"booked"`
	ChangedAt time.Time `json:"changed_at"`
}

type BookingCreatedEvent struct {
	BookingID     string    `json:"booking_id"`
	ListingID     string    `json:"listing_id"`
	GuestEmail    string    `json:"guest_email"`
	HostEmail     string    `json:"host_email"`
	Price         float64   `json:"price"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingCanceledEvent struct {
	BookingID  string    `json:"booking_id"`
	ListingID  string    `json:"listing_id"`
	GuestEmail string    `json:"guest_email"`
	CanceledAt time.Time `json:"canceled_at"`
}
