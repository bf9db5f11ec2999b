package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/platform/notify"
	"github.com/diagnosis/stayvista-server/internal/repository"
	"github.com/diagnosis/stayvista-server/pkg/config"
	"github.com/diagnosis/stayvista-server/pkg/events"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

type BookingService interface {
	Create(ctx context.Context, b *domain.Booking) (domain.InsertResult, error)
	ListForGuest(ctx context.Context, email string) ([]domain.Booking, error)
	ListForHost(ctx context.Context, email string) ([]domain.Booking, error)
	Cancel(ctx context.Context, id, callerEmail string) (domain.DeleteResult, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	listings repository.ListingRepository
	notifier notify.Notifier
	eventBus events.Publisher
	config   config.BookingConfig
}

func NewBookingService(
	bookings repository.BookingRepository,
	listings repository.ListingRepository,
	notifier notify.Notifier,
	eventBus events.Publisher,
	cfg config.BookingConfig,
) BookingService {
	return &bookingService{
		bookings: bookings,
		listings: listings,
		notifier: notifier,
		eventBus: eventBus,
		config:   cfg,
	}
}

// Create stores the booking as submitted. Price and transaction id are not
// checked against the listing or the payment provider.
func (s *bookingService) Create(ctx context.Context, b *domain.Booking) (domain.InsertResult, error) {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return domain.InsertResult{}, err
	}

	res, err := s.bookings.Create(ctx, b)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("create booking: %w", err)
	}

	s.notifier.Notify(ctx, notify.Notification{
		To:      b.Guest.Email,
		Subject: "Booking Successful!",
		Message: "You've Successfully Booked a Room through StayVista. Transaction Id: " + b.TransactionID,
	})
	s.notifier.Notify(ctx, notify.Notification{
		To:      b.Host.Email,
		Subject: "Your Room Got Booked",
		Message: "Get ready to welcome " + guestName(b.Guest),
	})

	if s.config.MarkListingBooked {
		s.markBooked(ctx, b.RoomID, true)
	}

	event := events.BookingCreatedEvent{
		BookingID:     res.InsertedID,
		ListingID:     b.RoomID,
		GuestEmail:    b.Guest.Email,
		HostEmail:     b.Host.Email,
		Price:         b.Price,
		TransactionID: b.TransactionID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCreated, event); err != nil {
		metrics.RecordEventPublishError(events.BookingCreated)
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", res.InsertedID)
	}

	return res, nil
}

func (s *bookingService) ListForGuest(ctx context.Context, email string) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByGuest(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list guest bookings: %w", err)
	}
	return bookings, nil
}

func (s *bookingService) ListForHost(ctx context.Context, email string) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByHost(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list host bookings: %w", err)
	}
	return bookings, nil
}

// Cancel deletes the booking. Only its guest may cancel; an unknown id is a
// zero-count ack.
func (s *bookingService) Cancel(ctx context.Context, id, callerEmail string) (domain.DeleteResult, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return domain.DeleteResult{Acknowledged: true}, nil
	}
	if !b.IsGuest(callerEmail) {
		return domain.DeleteResult{}, fmt.Errorf("%w: booking belongs to another guest", domain.ErrForbidden)
	}

	res, err := s.bookings.Delete(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return res, nil
	}

	if s.config.MarkListingBooked {
		s.markBooked(ctx, b.RoomID, false)
	}

	event := events.BookingCanceledEvent{
		BookingID:  id,
		ListingID:  b.RoomID,
		GuestEmail: b.Guest.Email,
		CanceledAt: time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, events.BookingCanceled, event); err != nil {
		metrics.RecordEventPublishError(events.BookingCanceled)
		logger.ErrorContext(ctx, "Failed to publish booking canceled event", "error", err, "booking_id", id)
	}
	return res, nil
}

// markBooked is not atomic with the booking write; failures are logged only.
func (s *bookingService) markBooked(ctx context.Context, listingID string, booked bool) {
	if _, err := s.listings.SetBooked(ctx, listingID, booked); err != nil {
		logger.ErrorContext(ctx, "Failed to update listing booked flag", "error", err, "listing_id", listingID, "booked", booked)
	}
}

func guestName(p domain.PartyRef) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}
