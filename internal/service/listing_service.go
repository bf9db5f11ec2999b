package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/repository"
	"github.com/diagnosis/stayvista-server/pkg/events"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

type ListingService interface {
	List(ctx context.Context, category string) ([]domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, l *domain.Listing) (domain.InsertResult, error)
	ListByHost(ctx context.Context, hostEmail string) ([]domain.Listing, error)
	Replace(ctx context.Context, id string, l *domain.Listing, callerEmail string) (domain.UpdateResult, error)
	Delete(ctx context.Context, id, callerEmail string) (domain.DeleteResult, error)
	SetBooked(ctx context.Context, id string, booked bool) (domain.UpdateResult, error)
}

type listingService struct {
	listings repository.ListingRepository
	eventBus events.Publisher
}

func NewListingService(listings repository.ListingRepository, eventBus events.Publisher) ListingService {
	return &listingService{listings: listings, eventBus: eventBus}
}

func (s *listingService) List(ctx context.Context, category string) ([]domain.Listing, error) {
	listings, err := s.listings.List(ctx, domain.CategoryFilter(category))
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

func (s *listingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// Create trusts the submitted host identity; the caller's role is checked upstream.
func (s *listingService) Create(ctx context.Context, l *domain.Listing) (domain.InsertResult, error) {
	if err := l.Validate(); err != nil {
		return domain.InsertResult{}, err
	}
	res, err := s.listings.Create(ctx, l)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("create listing: %w", err)
	}

	s.publish(ctx, events.ListingCreated, events.ListingCreatedEvent{
		ListingID: res.InsertedID,
		HostEmail: l.Host.Email,
		Category:  l.Category,
		Price:     l.Price,
		CreatedAt: time.Now().UTC(),
	})
	return res, nil
}

func (s *listingService) ListByHost(ctx context.Context, hostEmail string) ([]domain.Listing, error) {
	listings, err := s.listings.ListByHost(ctx, hostEmail)
	if err != nil {
		return nil, fmt.Errorf("list host listings: %w", err)
	}
	return listings, nil
}

// owned loads the listing and checks ownership. A missing listing is not an
// error; the caller reports a zero-count ack.
func (s *listingService) owned(ctx context.Context, id, callerEmail string) (*domain.Listing, error) {
	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	if current == nil {
		return nil, nil
	}
	if !current.OwnedBy(callerEmail) {
		return nil, fmt.Errorf("%w: listing belongs to another host", domain.ErrForbidden)
	}
	return current, nil
}

func (s *listingService) Replace(ctx context.Context, id string, l *domain.Listing, callerEmail string) (domain.UpdateResult, error) {
	current, err := s.owned(ctx, id, callerEmail)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	if current == nil {
		return domain.UpdateResult{Acknowledged: true}, nil
	}

	// host, booked and creation time are not editable
	l.Host = current.Host
	l.Booked = current.Booked
	if err := l.Validate(); err != nil {
		return domain.UpdateResult{}, err
	}

	res, err := s.listings.Replace(ctx, id, l)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("replace listing: %w", err)
	}
	return res, nil
}

func (s *listingService) Delete(ctx context.Context, id, callerEmail string) (domain.DeleteResult, error) {
	current, err := s.owned(ctx, id, callerEmail)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	if current == nil {
		return domain.DeleteResult{Acknowledged: true}, nil
	}

	res, err := s.listings.Delete(ctx, id)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount > 0 {
		s.publish(ctx, events.ListingDeleted, events.ListingDeletedEvent{
			ListingID: id,
			HostEmail: current.Host.Email,
			DeletedAt: time.Now().UTC(),
		})
	}
	return res, nil
}

func (s *listingService) SetBooked(ctx context.Context, id string, booked bool) (domain.UpdateResult, error) {
	res, err := s.listings.SetBooked(ctx, id, booked)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("set listing status: %w", err)
	}
	if res.MatchedCount > 0 {
		s.publish(ctx, events.ListingStatusChanged, events.ListingStatusChangedEvent{
			ListingID: id,
			Booked:    booked,
			ChangedAt: time.Now().UTC(),
		})
	}
	return res, nil
}

func (s *listingService) publish(ctx context.Context, subject string, event any) {
	if err := s.eventBus.Publish(ctx, subject, event); err != nil {
		metrics.RecordEventPublishError(subject)
		logger.ErrorContext(ctx, "Failed to publish event", "error", err, "subject", subject)
	}
}
