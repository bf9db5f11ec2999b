package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/platform/notify"
	"github.com/diagnosis/stayvista-server/internal/repository"
	"github.com/diagnosis/stayvista-server/pkg/events"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

// UpsertResult carries exactly one of Existing or Result.
type UpsertResult struct {
	Existing *domain.User
	Result   *domain.UpdateResult
}

type UserService interface {
	Upsert(ctx context.Context, u *domain.User) (*UpsertResult, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error)
}

type userService struct {
	users    repository.UserRepository
	notifier notify.Notifier
	eventBus events.Publisher
}

func NewUserService(users repository.UserRepository, notifier notify.Notifier, eventBus events.Publisher) UserService {
	return &userService{users: users, notifier: notifier, eventBus: eventBus}
}

func (s *userService) Upsert(ctx context.Context, u *domain.User) (*UpsertResult, error) {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if existing != nil {
		if u.Status == domain.StatusRequested {
			res, err := s.users.UpdateStatus(ctx, u.Email, u.Status)
			if err != nil {
				return nil, fmt.Errorf("update user status: %w", err)
			}
			logger.InfoContext(ctx, "Host request recorded", "email", u.Email)
			return &UpsertResult{Result: &res}, nil
		}
		return &UpsertResult{Existing: existing}, nil
	}

	// roles change only through the admin update
	u.Role = domain.RoleGuest
	res, err := s.users.Insert(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	// a concurrent request may have created the row first; only the creator welcomes
	if res.UpsertedCount == 1 {
		s.notifier.Notify(ctx, notify.Notification{
			To:      u.Email,
			Subject: "Welcome to StayVista",
			Message: "Hope you will find your destination",
		})

		event := events.UserCreatedEvent{
			UserID:    res.UpsertedID,
			Email:     u.Email,
			Role:      string(u.Role),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.eventBus.Publish(ctx, events.UserCreated, event); err != nil {
			metrics.RecordEventPublishError(events.UserCreated)
			logger.ErrorContext(ctx, "Failed to publish user created event", "error", err, "email", u.Email)
		}
	}
	return &UpsertResult{Result: &res}, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	if err := patch.Validate(); err != nil {
		return domain.UpdateResult{}, err
	}
	res, err := s.users.Update(ctx, email, patch)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("update user: %w", err)
	}
	if patch.Role != nil {
		logger.InfoContext(ctx, "User role changed", "email", email, "role", *patch.Role)
	}
	return res, nil
}
