package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/repository"
)

type StatsService interface {
	Admin(ctx context.Context) (*domain.AdminStats, error)
	Host(ctx context.Context, email string) (*domain.HostStats, error)
	Guest(ctx context.Context, email string) (*domain.GuestStats, error)
}

type statsService struct {
	users    repository.UserRepository
	listings repository.ListingRepository
	bookings repository.BookingRepository
}

func NewStatsService(users repository.UserRepository, listings repository.ListingRepository, bookings repository.BookingRepository) StatsService {
	return &statsService{users: users, listings: listings, bookings: bookings}
}

func (s *statsService) Admin(ctx context.Context) (*domain.AdminStats, error) {
	var (
		users, rooms int64
		sales        []domain.Sale
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		rooms, err = s.listings.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		sales, err = s.bookings.Sales(gctx, domain.SalesFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}

	return &domain.AdminStats{
		TotalUsers:    users,
		TotalRooms:    rooms,
		TotalBookings: int64(len(sales)),
		TotalPrice:    domain.TotalPrice(sales),
		ChartData:     domain.BuildChart(sales),
	}, nil
}

func (s *statsService) Host(ctx context.Context, email string) (*domain.HostStats, error) {
	var (
		rooms int64
		sales []domain.Sale
		user  *domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rooms, err = s.listings.Count(gctx, email)
		return err
	})
	g.Go(func() (err error) {
		sales, err = s.bookings.Sales(gctx, domain.SalesFilter{HostEmail: email})
		return err
	})
	g.Go(func() (err error) {
		user, err = s.users.FindByEmail(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("host stats: %w", err)
	}

	return &domain.HostStats{
		TotalRooms:    rooms,
		TotalBookings: int64(len(sales)),
		TotalPrice:    domain.TotalPrice(sales),
		HostSince:     since(user),
		ChartData:     domain.BuildChart(sales),
	}, nil
}

func (s *statsService) Guest(ctx context.Context, email string) (*domain.GuestStats, error) {
	var (
		sales []domain.Sale
		user  *domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.bookings.Sales(gctx, domain.SalesFilter{GuestEmail: email})
		return err
	})
	g.Go(func() (err error) {
		user, err = s.users.FindByEmail(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("guest stats: %w", err)
	}

	return &domain.GuestStats{
		TotalBookings: int64(len(sales)),
		TotalPrice:    domain.TotalPrice(sales),
		GuestSince:    since(user),
		ChartData:     domain.BuildChart(sales),
	}, nil
}

func since(u *domain.User) *time.Time {
	if u == nil {
		return nil
	}
	t := u.CreatedAt
	return &t
}
