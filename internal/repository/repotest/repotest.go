// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/platform/notify"
	"github.com/diagnosis/stayvista-server/internal/repository"
)

var (
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.ListingRepository = (*Listings)(nil)
	_ repository.BookingRepository = (*Bookings)(nil)
)

// Store holds users, listings and bookings in insertion order. Set Err to make
// every call fail.
type Store struct {
	mu       sync.Mutex
	users    []domain.User
	listings []domain.Listing
	bookings []domain.Booking
	Err      error
	Writes   int
}

func New() *Store {
	return &Store{}
}

func (s *Store) Users() *Users       { return &Users{s} }
func (s *Store) Listings() *Listings { return &Listings{s} }
func (s *Store) Bookings() *Bookings { return &Bookings{s} }

// WriteCount reports how many mutating calls succeeded.
func (s *Store) WriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Writes
}

func same(a, b string) bool { return strings.EqualFold(a, b) }

type Users struct{ s *Store }

func (r *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for i := range r.s.users {
		if same(r.s.users[i].Email, email) {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *Users) Insert(ctx context.Context, u *domain.User) (domain.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.UpdateResult{}, r.s.Err
	}
	for _, existing := range r.s.users {
		if same(existing.Email, u.Email) {
			return domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
		}
	}
	now := time.Now().UTC()
	nu := *u
	nu.ID = uuid.NewString()
	nu.Email = strings.ToLower(nu.Email)
	nu.CreatedAt, nu.UpdatedAt = now, now
	r.s.users = append(r.s.users, nu)
	r.s.Writes++
	return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: nu.ID}, nil
}

// Seed inserts u with an explicit creation time.
func (r *Users) Seed(u domain.User) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.s.users = append(r.s.users, u)
}

func (r *Users) UpdateStatus(ctx context.Context, email, status string) (domain.UpdateResult, error) {
	s := status
	return r.Update(ctx, email, domain.UserPatch{Status: &s})
}

func (r *Users) Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.UpdateResult{}, r.s.Err
	}
	for i := range r.s.users {
		u := &r.s.users[i]
		if !same(u.Email, email) {
			continue
		}
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Image != nil {
			u.Image = *patch.Image
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
		u.UpdatedAt = time.Now().UTC()
		r.s.Writes++
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return domain.UpdateResult{Acknowledged: true}, nil
}

func (r *Users) List(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return append([]domain.User{}, r.s.users...), nil
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return int64(len(r.s.users)), nil
}

type Listings struct{ s *Store }

func (r *Listings) filter(keep func(domain.Listing) bool) ([]domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []domain.Listing{}
	for _, l := range r.s.listings {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *Listings) List(ctx context.Context, category string) ([]domain.Listing, error) {
	return r.filter(func(l domain.Listing) bool { return category == "" || l.Category == category })
}

func (r *Listings) ListByHost(ctx context.Context, hostEmail string) ([]domain.Listing, error) {
	return r.filter(func(l domain.Listing) bool { return same(l.Host.Email, hostEmail) })
}

func (r *Listings) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, l := range r.s.listings {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (r *Listings) Create(ctx context.Context, l *domain.Listing) (domain.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.InsertResult{}, r.s.Err
	}
	nl := *l
	nl.ID = uuid.NewString()
	nl.Host.Email = strings.ToLower(nl.Host.Email)
	nl.CreatedAt = time.Now().UTC()
	r.s.listings = append(r.s.listings, nl)
	r.s.Writes++
	return domain.InsertResult{Acknowledged: true, InsertedID: nl.ID}, nil
}

func (r *Listings) Replace(ctx context.Context, id string, l *domain.Listing) (domain.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.UpdateResult{}, r.s.Err
	}
	for i := range r.s.listings {
		cur := &r.s.listings[i]
		if cur.ID != id {
			continue
		}
		nl := *l
		nl.ID, nl.Host, nl.Booked, nl.CreatedAt = cur.ID, cur.Host, cur.Booked, cur.CreatedAt
		*cur = nl
		r.s.Writes++
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return domain.UpdateResult{Acknowledged: true}, nil
}

func (r *Listings) SetBooked(ctx context.Context, id string, booked bool) (domain.UpdateResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.UpdateResult{}, r.s.Err
	}
	for i := range r.s.listings {
		if r.s.listings[i].ID == id {
			r.s.listings[i].Booked = booked
			r.s.Writes++
			return domain.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return domain.UpdateResult{Acknowledged: true}, nil
}

func (r *Listings) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.DeleteResult{}, r.s.Err
	}
	for i := range r.s.listings {
		if r.s.listings[i].ID == id {
			r.s.listings = append(r.s.listings[:i], r.s.listings[i+1:]...)
			r.s.Writes++
			return domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return domain.DeleteResult{Acknowledged: true}, nil
}

func (r *Listings) Count(ctx context.Context, hostEmail string) (int64, error) {
	ls, err := r.filter(func(l domain.Listing) bool { return hostEmail == "" || same(l.Host.Email, hostEmail) })
	return int64(len(ls)), err
}

type Bookings struct{ s *Store }

func (r *Bookings) Create(ctx context.Context, b *domain.Booking) (domain.InsertResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.InsertResult{}, r.s.Err
	}
	nb := *b
	nb.ID = uuid.NewString()
	nb.CreatedAt = time.Now().UTC()
	r.s.bookings = append(r.s.bookings, nb)
	r.s.Writes++
	return domain.InsertResult{Acknowledged: true, InsertedID: nb.ID}, nil
}

func (r *Bookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, b := range r.s.bookings {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, nil
}

func (r *Bookings) filter(keep func(domain.Booking) bool) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []domain.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Bookings) ListByGuest(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return same(b.Guest.Email, email) })
}

func (r *Bookings) ListByHost(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return same(b.Host.Email, email) })
}

func (r *Bookings) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return domain.DeleteResult{}, r.s.Err
	}
	for i := range r.s.bookings {
		if r.s.bookings[i].ID == id {
			r.s.bookings = append(r.s.bookings[:i], r.s.bookings[i+1:]...)
			r.s.Writes++
			return domain.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return domain.DeleteResult{Acknowledged: true}, nil
}

func (r *Bookings) Sales(ctx context.Context, f domain.SalesFilter) ([]domain.Sale, error) {
	bs, err := r.filter(func(b domain.Booking) bool {
		return (f.HostEmail == "" || same(b.Host.Email, f.HostEmail)) &&
			(f.GuestEmail == "" || same(b.Guest.Email, f.GuestEmail))
	})
	if err != nil {
		return nil, err
	}
	sales := make([]domain.Sale, 0, len(bs))
	for _, b := range bs {
		sales = append(sales, domain.Sale{Date: b.Date.UTC(), Price: b.Price})
	}
	return sales, nil
}

// Recorder captures published events and notifications.
type Recorder struct {
	mu            sync.Mutex
	Subjects      []string
	Notifications []notify.Notification
	PublishErr    error
}

func (r *Recorder) Publish(ctx context.Context, subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Subjects = append(r.Subjects, subject)
	return r.PublishErr
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Notify(ctx context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, n)
}

func (r *Recorder) Sent() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification{}, r.Notifications...)
}

func (r *Recorder) Published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.Subjects...)
}
