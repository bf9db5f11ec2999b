package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/repository/repotest"
	"github.com/diagnosis/stayvista-server/pkg/config"
	"github.com/diagnosis/stayvista-server/pkg/events"
)

func newBooking(guest, host string, price float64, date time.Time) *domain.Booking {
	return &domain.Booking{
		RoomID:        "room-1",
		Title:         "Loft",
		Guest:         domain.PartyRef{Name: "Gina", Email: guest},
		Host:          domain.PartyRef{Name: "Hank", Email: host},
		Price:         price,
		Date:          date,
		TransactionID: "tx_1",
	}
}

func TestRoleResolver(t *testing.T) {
	store := repotest.New()
	store.Users().Seed(domain.User{Email: "h@x.com", Role: domain.RoleHost})
	rr := NewRoleResolver(store.Users())

	role, err := rr.Resolve(context.Background(), "h@x.com")
	if err != nil || role != domain.RoleHost {
		t.Fatalf("expected host, got %q (%v)", role, err)
	}

	if _, err := rr.Resolve(context.Background(), "nobody@x.com"); !errors.Is(err, domain.ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}

	store.Err = errors.New("db down")
	if _, err := rr.Resolve(context.Background(), "h@x.com"); err == nil || errors.Is(err, domain.ErrNoPrincipal) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestRoleResolver_SeesRoleChangeImmediately(t *testing.T) {
	store := repotest.New()
	store.Users().Seed(domain.User{Email: "u@x.com", Role: domain.RoleGuest})
	rr := NewRoleResolver(store.Users())

	host := domain.RoleHost
	if _, err := store.Users().Update(context.Background(), "u@x.com", domain.UserPatch{Role: &host}); err != nil {
		t.Fatal(err)
	}
	if role, _ := rr.Resolve(context.Background(), "u@x.com"); role != domain.RoleHost {
		t.Fatalf("expected host after update, got %q", role)
	}
}

func TestUserService_UpsertIsIdempotent(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{}
	svc := NewUserService(store.Users(), rec, rec)

	first, err := svc.Upsert(context.Background(), &domain.User{Email: "New@x.com", Name: "New"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.Result == nil || first.Result.UpsertedCount != 1 {
		t.Fatalf("expected insert ack, got %+v", first)
	}

	second, err := svc.Upsert(context.Background(), &domain.User{Email: "new@x.com", Name: "Changed", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Existing == nil || second.Existing.Name != "New" || second.Existing.Role != domain.RoleGuest {
		t.Fatalf("expected unchanged existing record, got %+v", second)
	}

	sent := rec.Sent()
	if len(sent) != 1 || sent[0].Subject != "Welcome to StayVista" || sent[0].To != "new@x.com" {
		t.Fatalf("expected exactly one welcome, got %+v", sent)
	}
	if n, _ := store.Users().Count(context.Background()); n != 1 {
		t.Fatalf("expected one user, got %d", n)
	}
}

func TestUserService_UpsertRequestedUpdatesStatusOnly(t *testing.T) {
	store := repotest.New()
	store.Users().Seed(domain.User{Email: "g@x.com", Name: "Gina", Role: domain.RoleGuest})
	rec := &repotest.Recorder{}
	svc := NewUserService(store.Users(), rec, rec)

	res, err := svc.Upsert(context.Background(), &domain.User{Email: "g@x.com", Name: "Other", Status: domain.StatusRequested})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if res.Result == nil || res.Result.ModifiedCount != 1 {
		t.Fatalf("expected update ack, got %+v", res)
	}

	u, _ := store.Users().FindByEmail(context.Background(), "g@x.com")
	if u.Status != domain.StatusRequested || u.Name != "Gina" || u.Role != domain.RoleGuest {
		t.Fatalf("expected only status to change, got %+v", u)
	}
	if len(rec.Sent()) != 0 {
		t.Fatal("no welcome expected for an existing user")
	}
}

func TestUserService_UpdateRejectsUnknownRole(t *testing.T) {
	store := repotest.New()
	store.Users().Seed(domain.User{Email: "g@x.com", Role: domain.RoleGuest})
	svc := NewUserService(store.Users(), &repotest.Recorder{}, events.NopBus{})

	bad := domain.Role("owner")
	if _, err := svc.Update(context.Background(), "g@x.com", domain.UserPatch{Role: &bad}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if store.WriteCount() != 0 {
		t.Fatal("rejected patch must not write")
	}
}

func TestBookingService_CreateNotifiesBothParties(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{}
	svc := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{})

	res, err := svc.Create(context.Background(), newBooking("G@x.com", "h@x.com", 120, time.Time{}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.Acknowledged || res.InsertedID == "" {
		t.Fatalf("unexpected ack %+v", res)
	}

	sent := rec.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(sent))
	}
	if sent[0].To != "g@x.com" || sent[0].Subject != "Booking Successful!" {
		t.Fatalf("unexpected guest notification %+v", sent[0])
	}
	if sent[1].To != "h@x.com" || sent[1].Message != "Get ready to welcome Gina" {
		t.Fatalf("unexpected host notification %+v", sent[1])
	}
	if got := rec.Published(); len(got) != 1 || got[0] != events.BookingCreated {
		t.Fatalf("expected booking.created, got %v", got)
	}
}

func TestBookingService_CreateSurvivesPublishFailure(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{PublishErr: errors.New("nats down")}
	svc := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{})

	if _, err := svc.Create(context.Background(), newBooking("g@x.com", "h@x.com", 50, time.Time{})); err != nil {
		t.Fatalf("publish failure must not fail the booking: %v", err)
	}
}

func TestBookingService_CreateRejectsInvalidShape(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{}
	svc := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{})

	b := newBooking("not-an-email", "h@x.com", 10, time.Time{})
	if _, err := svc.Create(context.Background(), b); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if store.WriteCount() != 0 || len(rec.Sent()) != 0 {
		t.Fatal("invalid booking must not write or notify")
	}
}

func TestBookingService_CancelRemovesFromBothViews(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{}
	svc := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{})
	ctx := context.Background()

	res, err := svc.Create(ctx, newBooking("g@x.com", "h@x.com", 120, time.Time{}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Cancel(ctx, res.InsertedID, "h@x.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("host must not cancel a guest's booking, got %v", err)
	}

	del, err := svc.Cancel(ctx, res.InsertedID, "g@x.com")
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("expected deletion, got %+v (%v)", del, err)
	}

	guest, _ := svc.ListForGuest(ctx, "g@x.com")
	host, _ := svc.ListForHost(ctx, "h@x.com")
	if len(guest) != 0 || len(host) != 0 {
		t.Fatalf("expected booking gone from both views, got %d/%d", len(guest), len(host))
	}

	again, err := svc.Cancel(ctx, res.InsertedID, "g@x.com")
	if err != nil || again.DeletedCount != 0 {
		t.Fatalf("expected zero-count ack on repeat, got %+v (%v)", again, err)
	}
}

func TestBookingService_MarkListingBooked(t *testing.T) {
	store := repotest.New()
	rec := &repotest.Recorder{}
	ctx := context.Background()
	ins, _ := store.Listings().Create(ctx, &domain.Listing{Title: "Loft", Category: "Beach", Location: "Cox's Bazar", Host: domain.PartyRef{Email: "h@x.com"}})

	svc := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{MarkListingBooked: true})
	b := newBooking("g@x.com", "h@x.com", 80, time.Time{})
	b.RoomID = ins.InsertedID

	res, err := svc.Create(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if l, _ := store.Listings().GetByID(ctx, ins.InsertedID); !l.Booked {
		t.Fatal("expected listing marked booked")
	}

	if _, err := svc.Cancel(ctx, res.InsertedID, "g@x.com"); err != nil {
		t.Fatal(err)
	}
	if l, _ := store.Listings().GetByID(ctx, ins.InsertedID); l.Booked {
		t.Fatal("expected listing released on cancel")
	}
}

func TestListingService_OwnershipAndPreservedFields(t *testing.T) {
	store := repotest.New()
	svc := NewListingService(store.Listings(), events.NopBus{})
	ctx := context.Background()

	ins, err := svc.Create(ctx, &domain.Listing{Title: "Loft", Category: "Beach", Location: "Dhaka", Price: 90, Host: domain.PartyRef{Email: "h@x.com"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetBooked(ctx, ins.InsertedID, true); err != nil {
		t.Fatal(err)
	}

	edit := &domain.Listing{Title: "Loft 2", Category: "Beach", Location: "Dhaka", Price: 100, Host: domain.PartyRef{Email: "thief@x.com"}}
	if _, err := svc.Replace(ctx, ins.InsertedID, edit, "other@x.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Replace(ctx, ins.InsertedID, edit, "h@x.com"); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Get(ctx, ins.InsertedID)
	if got.Title != "Loft 2" || got.Host.Email != "h@x.com" || !got.Booked {
		t.Fatalf("expected edit applied with host/booked preserved, got %+v", got)
	}

	if _, err := svc.Delete(ctx, ins.InsertedID, "other@x.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	del, err := svc.Delete(ctx, ins.InsertedID, "h@x.com")
	if err != nil || del.DeletedCount != 1 {
		t.Fatalf("expected delete, got %+v (%v)", del, err)
	}
}

func TestListingService_ListCategoryNull(t *testing.T) {
	store := repotest.New()
	svc := NewListingService(store.Listings(), events.NopBus{})
	ctx := context.Background()
	for _, c := range []string{"Beach", "Islands"} {
		if _, err := svc.Create(ctx, &domain.Listing{Title: c, Category: c, Location: "x", Host: domain.PartyRef{Email: "h@x.com"}}); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := svc.List(ctx, "null")
	beach, _ := svc.List(ctx, "Beach")
	if len(all) != 2 || len(beach) != 1 {
		t.Fatalf("expected 2 and 1, got %d and %d", len(all), len(beach))
	}
	if all[0].Title != "Beach" || all[1].Title != "Islands" {
		t.Fatal("expected insertion order")
	}
}

func TestStatsService_ChartAndTotals(t *testing.T) {
	store := repotest.New()
	store.Users().Seed(domain.User{Email: "g@x.com", Role: domain.RoleGuest})
	store.Users().Seed(domain.User{Email: "h@x.com", Role: domain.RoleHost})
	rec := &repotest.Recorder{}
	bookings := NewBookingService(store.Bookings(), store.Listings(), rec, rec, config.BookingConfig{})
	ctx := context.Background()

	if _, err := store.Listings().Create(ctx, &domain.Listing{Title: "Loft", Host: domain.PartyRef{Email: "h@x.com"}}); err != nil {
		t.Fatal(err)
	}
	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if _, err := bookings.Create(ctx, newBooking("g@x.com", "h@x.com", 120, date)); err != nil {
		t.Fatal(err)
	}

	svc := NewStatsService(store.Users(), store.Listings(), store.Bookings())

	admin, err := svc.Admin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if admin.TotalUsers != 2 || admin.TotalRooms != 1 || admin.TotalBookings != 1 || admin.TotalPrice != 120 {
		t.Fatalf("unexpected admin stats %+v", admin)
	}

	host, err := svc.Host(ctx, "h@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if host.TotalBookings != 1 || host.TotalPrice != 120 || host.TotalRooms != 1 || host.HostSince == nil {
		t.Fatalf("unexpected host stats %+v", host)
	}
	if len(host.ChartData) != 2 || host.ChartData[1] != (domain.ChartRow{"5/3", 120.0}) {
		t.Fatalf("unexpected host chart %v", host.ChartData)
	}

	guest, err := svc.Guest(ctx, "g@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if guest.TotalBookings != 1 || guest.TotalPrice != 120 || guest.ChartData[1][0] != "5/3" {
		t.Fatalf("unexpected guest stats %+v", guest)
	}

	empty, err := svc.Guest(ctx, "nobody@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalBookings != 0 || empty.TotalPrice != 0 || len(empty.ChartData) != 1 || empty.GuestSince != nil {
		t.Fatalf("expected empty stats with header only, got %+v", empty)
	}
}

func TestStatsService_StoreFailure(t *testing.T) {
	store := repotest.New()
	store.Err = errors.New("db down")
	svc := NewStatsService(store.Users(), store.Listings(), store.Bookings())
	if _, err := svc.Admin(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUserService_UpsertIgnoresSubmittedRole(t *testing.T) {
	store := repotest.New()
	svc := NewUserService(store.Users(), &repotest.Recorder{}, events.NopBus{})

	if _, err := svc.Upsert(context.Background(), &domain.User{Email: "sneaky@x.com", Role: domain.RoleAdmin}); err != nil {
		t.Fatal(err)
	}
	u, _ := store.Users().FindByEmail(context.Background(), "sneaky@x.com")
	if u == nil || u.Role != domain.RoleGuest {
		t.Fatalf("expected new user to be a guest, got %+v", u)
	}
}
