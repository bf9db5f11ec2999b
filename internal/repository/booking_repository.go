package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookingRepository lists in insertion order; no other ordering is promised.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (domain.InsertResult, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByGuest(ctx context.Context, email string) ([]domain.Booking, error)
	ListByHost(ctx context.Context, email string) ([]domain.Booking, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)
	Sales(ctx context.Context, filter domain.SalesFilter) ([]domain.Sale, error)
}

type bookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepository{pool: pool}
}

const bookingCols = `id, room_id, title, location, image,
guest_name, guest_email, guest_image,
host_name, host_email, host_image,
date, from_date, to_date, price, transaction_id, created_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.ID, &b.RoomID, &b.Title, &b.Location, &b.Image,
		&b.Guest.Name, &b.Guest.Email, &b.Guest.Image,
		&b.Host.Name, &b.Host.Email, &b.Host.Image,
		&b.Date, &b.From, &b.To, &b.Price, &b.TransactionID, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	b.Date = b.Date.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.From = utcPtr(b.From)
	b.To = utcPtr(b.To)
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) (domain.InsertResult, error) {
	const q = `INSERT INTO bookings (
		id, room_id, title, location, image,
		guest_name, guest_email, guest_image,
		host_name, host_email, host_image,
		date, from_date, to_date, price, transaction_id
	) VALUES ($1,$2,$3,$4,$5,$6,lower($7),$8,$9,lower($10),$11,$12,$13,$14,$15,$16)`

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id,
		b.RoomID, b.Title, b.Location, b.Image,
		b.Guest.Name, b.Guest.Email, b.Guest.Image,
		b.Host.Name, b.Host.Email, b.Host.Image,
		b.Date, b.From, b.To, b.Price, b.TransactionID,
	)
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

func (r *bookingRepository) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListByGuest(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings WHERE guest_email = lower($1) ORDER BY seq`, email)
}

func (r *bookingRepository) ListByHost(ctx context.Context, email string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingCols+` FROM bookings WHERE host_email = lower($1) ORDER BY seq`, email)
}

func (r *bookingRepository) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func (r *bookingRepository) Sales(ctx context.Context, filter domain.SalesFilter) ([]domain.Sale, error) {
	const q = `
		SELECT date, price FROM bookings
		WHERE ($1 = '' OR host_email = lower($1))
		  AND ($2 = '' OR guest_email = lower($2))
		ORDER BY seq`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, filter.HostEmail, filter.GuestEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		var s domain.Sale
		if err := rows.Scan(&s.Date, &s.Price); err != nil {
			return nil, err
		}
		s.Date = s.Date.UTC()
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
