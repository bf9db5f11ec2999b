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

type ListingRepository interface {
	List(ctx context.Context, category string) ([]domain.Listing, error)
	ListByHost(ctx context.Context, hostEmail string) ([]domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	Create(ctx context.Context, l *domain.Listing) (domain.InsertResult, error)
	Replace(ctx context.Context, id string, l *domain.Listing) (domain.UpdateResult, error)
	SetBooked(ctx context.Context, id string, booked bool) (domain.UpdateResult, error)
	Delete(ctx context.Context, id string) (domain.DeleteResult, error)
	// Count returns all listings when hostEmail is empty.
	Count(ctx context.Context, hostEmail string) (int64, error)
}

type listingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingCols = `id, title, category, location, description, image,
price, guests, bedrooms, bathrooms, from_date, to_date,
host_name, host_email, host_image, booked, created_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID, &l.Title, &l.Category, &l.Location, &l.Description, &l.Image,
		&l.Price, &l.Guests, &l.Bedrooms, &l.Bathrooms, &l.From, &l.To,
		&l.Host.Name, &l.Host.Email, &l.Host.Image, &l.Booked, &l.CreatedAt,
	); err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.From = utcPtr(l.From)
	l.To = utcPtr(l.To)
	return &l, nil
}

func (r *listingRepository) query(ctx context.Context, q string, args ...any) ([]domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

func (r *listingRepository) List(ctx context.Context, category string) ([]domain.Listing, error) {
	if category == "" {
		return r.query(ctx, `SELECT `+listingCols+` FROM rooms ORDER BY seq`)
	}
	return r.query(ctx, `SELECT `+listingCols+` FROM rooms WHERE category = $1 ORDER BY seq`, category)
}

func (r *listingRepository) ListByHost(ctx context.Context, hostEmail string) ([]domain.Listing, error) {
	return r.query(ctx, `SELECT `+listingCols+` FROM rooms WHERE host_email = lower($1) ORDER BY seq`, hostEmail)
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	const q = `SELECT ` + listingCols + ` FROM rooms WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	l, err := scanListing(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) (domain.InsertResult, error) {
	const q = `INSERT INTO rooms (
		id, title, category, location, description, image,
		price, guests, bedrooms, bathrooms, from_date, to_date,
		host_name, host_email, host_image, booked
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,lower($14),$15,$16)`

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id,
		l.Title, l.Category, l.Location, l.Description, l.Image,
		l.Price, l.Guests, l.Bedrooms, l.Bathrooms, l.From, l.To,
		l.Host.Name, l.Host.Email, l.Host.Image, l.Booked,
	)
	if err != nil {
		return domain.InsertResult{}, err
	}
	return domain.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *listingRepository) Replace(ctx context.Context, id string, l *domain.Listing) (domain.UpdateResult, error) {
	const q = `
		UPDATE rooms
		SET
			title = $2, category = $3, location = $4, description = $5, image = $6,
			price = $7, guests = $8, bedrooms = $9, bathrooms = $10,
			from_date = $11, to_date = $12,
			updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, q, id,
		l.Title, l.Category, l.Location, l.Description, l.Image,
		l.Price, l.Guests, l.Bedrooms, l.Bathrooms, l.From, l.To,
	)
}

func (r *listingRepository) SetBooked(ctx context.Context, id string, booked bool) (domain.UpdateResult, error) {
	const q = `UPDATE rooms SET booked = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, id, booked)
}

func (r *listingRepository) exec(ctx context.Context, q string, args ...any) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	n := tag.RowsAffected()
	return domain.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) (domain.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return domain.DeleteResult{}, err
	}
	return domain.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

func (r *listingRepository) Count(ctx context.Context, hostEmail string) (int64, error) {
	const q = `SELECT count(*) FROM rooms WHERE $1 = '' OR host_email = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, q, hostEmail).Scan(&n)
	return n, err
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
