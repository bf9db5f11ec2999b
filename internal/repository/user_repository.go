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

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// Insert creates the user unless the email already exists; it never overwrites.
	Insert(ctx context.Context, u *domain.User) (domain.UpdateResult, error)
	UpdateStatus(ctx context.Context, email, status string) (domain.UpdateResult, error)
	Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, email, name, image, role, status, profile, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Image, &u.Role, &u.Status, &u.Profile, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) Insert(ctx context.Context, u *domain.User) (domain.UpdateResult, error) {
	const q = `
		INSERT INTO users (id, email, name, image, role, status, profile)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`

	profile := u.Profile
	if profile == nil {
		profile = map[string]any{}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var id string
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), u.Email, u.Name, u.Image, u.Role, u.Status, profile).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		// lost a race with a concurrent insert for the same email
		return domain.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	if err != nil {
		return domain.UpdateResult{}, err
	}
	return domain.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, email, status string) (domain.UpdateResult, error) {
	const q = `
		UPDATE users SET status = $2, updated_at = now()
		WHERE email = lower($1)`
	return r.exec(ctx, q, email, status)
}

func (r *userRepository) Update(ctx context.Context, email string, patch domain.UserPatch) (domain.UpdateResult, error) {
	const q = `
		UPDATE users
		SET
			name = COALESCE($2, name),
			image = COALESCE($3, image),
			role = COALESCE($4, role),
			status = COALESCE($5, status),
			updated_at = now()
		WHERE email = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var role *string
	if patch.Role != nil {
		s := string(*patch.Role)
		role = &s
	}
	tag, err := r.pool.Exec(ctx, q, email, patch.Name, patch.Image, role, patch.Status)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	n := tag.RowsAffected()
	return domain.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (r *userRepository) exec(ctx context.Context, q string, args ...any) (domain.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	n := tag.RowsAffected()
	return domain.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users ORDER BY created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	return n, err
}
