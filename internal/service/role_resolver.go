package service

import (
	"context"
	"fmt"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/internal/repository"
)

// RoleResolver reads the principal's role from the store on every call so a
// role change applies to the very next request.
type RoleResolver struct {
	users repository.UserRepository
}

func NewRoleResolver(users repository.UserRepository) *RoleResolver {
	return &RoleResolver{users: users}
}

func (r *RoleResolver) Resolve(ctx context.Context, email string) (domain.Role, error) {
	u, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if u == nil {
		return "", domain.ErrNoPrincipal
	}
	return u.Role, nil
}
