package repository

import (
	"context"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User y su perfil (DIP).
// Las lecturas devuelven (nil, nil) cuando el registro no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdateRole(ctx context.Context, userID string, roleID *string) error
	TouchLastLogin(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error

	CreateProfile(ctx context.Context, profile *entity.UserProfile) error
	GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *entity.UserProfile) error
	DeleteProfile(ctx context.Context, userID string) error
}
