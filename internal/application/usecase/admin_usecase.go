package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

// AdminUseCase administración de usuarios del CRM (alta, edición, rol, baja).
type AdminUseCase struct {
	users repository.UserRepository
	roles repository.RoleRepository
	tx    repository.TxRunner
	perms *PermissionService
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(users repository.UserRepository, roles repository.RoleRepository, tx repository.TxRunner, perms *PermissionService) *AdminUseCase {
	return &AdminUseCase{users: users, roles: roles, tx: tx, perms: perms}
}

// ListUsers lista usuarios con su perfil.
func (uc *AdminUseCase) ListUsers(ctx context.Context, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.DefaultPage()
	users, err := uc.users.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		p, err := uc.users.GetProfile(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.NewUserResponse(u, p))
	}
	return out, nil
}

// GetUser obtiene un usuario con su perfil. ErrUserNotFound si no existe.
func (uc *AdminUseCase) GetUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	p, err := uc.users.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewUserResponse(u, p)
	return &out, nil
}

func (uc *AdminUseCase) checkRole(ctx context.Context, roleID *string) error {
	if roleID == nil || *roleID == "" {
		return nil
	}
	role, err := uc.roles.GetByID(ctx, *roleID)
	if err != nil {
		return err
	}
	if role == nil {
		return domain.Invalid("role_id", "el rol no existe")
	}
	return nil
}

// CreateUser hashea el password con bcrypt y crea usuario + perfil en una transacción.
func (uc *AdminUseCase) CreateUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := textnorm.Email(in.Email)
	if len(in.Password) < 8 {
		return nil, domain.Invalid("password", "mínimo 8 caracteres")
	}
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	if err := uc.checkRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       in.RoleID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &entity.UserProfile{
		UserID:      user.ID,
		DisplayName: textnorm.PersonName(in.DisplayName),
		Phone:       in.Phone,
		EmployeeID:  in.EmployeeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return r.Users.CreateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetUser(ctx, user.ID)
}

// UpdateUser actualización parcial de usuario y perfil.
func (uc *AdminUseCase) UpdateUser(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	profile, err := uc.users.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	newProfile := profile == nil
	if newProfile {
		profile = &entity.UserProfile{UserID: id, DisplayName: user.Email, CreatedAt: now}
	}

	if in.Email != nil {
		user.Email = textnorm.Email(*in.Email)
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, domain.Invalid("password", "mínimo 8 caracteres")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	// activar o desactivar cambia lo que resuelve PermissionsForUser
	activeChanged := false
	if in.IsActive != nil {
		activeChanged = user.IsActive != *in.IsActive
		user.IsActive = *in.IsActive
	}
	if in.DisplayName != nil {
		profile.DisplayName = textnorm.PersonName(*in.DisplayName)
	}
	if in.Phone != nil {
		profile.Phone = *in.Phone
	}
	if in.AvatarURL != nil {
		profile.AvatarURL = *in.AvatarURL
	}
	user.UpdatedAt = now
	profile.UpdatedAt = now

	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		if newProfile {
			return r.Users.CreateProfile(ctx, profile)
		}
		return r.Users.UpdateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}
	if activeChanged {
		uc.perms.Invalidate(ctx, id)
	}
	return uc.GetUser(ctx, id)
}

// UpdateUserRole asigna o quita el rol e invalida los permisos memoizados del usuario.
func (uc *AdminUseCase) UpdateUserRole(ctx context.Context, id string, in dto.UpdateUserRoleRequest) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	roleID := in.RoleID
	if roleID != nil && *roleID == "" {
		roleID = nil
	}
	if err := uc.checkRole(ctx, roleID); err != nil {
		return nil, err
	}
	if err := uc.users.UpdateRole(ctx, id, roleID); err != nil {
		return nil, err
	}
	uc.perms.Invalidate(ctx, id)
	return uc.GetUser(ctx, id)
}

// DeleteUser elimina perfil y usuario en una transacción. Un usuario no puede borrarse a sí mismo.
func (uc *AdminUseCase) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == "" {
		return domain.Invalid("userId", "es obligatorio")
	}
	if id == actorID {
		return domain.Invalid("userId", "no puede eliminar su propio usuario")
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrUserNotFound
	}
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		u, err := r.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrUserNotFound
		}
		if err := r.Users.DeleteProfile(ctx, id); err != nil {
			return err
		}
		return r.Users.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.perms.Invalidate(ctx, id)
	return nil
}
