package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/usecase"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/jwt"
	"github.com/jhoicas/CRM-api/pkg/logger"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y perfil actual.
type AuthUseCase struct {
	userRepo repository.UserRepository
	perms    *usecase.PermissionService
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, perms *usecase.PermissionService, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{userRepo: userRepo, perms: perms, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// Login verifica email/password, genera JWT y retorna token + usuario + permisos.
// Email inexistente y password incorrecto devuelven el mismo error (ErrUnauthorized).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, textnorm.Email(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, user.RoleName, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar last_login_at")
	}
	profile, err := uc.userRepo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	set, err := uc.perms.ForUser(ctx, user.ID)
	if err != nil {
		// fail-closed: login válido pero sin permisos visibles
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("no se pudieron cargar permisos en login")
		set = nil
	}
	return &dto.LoginResponse{
		Token:       token,
		User:        dto.NewUserResponse(user, profile),
		Permissions: dto.NewPermissionMap(set),
	}, nil
}

// Me devuelve el usuario autenticado con su perfil y permisos.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	profile, err := uc.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	set, err := uc.perms.ForUser(ctx, userID)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", userID).Msg("no se pudieron cargar permisos")
		set = nil
	}
	return &dto.MeResponse{
		User:        dto.NewUserResponse(user, profile),
		Permissions: dto.NewPermissionMap(set),
	}, nil
}
