package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios (pool o tx).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `
	u.id, u.email, u.password_hash, u.role_id, COALESCE(r.name, ''), u.is_active,
	u.last_login_at, u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.RoleID, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("role_id", "el rol no existe")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (case-insensitive).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		WHERE lower(u.email) = lower($1) LIMIT 1`
	u, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// List lista usuarios con paginación, más recientes primero.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	limit, offset = paginate(limit, offset)
	query := `SELECT ` + userColumns + `
		FROM users u LEFT JOIN roles r ON r.id = u.role_id
		ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Update actualiza email, hash, estado activo y rol.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, role_id = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.RoleID, user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateRole asigna (o quita, con nil) el rol del usuario.
func (r *UserRepo) UpdateRole(ctx context.Context, userID string, roleID *string) error {
	tag, err := r.q.Exec(ctx, `UPDATE users SET role_id = $2, updated_at = now() WHERE id = $1`, userID, roleID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Invalid("role_id", "el rol no existe")
		}
		return fmt.Errorf("update user role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// TouchLastLogin registra la hora del último login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

// Delete elimina el usuario; perfil y participaciones caen por ON DELETE CASCADE.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict // tiene ventas registradas como vendedor
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CreateProfile persiste el perfil 1:1 del usuario.
func (r *UserRepo) CreateProfile(ctx context.Context, p *entity.UserProfile) error {
	query := `
		INSERT INTO user_profiles (user_id, display_name, phone, avatar_url, employee_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		p.UserID, p.DisplayName, p.Phone, p.AvatarURL, p.EmployeeID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate // empleado ya vinculado a otro usuario
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("employee_id", "el empleado no existe")
		}
		return fmt.Errorf("insert user profile: %w", err)
	}
	return nil
}

// GetProfile obtiene el perfil de un usuario.
func (r *UserRepo) GetProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	query := `
		SELECT user_id, display_name, phone, avatar_url, employee_id, created_at, updated_at
		FROM user_profiles WHERE user_id = $1`
	var p entity.UserProfile
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.DisplayName, &p.Phone, &p.AvatarURL, &p.EmployeeID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile actualiza el perfil.
func (r *UserRepo) UpdateProfile(ctx context.Context, p *entity.UserProfile) error {
	query := `
		UPDATE user_profiles SET display_name = $2, phone = $3, avatar_url = $4, employee_id = $5, updated_at = $6
		WHERE user_id = $1`
	_, err := r.q.Exec(ctx, query, p.UserID, p.DisplayName, p.Phone, p.AvatarURL, p.EmployeeID, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// DeleteProfile elimina el perfil del usuario.
func (r *UserRepo) DeleteProfile(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete user profile: %w", err)
	}
	return nil
}
