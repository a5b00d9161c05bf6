package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"required,min=8"`
	DisplayName string  `json:"display_name" validate:"required,min=1,max=200"`
	Phone       string  `json:"phone" validate:"omitempty,max=40"`
	RoleID      *string `json:"role_id" validate:"omitempty,uuid"`
	EmployeeID  *string `json:"employee_id" validate:"omitempty,uuid"`
}

// UpdateUserRequest actualización parcial de usuario y perfil.
type UpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=200"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateUserRoleRequest asigna o quita (null) el rol.
type UpdateUserRoleRequest struct {
	RoleID *string `json:"role_id" validate:"omitempty,uuid"`
}

// DeleteUserRequest cuerpo de DELETE /api/admin/delete-user.
type DeleteUserRequest struct {
	UserID string `json:"userId" query:"userId" validate:"required,uuid"`
}

// UserResponse salida de un usuario (sin password) con su perfil.
type UserResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	RoleID      *string    `json:"role_id"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	DisplayName string     `json:"display_name"`
	Phone       string     `json:"phone"`
	AvatarURL   string     `json:"avatar_url"`
	EmployeeID  *string    `json:"employee_id"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT, usuario y permisos efectivos.
type LoginResponse struct {
	Token       string                         `json:"token"`
	User        UserResponse                   `json:"user"`
	Permissions map[string]ModulePermissionDTO `json:"permissions"`
}

// MeResponse GET /api/auth/me.
type MeResponse struct {
	User        UserResponse                   `json:"user"`
	Permissions map[string]ModulePermissionDTO `json:"permissions"`
}
