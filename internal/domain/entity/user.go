package entity

import "time"

// User identidad de autenticación del CRM.
// El rol es opcional: un usuario sin rol no tiene ningún permiso.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	RoleID       *string
	RoleName     string // desnormalizado desde roles.name en lecturas
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole indica si el usuario tiene un rol asignado.
func (u *User) HasRole() bool {
	return u.RoleID != nil && *u.RoleID != ""
}

// UserProfile datos visibles del usuario (relación 1:1 con User).
type UserProfile struct {
	UserID      string
	DisplayName string
	Phone       string
	AvatarURL   string
	EmployeeID  *string // enlace opcional a la ficha de RR.HH.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
