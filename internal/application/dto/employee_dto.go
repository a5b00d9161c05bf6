package dto

import "time"

// CreateEmployeeRequest alta de empleado. JoinDate en formato YYYY-MM-DD.
type CreateEmployeeRequest struct {
	UserID     *string `json:"user_id" validate:"omitempty,uuid"`
	FirstName  string  `json:"first_name" validate:"required,max=100"`
	LastName   string  `json:"last_name" validate:"omitempty,max=100"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone" validate:"omitempty,max=40"`
	Department string  `json:"department" validate:"omitempty,max=100"`
	JobTitle   string  `json:"job_title" validate:"omitempty,max=100"`
	JoinDate   string  `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateEmployeeRequest actualización parcial.
type UpdateEmployeeRequest struct {
	UserID     *string `json:"user_id" validate:"omitempty,uuid"`
	FirstName  *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"last_name" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=40"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	JobTitle   *string `json:"job_title" validate:"omitempty,max=100"`
	JoinDate   *string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive   *bool   `json:"is_active"`
}

// EmployeeFilter query del listado.
type EmployeeFilter struct {
	PageRequest
	Department string `query:"department"`
	ActiveOnly bool   `query:"active"`
}

// EmployeeResponse salida de un empleado.
type EmployeeResponse struct {
	ID         string     `json:"id"`
	UserID     *string    `json:"user_id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Department string     `json:"department"`
	JobTitle   string     `json:"job_title"`
	JoinDate   *time.Time `json:"join_date"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TaskPerformanceResponse GET /api/employees/:id/performance.
type TaskPerformanceResponse struct {
	EmployeeID string  `json:"employee_id"`
	Completed  int     `json:"completed"`
	OnTime     int     `json:"on_time"`
	Late       int     `json:"late"`
	Strikes    int     `json:"strikes"`
	OnTimeRate float64 `json:"on_time_rate"`
}
