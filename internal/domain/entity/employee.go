package entity

import "time"

// Employee ficha de RR.HH.; puede o no tener usuario del CRM.
type Employee struct {
	ID         string
	UserID     *string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Department string
	JobTitle   string
	JoinDate   *time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName nombre y apellido.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
