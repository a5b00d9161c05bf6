package dto

import "time"

// CreateTaskRequest POST /api/projects/:id/tasks.
type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	AssigneeIDs []string `json:"assignee_ids" validate:"omitempty,dive,uuid"`
}

// UpdateTaskRequest actualización parcial (el estado cambia vía /status).
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTaskStatusRequest PUT /api/tasks/:id/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress review done"`
}

// AssignTaskRequest POST /api/tasks/:id/assign.
type AssignTaskRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
}

// TaskAssignmentDTO asignado de una tarea.
type TaskAssignmentDTO struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// TaskResponse salida de una tarea.
type TaskResponse struct {
	ID          string              `json:"id"`
	ProjectID   string              `json:"project_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	DueDate     *string             `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`
	Assignees   []TaskAssignmentDTO `json:"assignees"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
