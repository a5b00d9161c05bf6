package entity

import "time"

// Estados de una tarea.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusReview     = "review"
	TaskStatusDone       = "done"
)

// TaskStatuses estados válidos.
var TaskStatuses = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone}

// Prioridades de una tarea.
var TaskPriorities = []string{"low", "medium", "high", "urgent"}

// Task unidad de trabajo dentro de un Project.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskAssignment asignación de una tarea a un empleado.
type TaskAssignment struct {
	TaskID       string
	EmployeeID   string
	EmployeeName string
	AssignedBy   string
	AssignedAt   time.Time
}

// TaskPerformance histórico de cumplimiento de una tarea por empleado.
type TaskPerformance struct {
	ID          string
	TaskID      string
	EmployeeID  string
	DueDate     *time.Time
	CompletedAt time.Time
	OnTime      bool
	DaysLate    int
	Strike      bool
	CreatedAt   time.Time
}

// TaskPerformanceSummary agregado por empleado.
type TaskPerformanceSummary struct {
	EmployeeID string
	Completed  int
	OnTime     int
	Late       int
	Strikes    int
}
