package repository

import "context"

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Users         UserRepository
	Roles         RoleRepository
	Employees     EmployeeRepository
	Leads         LeadRepository
	Dispositions  SalesDispositionRepository
	Performance   PerformanceRepository
	Projects      ProjectRepository
	Tasks         TaskRepository
	Conversations ConversationRepository
}

// TxRunner ejecuta fn dentro de una transacción; Commit si fn devuelve nil, Rollback si no.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
