package projects

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/application/ports"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

const (
	dispID  = "d0000000-0000-0000-0000-000000000001"
	upsID   = "d0000000-0000-0000-0000-000000000002"
	pmID    = "e0000000-0000-0000-0000-000000000001"
	devID   = "e0000000-0000-0000-0000-000000000002"
	actorID = "a0000000-0000-0000-0000-000000000001"
)

type memProjects struct {
	rows map[string]*entity.Project
}

func (m *memProjects) Create(_ context.Context, p *entity.Project) error {
	for _, existing := range m.rows {
		if existing.SalesDispositionID == p.SalesDispositionID {
			return domain.ErrDuplicate
		}
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) GetBySalesDisposition(_ context.Context, dispositionID string) (*entity.Project, error) {
	for _, p := range m.rows {
		if p.SalesDispositionID == dispositionID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProjects) List(_ context.Context, f repository.ProjectFilter) ([]*entity.Project, error) {
	var out []*entity.Project
	for _, p := range m.rows {
		if f.Status == "" || p.Status == f.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) Update(_ context.Context, p *entity.Project) error {
	if _, ok := m.rows[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memProjects) Financials(_ context.Context, projectID string) (*entity.ProjectFinancials, error) {
	return &entity.ProjectFinancials{
		Gross:       decimal.NewFromInt(1300),
		CashIn:      decimal.NewFromInt(1100),
		Remaining:   decimal.NewFromInt(200),
		UpsellCount: 1,
	}, nil
}

type memDispositions struct {
	repository.SalesDispositionRepository
	rows map[string]*entity.SalesDisposition
}

func (m *memDispositions) GetByID(_ context.Context, id string) (*entity.SalesDisposition, error) {
	return m.rows[id], nil
}

type memEmployees struct {
	repository.EmployeeRepository
	rows map[string]*entity.Employee
}

func (m *memEmployees) GetByID(_ context.Context, id string) (*entity.Employee, error) {
	return m.rows[id], nil
}

type memTasks struct {
	tasks       map[string]*entity.Task
	assignments map[string][]*entity.TaskAssignment
	perf        []*entity.TaskPerformance
}

func (m *memTasks) Create(_ context.Context, t *entity.Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) GetByID(_ context.Context, id string) (*entity.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) ListByProject(_ context.Context, projectID string) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *entity.Task) error {
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) Assign(_ context.Context, a *entity.TaskAssignment) error {
	for _, existing := range m.assignments[a.TaskID] {
		if existing.EmployeeID == a.EmployeeID {
			return nil
		}
	}
	m.assignments[a.TaskID] = append(m.assignments[a.TaskID], a)
	return nil
}

func (m *memTasks) ListAssignments(_ context.Context, taskID string) ([]*entity.TaskAssignment, error) {
	return m.assignments[taskID], nil
}

// AddPerformance reemplaza la fila de (tarea, empleado) como el ON CONFLICT de Postgres.
func (m *memTasks) AddPerformance(_ context.Context, p *entity.TaskPerformance) error {
	for i, cur := range m.perf {
		if cur.TaskID == p.TaskID && cur.EmployeeID == p.EmployeeID {
			m.perf[i] = p
			return nil
		}
	}
	m.perf = append(m.perf, p)
	return nil
}

func (m *memTasks) DeletePerformance(_ context.Context, taskID string) error {
	kept := m.perf[:0]
	for _, p := range m.perf {
		if p.TaskID != taskID {
			kept = append(kept, p)
		}
	}
	m.perf = kept
	return nil
}

func (m *memTasks) PerformanceSummary(context.Context, string) (*entity.TaskPerformanceSummary, error) {
	return &entity.TaskPerformanceSummary{}, nil
}

type passTx struct{ repos repository.Repos }

func (t passTx) Run(_ context.Context, fn func(r repository.Repos) error) error { return fn(t.repos) }

type recordingPublisher struct{ events []ports.Event }

func (p *recordingPublisher) Publish(_ context.Context, events ...ports.Event) error {
	p.events = append(p.events, events...)
	return nil
}

type fixture struct {
	projects *ProjectUseCase
	tasks    *TaskUseCase
	repo     *memTasks
	events   *recordingPublisher
}

func newFixture(now time.Time) fixture {
	orig := dispID
	disp := &memDispositions{rows: map[string]*entity.SalesDisposition{
		dispID: {ID: dispID, CustomerName: "Ana Ruiz", BusinessName: "Panadería Ruiz"},
		upsID:  {ID: upsID, IsUpsell: true, OriginalSalesDispositionID: &orig},
	}}
	emps := &memEmployees{rows: map[string]*entity.Employee{
		pmID:  {ID: pmID, IsActive: true},
		devID: {ID: devID, IsActive: true},
	}}
	projRepo := &memProjects{rows: map[string]*entity.Project{}}
	taskRepo := &memTasks{tasks: map[string]*entity.Task{}, assignments: map[string][]*entity.TaskAssignment{}}
	events := &recordingPublisher{}
	tx := passTx{repos: repository.Repos{Tasks: taskRepo, Employees: emps, Projects: projRepo}}

	pu := NewProjectUseCase(projRepo, disp, emps, events, nil)
	pu.now = func() time.Time { return now }
	tu := NewTaskUseCase(taskRepo, projRepo, emps, tx)
	tu.now = func() time.Time { return now }
	return fixture{projects: pu, tasks: tu, repo: taskRepo, events: events}
}

func TestCreateProject_NombrePorDefectoYFinancials(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	pm := pmID

	p, err := f.projects.Create(context.Background(), actorID, dto.CreateProjectRequest{
		SalesDispositionID: dispID, ProjectManagerID: &pm,
	})
	require.NoError(t, err)
	assert.Equal(t, "Panadería Ruiz", p.Name)
	assert.Equal(t, entity.ProjectStatusNew, p.Status)
	require.NotNil(t, p.Financials)
	assert.Equal(t, 1, p.Financials.UpsellCount)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, ports.EventProjectCreated, f.events.events[0].Name)

	_, err = f.projects.Create(context.Background(), actorID, dto.CreateProjectRequest{SalesDispositionID: dispID})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateProject_UpsellRechazado(t *testing.T) {
	f := newFixture(time.Now().UTC())

	_, err := f.projects.Create(context.Background(), actorID, dto.CreateProjectRequest{SalesDispositionID: upsID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignProject_EmpleadoInexistente(t *testing.T) {
	f := newFixture(time.Now().UTC())
	p, err := f.projects.Create(context.Background(), actorID, dto.CreateProjectRequest{SalesDispositionID: dispID})
	require.NoError(t, err)

	_, err = f.projects.Assign(context.Background(), p.ID, dto.AssignProjectRequest{ProjectManagerID: "e0000000-0000-0000-0000-0000000000ff"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.projects.Assign(context.Background(), p.ID, dto.AssignProjectRequest{ProjectManagerID: pmID})
	require.NoError(t, err)
	require.NotNil(t, out.ProjectManagerID)
	assert.Equal(t, pmID, *out.ProjectManagerID)
}

func createTask(t *testing.T, f fixture, due string) *dto.TaskResponse {
	t.Helper()
	p, err := f.projects.Create(context.Background(), actorID, dto.CreateProjectRequest{SalesDispositionID: dispID})
	require.NoError(t, err)
	task, err := f.tasks.Create(context.Background(), actorID, p.ID, dto.CreateTaskRequest{
		Title: "Diseñar landing", DueDate: due, AssigneeIDs: []string{pmID, devID},
	})
	require.NoError(t, err)
	return task
}

func TestUpdateStatus_DoneATiempo(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC))
	task := createTask(t, f, "2024-05-10")
	assert.Len(t, task.Assignees, 2)
	assert.Equal(t, "medium", task.Priority)

	out, err := f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone})
	require.NoError(t, err)
	require.NotNil(t, out.CompletedAt)
	require.Len(t, f.repo.perf, 2)
	for _, p := range f.repo.perf {
		assert.True(t, p.OnTime)
		assert.False(t, p.Strike)
	}
}

func TestUpdateStatus_DoneTardeSumaStrike(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 13, 12, 0, 0, 0, time.UTC))
	task := createTask(t, f, "2024-05-10")

	_, err := f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone})
	require.NoError(t, err)
	require.Len(t, f.repo.perf, 2)
	assert.False(t, f.repo.perf[0].OnTime)
	assert.True(t, f.repo.perf[0].Strike)
	assert.Equal(t, 3, f.repo.perf[0].DaysLate)
}

func TestUpdateStatus_SalirDeDoneLimpiaCompletedAt(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	task := createTask(t, f, "")

	_, err := f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone})
	require.NoError(t, err)
	out, err := f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusReview})
	require.NoError(t, err)
	assert.Nil(t, out.CompletedAt)
	assert.Empty(t, f.repo.perf, "una tarea reabierta no cuenta en el resumen")

	_, err = f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone})
	require.NoError(t, err)
	assert.Len(t, f.repo.perf, 2, "cerrar de nuevo vuelve a registrar")
}

func TestUpdateStatus_ReabrirSoloBorraEsaTarea(t *testing.T) {
	f := newFixture(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	a := createTask(t, f, "")
	b := createTask(t, f, "")
	for _, id := range []string{a.ID, b.ID} {
		_, err := f.tasks.UpdateStatus(context.Background(), id, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusDone})
		require.NoError(t, err)
	}
	require.Len(t, f.repo.perf, 4)

	_, err := f.tasks.UpdateStatus(context.Background(), a.ID, dto.UpdateTaskStatusRequest{Status: entity.TaskStatusInProgress})
	require.NoError(t, err)
	require.Len(t, f.repo.perf, 2)
	for _, p := range f.repo.perf {
		assert.Equal(t, b.ID, p.TaskID)
	}
}

func TestListByProject_ProyectoInexistente(t *testing.T) {
	f := newFixture(time.Now().UTC())
	task := createTask(t, f, "")

	list, err := f.tasks.ListByProject(context.Background(), task.ProjectID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.tasks.ListByProject(context.Background(), "f0000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.tasks.ListByProject(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_EstadoInvalido(t *testing.T) {
	f := newFixture(time.Now().UTC())
	task := createTask(t, f, "")

	_, err := f.tasks.UpdateStatus(context.Background(), task.ID, dto.UpdateTaskStatusRequest{Status: "archivada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateTask_ProyectoInexistente(t *testing.T) {
	f := newFixture(time.Now().UTC())

	_, err := f.tasks.Create(context.Background(), actorID, "f0000000-0000-0000-0000-000000000000", dto.CreateTaskRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
