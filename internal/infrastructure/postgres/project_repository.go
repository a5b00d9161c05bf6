package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo proyectos sobre PostgreSQL.
type ProjectRepo struct {
	q Querier
}

// NewProjectRepository construye el adaptador (pool o tx).
func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

var projectColumns = []string{
	"p.id", "p.sales_disposition_id", "p.name", "p.client_name", "p.description",
	"p.project_manager_id", "COALESCE(trim(e.first_name || ' ' || e.last_name), '')",
	"p.status", "p.due_date", "p.created_by", "p.created_at", "p.updated_at",
}

func projectSelect() sq.SelectBuilder {
	return sq.Select(projectColumns...).
		From("projects p").
		LeftJoin("employees e ON e.id = p.project_manager_id").
		PlaceholderFormat(sq.Dollar)
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var (
		p         entity.Project
		createdBy *string
	)
	err := row.Scan(
		&p.ID, &p.SalesDispositionID, &p.Name, &p.ClientName, &p.Description,
		&p.ProjectManagerID, &p.ProjectManagerName,
		&p.Status, &p.DueDate, &createdBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = deref(createdBy)
	return &p, nil
}

func (r *ProjectRepo) getOne(ctx context.Context, where sq.Eq) (*entity.Project, error) {
	query, args, err := projectSelect().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project query: %w", err)
	}
	p, err := scanProject(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// Create persiste un proyecto. Una venta solo puede tener un proyecto.
func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	query := `
		INSERT INTO projects (id, sales_disposition_id, name, client_name, description, project_manager_id,
			status, due_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SalesDispositionID, p.Name, p.ClientName, p.Description, p.ProjectManagerID,
		p.Status, p.DueDate, nullable(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.Invalid("project", "venta o project manager inexistente")
		case isCheckViolation(err):
			return domain.Invalid("status", "estado inválido")
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetByID obtiene un proyecto por ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return r.getOne(ctx, sq.Eq{"p.id": id})
}

// GetBySalesDisposition proyecto asociado a una venta.
func (r *ProjectRepo) GetBySalesDisposition(ctx context.Context, dispositionID string) (*entity.Project, error) {
	return r.getOne(ctx, sq.Eq{"p.sales_disposition_id": dispositionID})
}

// List lista proyectos filtrados, más recientes primero.
func (r *ProjectRepo) List(ctx context.Context, f repository.ProjectFilter) ([]*entity.Project, error) {
	limit, offset := paginate(f.Limit, f.Offset)
	stmt := projectSelect()
	if f.Status != "" {
		stmt = stmt.Where(sq.Eq{"p.status": f.Status})
	}
	if f.ProjectManagerID != "" {
		stmt = stmt.Where(sq.Eq{"p.project_manager_id": f.ProjectManagerID})
	}
	query, args, err := stmt.OrderBy("p.created_at DESC").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build project list: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Project, 0, limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza los datos editables del proyecto.
func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project) error {
	query := `
		UPDATE projects SET name = $2, client_name = $3, description = $4, project_manager_id = $5,
			status = $6, due_date = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.ClientName, p.Description, p.ProjectManagerID, p.Status, p.DueDate, p.UpdatedAt,
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.Invalid("project_manager_id", "el project manager no existe")
		case isCheckViolation(err):
			return domain.Invalid("status", "estado inválido")
		}
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el proyecto y, en cascada, sus tareas.
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Financials venta original del proyecto + upsells que la referencian.
func (r *ProjectRepo) Financials(ctx context.Context, projectID string) (*entity.ProjectFinancials, error) {
	query := `
		SELECT COALESCE(sum(d.gross_value), 0), COALESCE(sum(d.cash_in), 0), COALESCE(sum(d.remaining), 0),
			count(*) FILTER (WHERE d.is_upsell)
		FROM projects p
		JOIN sales_dispositions d
			ON d.id = p.sales_disposition_id OR d.original_sales_disposition_id = p.sales_disposition_id
		WHERE p.id = $1`
	var f entity.ProjectFinancials
	if err := r.q.QueryRow(ctx, query, projectID).Scan(&f.Gross, &f.CashIn, &f.Remaining, &f.UpsellCount); err != nil {
		return nil, fmt.Errorf("project financials: %w", err)
	}
	return &f, nil
}
