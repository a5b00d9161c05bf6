package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.LeadRepository = (*LeadRepo)(nil)

// LeadRepo implementación de LeadRepository (usable con pool o tx).
type LeadRepo struct {
	q Querier
}

// NewLeadRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLeadRepository(q Querier) *LeadRepo {
	return &LeadRepo{q: q}
}

var leadColumns = []string{
	"id", "name", "email", "phone", "company_name", "source", "status", "notes",
	"assigned_to", "sales_disposition_id", "converted_at", "created_by", "created_at", "updated_at",
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var (
		l         entity.Lead
		createdBy *string
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.CompanyName, &l.Source, &l.Status, &l.Notes,
		&l.AssignedTo, &l.SalesDispositionID, &l.ConvertedAt, &createdBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.CreatedBy = deref(createdBy)
	return &l, nil
}

// Create persiste un nuevo lead.
func (r *LeadRepo) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, company_name, source, status, notes, assigned_to, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.CompanyName, l.Source, l.Status, l.Notes,
		l.AssignedTo, nullable(l.CreatedBy), l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("lead", "estado u origen inválido")
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("assigned_to", "el usuario asignado no existe")
		}
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// GetByID obtiene un lead por ID.
func (r *LeadRepo) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	query, args, err := sq.Select(leadColumns...).From("leads").
		Where(sq.Eq{"id": id}).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lead query: %w", err)
	}
	l, err := scanLead(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// List lista leads filtrados y devuelve también el total sin paginar.
func (r *LeadRepo) List(ctx context.Context, f repository.LeadFilter) ([]*entity.Lead, int, error) {
	countQuery, countArgs, err := applyLeadFilter(sq.Select("count(*)").From("leads"), f).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build lead count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	if total == 0 {
		return []*entity.Lead{}, 0, nil
	}

	limit, offset := paginate(f.Limit, f.Offset)
	query, args, err := applyLeadFilter(sq.Select(leadColumns...).From("leads"), f).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build lead list: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Lead, 0, limit)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		list = append(list, l)
	}
	return list, total, rows.Err()
}

func applyLeadFilter(stmt sq.SelectBuilder, f repository.LeadFilter) sq.SelectBuilder {
	if f.Status != "" {
		stmt = stmt.Where(sq.Eq{"status": f.Status})
	}
	if f.Source != "" {
		stmt = stmt.Where(sq.Eq{"source": f.Source})
	}
	if f.AssignedTo != "" {
		stmt = stmt.Where(sq.Eq{"assigned_to": f.AssignedTo})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		stmt = stmt.Where(sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"email": like},
			sq.ILike{"company_name": like},
		})
	}
	return stmt
}

// Update actualiza los datos editables del lead.
func (r *LeadRepo) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET name = $2, email = $3, phone = $4, company_name = $5, source = $6,
			status = $7, notes = $8, assigned_to = $9, updated_at = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.CompanyName, l.Source, l.Status, l.Notes, l.AssignedTo, l.UpdatedAt,
	)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("lead", "estado u origen inválido")
		}
		if isForeignKeyViolation(err) {
			return domain.Invalid("assigned_to", "el usuario asignado no existe")
		}
		return fmt.Errorf("update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un lead.
func (r *LeadRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkConverted enlaza el lead con la venta generada.
// Falla con ErrConflict si el lead ya estaba convertido.
func (r *LeadRepo) MarkConverted(ctx context.Context, id, dispositionID string, at time.Time) error {
	query := `
		UPDATE leads SET status = 'converted', sales_disposition_id = $2, converted_at = $3, updated_at = $3
		WHERE id = $1 AND status <> 'converted'`
	tag, err := r.q.Exec(ctx, query, id, dispositionID, at)
	if err != nil {
		return fmt.Errorf("mark lead converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// ReleaseConversion desenlaza el lead de una venta que se va a borrar para poder convertirlo otra vez.
func (r *LeadRepo) ReleaseConversion(ctx context.Context, dispositionID string, at time.Time) error {
	query := `
		UPDATE leads SET status = 'qualified', sales_disposition_id = NULL, converted_at = NULL, updated_at = $2
		WHERE sales_disposition_id = $1`
	if _, err := r.q.Exec(ctx, query, dispositionID, at); err != nil {
		return fmt.Errorf("release lead conversion: %w", err)
	}
	return nil
}
