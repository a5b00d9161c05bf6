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

var _ repository.SalesDispositionRepository = (*SalesDispositionRepo)(nil)

// SalesDispositionRepo ventas registradas sobre PostgreSQL.
type SalesDispositionRepo struct {
	q Querier
}

// NewSalesDispositionRepository construye el adaptador (pool o tx).
func NewSalesDispositionRepository(q Querier) *SalesDispositionRepo {
	return &SalesDispositionRepo{q: q}
}

// company y source son enums: se leen como texto y se escriben con cast explícito.
var dispositionColumns = []string{
	"d.id", "d.lead_id", "d.original_sales_disposition_id", "d.is_upsell",
	"d.customer_name", "d.customer_email", "d.customer_phone", "d.business_name",
	"d.services", "d.service_details", "d.gross_value", "d.cash_in", "d.remaining",
	"d.payment_mode", "d.company::text", "d.source::text", "d.seller_id", "COALESCE(p.display_name, u.email, '')",
	"d.sale_date", "d.created_by", "d.created_at", "d.updated_at",
}

func dispositionSelect(columns ...string) sq.SelectBuilder {
	return sq.Select(columns...).
		From("sales_dispositions d").
		LeftJoin("users u ON u.id = d.seller_id").
		LeftJoin("user_profiles p ON p.user_id = d.seller_id").
		PlaceholderFormat(sq.Dollar)
}

func scanDisposition(row pgx.Row) (*entity.SalesDisposition, error) {
	var (
		d         entity.SalesDisposition
		createdBy *string
	)
	err := row.Scan(
		&d.ID, &d.LeadID, &d.OriginalSalesDispositionID, &d.IsUpsell,
		&d.CustomerName, &d.CustomerEmail, &d.CustomerPhone, &d.BusinessName,
		&d.Services, &d.ServiceDetails, &d.GrossValue, &d.CashIn, &d.Remaining,
		&d.PaymentMode, &d.Company, &d.Source, &d.SellerID, &d.SellerName,
		&d.SaleDate, &createdBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.CreatedBy = deref(createdBy)
	if d.Services == nil {
		d.Services = []string{}
	}
	return &d, nil
}

func mapDispositionWriteError(op string, err error) error {
	switch {
	case isCheckViolation(err):
		return domain.Invalid("sales_disposition", "montos o datos de upsell inválidos")
	case isForeignKeyViolation(err):
		return domain.Invalid("sales_disposition", "lead, venta original o vendedor inexistente")
	case pgCode(err) == "22P02":
		return domain.Invalid("sales_disposition", "valor de enumeración inválido")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create persiste una venta.
func (r *SalesDispositionRepo) Create(ctx context.Context, d *entity.SalesDisposition) error {
	query := `
		INSERT INTO sales_dispositions (
			id, lead_id, original_sales_disposition_id, is_upsell,
			customer_name, customer_email, customer_phone, business_name,
			services, service_details, gross_value, cash_in, remaining,
			payment_mode, company, source, seller_id, sale_date, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15::text::sale_company, $16::text::sale_source, $17, $18, $19, $20, $21)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.LeadID, d.OriginalSalesDispositionID, d.IsUpsell,
		d.CustomerName, d.CustomerEmail, d.CustomerPhone, d.BusinessName,
		d.Services, d.ServiceDetails, d.GrossValue, d.CashIn, d.Remaining,
		d.PaymentMode, d.Company, d.Source, d.SellerID, d.SaleDate, nullable(d.CreatedBy), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return mapDispositionWriteError("insert sales disposition", err)
	}
	return nil
}

// GetByID obtiene una venta por ID con el nombre del vendedor.
func (r *SalesDispositionRepo) GetByID(ctx context.Context, id string) (*entity.SalesDisposition, error) {
	query, args, err := dispositionSelect(dispositionColumns...).Where(sq.Eq{"d.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build disposition query: %w", err)
	}
	d, err := scanDisposition(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales disposition: %w", err)
	}
	return d, nil
}

// List lista ventas filtradas (más recientes primero) con el total sin paginar.
func (r *SalesDispositionRepo) List(ctx context.Context, f repository.DispositionFilter) ([]*entity.SalesDisposition, int, error) {
	countQuery, countArgs, err := applyDispositionFilter(
		sq.Select("count(*)").From("sales_dispositions d").PlaceholderFormat(sq.Dollar), f,
	).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build disposition count: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales dispositions: %w", err)
	}
	if total == 0 {
		return []*entity.SalesDisposition{}, 0, nil
	}

	limit, offset := paginate(f.Limit, f.Offset)
	query, args, err := applyDispositionFilter(dispositionSelect(dispositionColumns...), f).
		OrderBy("d.sale_date DESC", "d.created_at DESC").
		Limit(uint64(limit)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build disposition list: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales dispositions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.SalesDisposition, 0, limit)
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sales disposition: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

func applyDispositionFilter(stmt sq.SelectBuilder, f repository.DispositionFilter) sq.SelectBuilder {
	if f.SellerID != "" {
		stmt = stmt.Where(sq.Eq{"d.seller_id": f.SellerID})
	}
	if f.Source != "" {
		stmt = stmt.Where(sq.Expr("d.source::text = ?", f.Source))
	}
	if f.Company != "" {
		stmt = stmt.Where(sq.Expr("d.company::text = ?", f.Company))
	}
	if f.IsUpsell != nil {
		stmt = stmt.Where(sq.Eq{"d.is_upsell": *f.IsUpsell})
	}
	if f.OriginalID != "" {
		stmt = stmt.Where(sq.Eq{"d.original_sales_disposition_id": f.OriginalID})
	}
	if f.From != nil {
		stmt = stmt.Where(sq.GtOrEq{"d.sale_date": *f.From})
	}
	if f.To != nil {
		stmt = stmt.Where(sq.Lt{"d.sale_date": *f.To})
	}
	return stmt
}

// Update reemplaza los campos editables de la venta.
func (r *SalesDispositionRepo) Update(ctx context.Context, d *entity.SalesDisposition) error {
	query := `
		UPDATE sales_dispositions SET
			customer_name = $2, customer_email = $3, customer_phone = $4, business_name = $5,
			services = $6, service_details = $7, gross_value = $8, cash_in = $9, remaining = $10,
			payment_mode = $11, company = $12::text::sale_company, source = $13::text::sale_source,
			seller_id = $14, sale_date = $15, updated_at = $16
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		d.ID, d.CustomerName, d.CustomerEmail, d.CustomerPhone, d.BusinessName,
		d.Services, d.ServiceDetails, d.GrossValue, d.CashIn, d.Remaining,
		d.PaymentMode, d.Company, d.Source, d.SellerID, d.SaleDate, d.UpdatedAt,
	)
	if err != nil {
		return mapDispositionWriteError("update sales disposition", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una venta. Upsells y proyecto la referencian con ON DELETE RESTRICT.
func (r *SalesDispositionRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales_dispositions WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) || isCheckViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete sales disposition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SellerTotals cuenta y suma las ventas del vendedor en [from, to).
func (r *SalesDispositionRepo) SellerTotals(ctx context.Context, sellerID string, isUpsell bool, from, to time.Time) (repository.SellerTotals, error) {
	query := `
		SELECT count(*), COALESCE(sum(gross_value), 0), COALESCE(sum(cash_in), 0)
		FROM sales_dispositions
		WHERE seller_id = $1 AND is_upsell = $2 AND sale_date >= $3 AND sale_date < $4`
	var t repository.SellerTotals
	if err := r.q.QueryRow(ctx, query, sellerID, isUpsell, from, to).Scan(&t.Accounts, &t.Gross, &t.CashIn); err != nil {
		return repository.SellerTotals{}, fmt.Errorf("seller totals: %w", err)
	}
	return t, nil
}
