package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.PerformanceRepository = (*PerformanceRepo)(nil)

// PerformanceRepo tablas mensuales de desempeño por departamento.
type PerformanceRepo struct {
	q Querier
}

// NewPerformanceRepository construye el adaptador (pool o tx).
func NewPerformanceRepository(q Querier) *PerformanceRepo {
	return &PerformanceRepo{q: q}
}

func performanceTable(department string) (string, error) {
	switch department {
	case entity.DepartmentFrontSales:
		return "front_seller_performance", nil
	case entity.DepartmentUpseller:
		return "upseller_performance", nil
	}
	return "", domain.Invalid("department", "departamento desconocido: "+department)
}

// Upsert reemplaza acumulados del mes; las metas existentes no se tocan.
func (r *PerformanceRepo) Upsert(ctx context.Context, rec *entity.PerformanceRecord) error {
	table, err := performanceTable(rec.Department)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO ` + table + ` (seller_id, month, accounts_achieved, total_gross, total_cash_in, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (seller_id, month) DO UPDATE SET
			accounts_achieved = EXCLUDED.accounts_achieved,
			total_gross = EXCLUDED.total_gross,
			total_cash_in = EXCLUDED.total_cash_in,
			updated_at = EXCLUDED.updated_at
		RETURNING id, target_accounts, target_cash_in`
	err = r.q.QueryRow(ctx, query,
		rec.SellerID, entity.MonthStart(rec.Month), rec.AccountsAchieved, rec.TotalGross, rec.TotalCashIn, rec.UpdatedAt,
	).Scan(&rec.ID, &rec.TargetAccounts, &rec.TargetCashIn)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// LockSellerMonth toma un advisory lock de transacción sobre la fila mensual.
// Dos ventas concurrentes del mismo vendedor y mes esperan a que la otra confirme,
// así SellerTotals ve ambas filas.
func (r *PerformanceRepo) LockSellerMonth(ctx context.Context, department, sellerID string, month time.Time) error {
	table, err := performanceTable(department)
	if err != nil {
		return err
	}
	key := table + ":" + sellerID + ":" + entity.MonthStart(month).Format("2006-01")
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("lock %s: %w", table, err)
	}
	return nil
}

// ListByMonth filas del mes ordenadas por cash-in descendente.
func (r *PerformanceRepo) ListByMonth(ctx context.Context, department string, month time.Time) ([]*entity.PerformanceRecord, error) {
	table, err := performanceTable(department)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT p.id, p.seller_id, COALESCE(up.display_name, u.email, ''), p.month,
			p.accounts_achieved, p.total_gross, p.total_cash_in, p.target_accounts, p.target_cash_in, p.updated_at
		FROM ` + table + ` p
		LEFT JOIN users u ON u.id = p.seller_id
		LEFT JOIN user_profiles up ON up.user_id = p.seller_id
		WHERE p.month = $1
		ORDER BY p.total_cash_in DESC, p.accounts_achieved DESC`
	rows, err := r.q.Query(ctx, query, entity.MonthStart(month))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var list []*entity.PerformanceRecord
	for rows.Next() {
		rec := entity.PerformanceRecord{Department: department}
		if err := rows.Scan(
			&rec.ID, &rec.SellerID, &rec.SellerName, &rec.Month,
			&rec.AccountsAchieved, &rec.TotalGross, &rec.TotalCashIn, &rec.TargetAccounts, &rec.TargetCashIn, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
