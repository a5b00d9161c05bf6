package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura para el dashboard del CRM.
type AnalyticsRepo struct {
	q Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(q Querier) *AnalyticsRepo {
	return &AnalyticsRepo{q: q}
}

// SalesTotals ventas, upsells y montos del período [from, to).
// Usa COALESCE para devolver cero si no hay filas (período sin ventas).
func (r *AnalyticsRepo) SalesTotals(ctx context.Context, from, to time.Time) (repository.SalesTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                 AS dispositions,
	    COUNT(*) FILTER (WHERE d.is_upsell)      AS upsells,
	    COALESCE(SUM(d.gross_value), 0)          AS gross,
	    COALESCE(SUM(d.cash_in),     0)          AS cash_in,
	    COALESCE(SUM(d.remaining),   0)          AS remaining
	FROM sales_dispositions d
	WHERE d.sale_date >= $1
	  AND d.sale_date <  $2`

	var t repository.SalesTotals
	err := r.q.QueryRow(ctx, query, from, to).
		Scan(&t.Dispositions, &t.Upsells, &t.Gross, &t.CashIn, &t.Remaining)
	if err != nil {
		return repository.SalesTotals{}, fmt.Errorf("analytics.SalesTotals: %w", err)
	}
	return t, nil
}

// LeadsByStatus conteo de leads por estado.
func (r *AnalyticsRepo) LeadsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "analytics.LeadsByStatus", `SELECT status, COUNT(*) FROM leads GROUP BY status`)
}

// ProjectsByStatus conteo de proyectos por estado.
func (r *AnalyticsRepo) ProjectsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "analytics.ProjectsByStatus", `SELECT status, COUNT(*) FROM projects GROUP BY status`)
}

func (r *AnalyticsRepo) countBy(ctx context.Context, op, query string) (map[string]int, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

// TopSellers los `limit` vendedores con mayor cash-in del período.
func (r *AnalyticsRepo) TopSellers(ctx context.Context, from, to time.Time, limit int) ([]repository.SellerRanking, error) {
	const query = `
	SELECT
	    d.seller_id,
	    COALESCE(p.display_name, u.email, '')    AS seller_name,
	    COUNT(*)                                 AS accounts,
	    SUM(d.gross_value)                       AS gross,
	    SUM(d.cash_in)                           AS cash_in
	FROM sales_dispositions d
	LEFT JOIN users         u ON u.id      = d.seller_id
	LEFT JOIN user_profiles p ON p.user_id = d.seller_id
	WHERE d.sale_date >= $1
	  AND d.sale_date <  $2
	GROUP BY d.seller_id, p.display_name, u.email
	ORDER BY cash_in DESC, accounts DESC
	LIMIT $3`

	rows, err := r.q.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopSellers: %w", err)
	}
	defer rows.Close()

	results := []repository.SellerRanking{}
	for rows.Next() {
		var row repository.SellerRanking
		if err := rows.Scan(
			&row.SellerID,
			&row.SellerName,
			&row.Accounts,
			&row.Gross,
			&row.CashIn,
		); err != nil {
			return nil, fmt.Errorf("analytics.TopSellers scan: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics.TopSellers rows: %w", err)
	}
	return results, nil
}
