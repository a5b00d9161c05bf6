package repository

import (
	"context"
	"time"

	"github.com/jhoicas/CRM-api/internal/domain/entity"
)

// PerformanceRepository tablas mensuales front_seller_performance / upseller_performance.
type PerformanceRepository interface {
	// Upsert reemplaza los acumulados del (departamento, vendedor, mes) conservando las metas.
	Upsert(ctx context.Context, rec *entity.PerformanceRecord) error
	// LockSellerMonth serializa los recálculos del (departamento, vendedor, mes) hasta el fin de la tx.
	LockSellerMonth(ctx context.Context, department, sellerID string, month time.Time) error
	ListByMonth(ctx context.Context, department string, month time.Time) ([]*entity.PerformanceRecord, error)
}
