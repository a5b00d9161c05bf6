package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain"
	"github.com/jhoicas/CRM-api/internal/domain/entity"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

const monthLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

// PerformanceUseCase tablas de desempeño mensual (front sales / upseller).
type PerformanceUseCase struct {
	repo repository.PerformanceRepository
	now  func() time.Time
}

// NewPerformanceUseCase construye el caso de uso.
func NewPerformanceUseCase(repo repository.PerformanceRepository) *PerformanceUseCase {
	return &PerformanceUseCase{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// ParseMonth interpreta YYYY-MM; vacío = mes en curso.
func (uc *PerformanceUseCase) ParseMonth(s string) (time.Time, error) {
	if s == "" {
		return entity.MonthStart(uc.now()), nil
	}
	t, err := time.ParseInLocation(monthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.Invalid("month", "formato YYYY-MM")
	}
	return t, nil
}

// achievement cash-in sobre meta en porcentaje; sin meta = 0.
func achievement(cashIn, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return cashIn.Div(target).Mul(hundred).Round(2)
}

// List filas del departamento en el mes, ordenadas por cash-in, con totales.
func (uc *PerformanceUseCase) List(ctx context.Context, department, month string) (*dto.PerformanceResponse, error) {
	if department != entity.DepartmentFrontSales && department != entity.DepartmentUpseller {
		return nil, domain.Invalid("department", "departamento desconocido: "+department)
	}
	m, err := uc.ParseMonth(month)
	if err != nil {
		return nil, err
	}
	records, err := uc.repo.ListByMonth(ctx, department, m)
	if err != nil {
		return nil, err
	}

	out := &dto.PerformanceResponse{
		Department: department,
		Month:      m.Format(monthLayout),
		MonthLabel: textnorm.MonthLabel(m),
		Rows:       make([]dto.PerformanceRowDTO, 0, len(records)),
		Totals: dto.PerformanceRowDTO{
			TotalGross:   decimal.Zero,
			TotalCashIn:  decimal.Zero,
			TargetCashIn: decimal.Zero,
		},
	}
	for _, r := range records {
		out.Rows = append(out.Rows, dto.PerformanceRowDTO{
			SellerID:         r.SellerID,
			SellerName:       r.SellerName,
			AccountsAchieved: r.AccountsAchieved,
			TotalGross:       r.TotalGross.Round(2),
			TotalCashIn:      r.TotalCashIn.Round(2),
			TargetAccounts:   r.TargetAccounts,
			TargetCashIn:     r.TargetCashIn.Round(2),
			AchievementPct:   achievement(r.TotalCashIn, r.TargetCashIn),
		})
		t := &out.Totals
		t.AccountsAchieved += r.AccountsAchieved
		t.TotalGross = t.TotalGross.Add(r.TotalGross)
		t.TotalCashIn = t.TotalCashIn.Add(r.TotalCashIn)
		t.TargetAccounts += r.TargetAccounts
		t.TargetCashIn = t.TargetCashIn.Add(r.TargetCashIn)
	}
	out.Totals.AchievementPct = achievement(out.Totals.TotalCashIn, out.Totals.TargetCashIn)
	return out, nil
}
