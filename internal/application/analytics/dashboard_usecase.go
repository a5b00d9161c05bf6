// Package analytics contiene los casos de uso de reportes comerciales: el resumen
// del dashboard y las tablas de desempeño mensual por vendedor.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/CRM-api/internal/application/dto"
	"github.com/jhoicas/CRM-api/internal/domain/repository"
	"github.com/jhoicas/CRM-api/pkg/textnorm"
)

const dashboardTopSellers = 5 // vendedores en el widget del dashboard

// DashboardUseCase genera el resumen comercial del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: func() time.Time { return time.Now().UTC() }}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro llamadas en paralelo:
//  1. SalesTotals(mes)        → bruto, cobrado, saldo, conteos
//  2. LeadsByStatus           → embudo de leads
//  3. ProjectsByStatus        → proyectos por estado
//  4. TopSellers(mes, top 5)  → ranking
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	type totalsResult struct {
		totals repository.SalesTotals
		err    error
	}
	type countsResult struct {
		counts map[string]int
		err    error
	}
	type sellersResult struct {
		sellers []repository.SellerRanking
		err     error
	}

	totalsCh := make(chan totalsResult, 1)
	leadsCh := make(chan countsResult, 1)
	projectsCh := make(chan countsResult, 1)
	sellersCh := make(chan sellersResult, 1)

	go func() {
		t, err := uc.analyticsRepo.SalesTotals(ctx, monthStart, monthEnd)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.analyticsRepo.LeadsByStatus(ctx)
		leadsCh <- countsResult{c, err}
	}()
	go func() {
		c, err := uc.analyticsRepo.ProjectsByStatus(ctx)
		projectsCh <- countsResult{c, err}
	}()
	go func() {
		s, err := uc.analyticsRepo.TopSellers(ctx, monthStart, monthEnd, dashboardTopSellers)
		sellersCh <- sellersResult{s, err}
	}()

	totals := <-totalsCh
	leads := <-leadsCh
	projects := <-projectsCh
	sellers := <-sellersCh

	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales del mes: %w", totals.err)
	}
	if leads.err != nil {
		return nil, fmt.Errorf("dashboard: leads por estado: %w", leads.err)
	}
	if projects.err != nil {
		return nil, fmt.Errorf("dashboard: proyectos por estado: %w", projects.err)
	}
	if sellers.err != nil {
		return nil, fmt.Errorf("dashboard: top vendedores: %w", sellers.err)
	}

	top := make([]dto.SellerRankingDTO, 0, len(sellers.sellers))
	for _, s := range sellers.sellers {
		top = append(top, dto.SellerRankingDTO{
			SellerID:   s.SellerID,
			SellerName: s.SellerName,
			Accounts:   s.Accounts,
			Gross:      s.Gross.Round(2),
			CashIn:     s.CashIn.Round(2),
		})
	}

	return &dto.DashboardSummaryDTO{
		MonthGross:       totals.totals.Gross.Round(2),
		MonthCashIn:      totals.totals.CashIn.Round(2),
		MonthRemaining:   totals.totals.Remaining.Round(2),
		Dispositions:     totals.totals.Dispositions,
		Upsells:          totals.totals.Upsells,
		LeadsByStatus:    nonNil(leads.counts),
		ProjectsByStatus: nonNil(projects.counts),
		TopSellers:       top,
		DateLabel:        textnorm.MonthLabel(now),
	}, nil
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
