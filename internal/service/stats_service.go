package service

import (
	"context"
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/dto"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
)

type StatsService interface {
	Dashboard(ctx context.Context, filter dto.StatsFilter) (*dto.DashboardStatsResponse, error)
	RevenueByDay(ctx context.Context, days int) ([]dto.RevenueByDay, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
	RecentActivity(ctx context.Context, limit int) ([]dto.ActivityItem, error)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) Dashboard(ctx context.Context, filter dto.StatsFilter) (*dto.DashboardStatsResponse, error) {
	var start, end *time.Time
	if filter.StartDate != "" && filter.EndDate != "" {
		from, err := time.Parse("2006-01-02", filter.StartDate)
		if err != nil {
			return nil, err
		}
		// End bound is inclusive of the whole day.
		to, err := time.Parse("2006-01-02", filter.EndDate)
		if err != nil {
			return nil, err
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		start, end = &from, &to
	}

	orders, err := s.repo.OrderStats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	refunds, err := s.repo.RefundStats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	chargebacks, err := s.repo.ChargebackStats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	recurring, err := s.repo.RecurringStats(ctx, start, end)
	if err != nil {
		return nil, err
	}

	totalRevenue := orders.TotalRevenue.Add(recurring.RecurringRevenue)
	totalDeductions := refunds.RefundAmount.Add(chargebacks.ChargebackAmount)

	return &dto.DashboardStatsResponse{
		Orders:      orders,
		Refunds:     refunds,
		Chargebacks: chargebacks,
		Recurring:   recurring,
		Summary: dto.StatsSummary{
			TotalRevenue:    totalRevenue,
			TotalDeductions: totalDeductions,
			NetRevenue:      totalRevenue.Sub(totalDeductions),
		},
	}, nil
}

func (s *statsService) RevenueByDay(ctx context.Context, days int) ([]dto.RevenueByDay, error) {
	if days <= 0 {
		days = 30
	}
	return s.repo.RevenueByDay(ctx, days)
}

func (s *statsService) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopProducts(ctx, limit)
}

func (s *statsService) RecentActivity(ctx context.Context, limit int) ([]dto.ActivityItem, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.RecentActivity(ctx, limit)
}
