package service

import (
	"context"

	"examportal/internal/repository"
)

// DashboardService aggregates the admin dashboard view.
type DashboardService struct {
	dashboardRepo *repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo *repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// Dashboard is the admin landing page payload.
type Dashboard struct {
	Counts        *repository.DashboardCounts `json:"counts"`
	RecentResults []repository.RecentResult   `json:"recent_results"`
}

// Get assembles counters and the recent results feed.
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	counts, err := s.dashboardRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.dashboardRepo.RecentResults(ctx, 10)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []repository.RecentResult{}
	}
	return &Dashboard{Counts: counts, RecentResults: recent}, nil
}
