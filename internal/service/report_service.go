package service

import (
	"context"
	"time"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/repository"
)

type ReportService interface {
	GetInventoryStats(ctx context.Context) (*repository.InventoryStats, error)
	GetDailyFlow(ctx context.Context, startDate, endDate time.Time) ([]repository.DailyFlowData, error)
}

type reportService struct {
	movementRepo repository.MovementRepository
}

func NewReportService(mRepo repository.MovementRepository) ReportService {
	return &reportService{movementRepo: mRepo}
}

func (s *reportService) GetInventoryStats(ctx context.Context) (*repository.InventoryStats, error) {
	stats, err := s.movementRepo.GetInventoryStats(ctx)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return stats, nil
}

func (s *reportService) GetDailyFlow(ctx context.Context, startDate, endDate time.Time) ([]repository.DailyFlowData, error) {
	flow, err := s.movementRepo.GetDailyFlow(ctx, startDate, endDate)
	if err != nil {
		return nil, apperr.Upstream(err)
	}
	return flow, nil
}
