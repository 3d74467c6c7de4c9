package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-jewelry-pos/internal/apperr"
	"go-jewelry-pos/internal/model"
	"go-jewelry-pos/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubMovementRepo struct {
	stats *repository.InventoryStats
	flow  []repository.DailyFlowData
	err   error
}

func (s *stubMovementRepo) Create(_ *gorm.DB, _ *model.StockMovement) error { return nil }

func (s *stubMovementRepo) ListByProduct(_ context.Context, _ uint, _ int) ([]model.StockMovement, error) {
	return nil, nil
}

func (s *stubMovementRepo) GetDailyFlow(_ context.Context, _, _ time.Time) ([]repository.DailyFlowData, error) {
	return s.flow, s.err
}

func (s *stubMovementRepo) GetInventoryStats(_ context.Context) (*repository.InventoryStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stats, nil
}

func TestGetInventoryStats_FractionalValuation(t *testing.T) {
	svc := &reportService{movementRepo: &stubMovementRepo{
		stats: &repository.InventoryStats{
			TotalProducts:  12,
			LowStockCount:  2,
			TotalValuation: decimal.RequireFromString("1234.56"),
		},
	}}

	stats, err := svc.GetInventoryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalProducts)
	assert.True(t, stats.TotalValuation.Equal(decimal.RequireFromString("1234.56")),
		"valuation keeps its cents")
}

func TestGetInventoryStats_UpstreamError(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := &reportService{movementRepo: &stubMovementRepo{err: storeErr}}

	_, err := svc.GetInventoryStats(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetDailyFlow_UpstreamError(t *testing.T) {
	svc := &reportService{movementRepo: &stubMovementRepo{err: errors.New("timeout")}}

	_, err := svc.GetDailyFlow(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
