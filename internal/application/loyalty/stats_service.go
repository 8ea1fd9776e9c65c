package loyalty

import (
	"context"

	domain "github.com/loyalty/backend/internal/domain/loyalty"
)

// StatsService aggregates system-wide figures for the admin surface
type StatsService struct {
	customerRepo domain.CustomerRepository
	purchaseRepo domain.PurchaseRepository
	scanRepo     domain.ScanEventRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(customerRepo domain.CustomerRepository, purchaseRepo domain.PurchaseRepository, scanRepo domain.ScanEventRepository) *StatsService {
	return &StatsService{
		customerRepo: customerRepo,
		purchaseRepo: purchaseRepo,
		scanRepo:     scanRepo,
	}
}

// Overview returns totals across customers, purchases and scans
func (s *StatsService) Overview(ctx context.Context) (*StatsResponse, error) {
	customers, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	purchaseStats, err := s.purchaseRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	scans, err := s.scanRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalCustomers:     customers,
		TotalPurchases:     purchaseStats.TotalPurchases,
		TotalRevenue:       purchaseStats.TotalRevenue,
		TotalPointsAwarded: purchaseStats.TotalPointsAwarded,
		AvgPurchaseAmount:  purchaseStats.AvgPurchaseAmount,
		TotalScans:         scans,
	}, nil
}
