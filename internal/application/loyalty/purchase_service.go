package loyalty

import (
	"context"

	"github.com/google/uuid"
	domain "github.com/loyalty/backend/internal/domain/loyalty"
)

// PurchaseService exposes recorded purchases and scan history, and records
// purchases entered manually at the register
type PurchaseService struct {
	purchaseRepo domain.PurchaseRepository
	scanRepo     domain.ScanEventRepository
	customerRepo domain.CustomerRepository
	calculator   *domain.PointsCalculator
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	purchaseRepo domain.PurchaseRepository,
	scanRepo domain.ScanEventRepository,
	customerRepo domain.CustomerRepository,
	calculator *domain.PointsCalculator,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		scanRepo:     scanRepo,
		customerRepo: customerRepo,
		calculator:   calculator,
	}
}

// Create records a purchase entered manually for the customer carrying the
// given barcode, awarding points the same way matched receipts do
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest) (*PurchaseResponse, error) {
	customer, err := s.customerRepo.FindByBarcode(ctx, req.Barcode)
	if err != nil {
		return nil, err
	}

	purchase, err := domain.NewPurchase(customer.ID, req.ReceiptNumber, "", req.Amount, req.ItemCount)
	if err != nil {
		return nil, err
	}

	points := s.calculator.Calculate(req.Amount)
	if err := purchase.AwardPoints(points); err != nil {
		return nil, err
	}
	if err := s.purchaseRepo.Save(ctx, purchase); err != nil {
		return nil, err
	}

	if err := customer.RecordVisit(req.Amount, points); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// ListByCustomer retrieves a customer's purchase history, newest first
func (s *PurchaseService) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]PurchaseResponse, error) {
	if limit <= 0 {
		limit = 50
	}

	purchases, err := s.purchaseRepo.FindByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i := range purchases {
		responses[i] = ToPurchaseResponse(&purchases[i])
	}
	return responses, nil
}

// RecentScans retrieves the most recent scan events
func (s *PurchaseService) RecentScans(ctx context.Context, limit int) ([]ScanEventResponse, error) {
	if limit <= 0 {
		limit = 20
	}

	events, err := s.scanRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]ScanEventResponse, len(events))
	for i := range events {
		responses[i] = ToScanEventResponse(&events[i])
	}
	return responses, nil
}
