package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByBarcode(ctx context.Context, barcode string) (*Customer, error)
	FindAll(ctx context.Context, limit, offset int) ([]Customer, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// PurchaseRepository defines persistence operations for purchases
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]Purchase, error)
	ExistsByReceiptHash(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, purchase *Purchase) error
	Stats(ctx context.Context) (PurchaseStats, error)
}

// ScanEventRepository defines persistence operations for scan events
type ScanEventRepository interface {
	FindRecent(ctx context.Context, limit int) ([]ScanEvent, error)
	Save(ctx context.Context, event *ScanEvent) error
	Count(ctx context.Context) (int64, error)
}

// PurchaseStats aggregates purchase figures for the admin surface
type PurchaseStats struct {
	TotalPurchases     int64
	TotalRevenue       float64
	TotalPointsAwarded int64
	AvgPurchaseAmount  float64
}
