package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/loyalty/backend/internal/domain/loyalty"
	"github.com/loyalty/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPurchaseRepository implements loyalty.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase by its ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*loyalty.Purchase, error) {
	var purchase loyalty.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

// FindByCustomer returns a customer's purchases, newest first
func (r *GormPurchaseRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]loyalty.Purchase, error) {
	var purchases []loyalty.Purchase
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("purchase_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// ExistsByReceiptHash checks whether a purchase with the given receipt
// digest has already been recorded
func (r *GormPurchaseRepository) ExistsByReceiptHash(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&loyalty.Purchase{}).
		Where("receipt_hash = ?", hash).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a purchase
func (r *GormPurchaseRepository) Save(ctx context.Context, purchase *loyalty.Purchase) error {
	return r.db.WithContext(ctx).Save(purchase).Error
}

// Stats aggregates purchase figures across all customers
func (r *GormPurchaseRepository) Stats(ctx context.Context) (loyalty.PurchaseStats, error) {
	var stats loyalty.PurchaseStats
	row := r.db.WithContext(ctx).
		Model(&loyalty.Purchase{}).
		Select("COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(points_awarded), 0), COALESCE(AVG(amount), 0)").
		Row()
	if err := row.Scan(&stats.TotalPurchases, &stats.TotalRevenue, &stats.TotalPointsAwarded, &stats.AvgPurchaseAmount); err != nil {
		return loyalty.PurchaseStats{}, err
	}
	return stats, nil
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ loyalty.PurchaseRepository = (*GormPurchaseRepository)(nil)
