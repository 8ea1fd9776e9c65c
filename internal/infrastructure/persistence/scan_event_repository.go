package persistence

import (
	"context"

	"github.com/loyalty/backend/internal/domain/loyalty"
	"gorm.io/gorm"
)

// GormScanEventRepository implements loyalty.ScanEventRepository using GORM
type GormScanEventRepository struct {
	db *gorm.DB
}

// NewGormScanEventRepository creates a new GormScanEventRepository
func NewGormScanEventRepository(db *gorm.DB) *GormScanEventRepository {
	return &GormScanEventRepository{db: db}
}

// FindRecent returns the most recent scan events
func (r *GormScanEventRepository) FindRecent(ctx context.Context, limit int) ([]loyalty.ScanEvent, error) {
	var events []loyalty.ScanEvent
	query := r.db.WithContext(ctx).Order("scanned_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Save creates or updates a scan event
func (r *GormScanEventRepository) Save(ctx context.Context, event *loyalty.ScanEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Count counts all recorded scan events
func (r *GormScanEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&loyalty.ScanEvent{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormScanEventRepository implements ScanEventRepository
var _ loyalty.ScanEventRepository = (*GormScanEventRepository)(nil)
