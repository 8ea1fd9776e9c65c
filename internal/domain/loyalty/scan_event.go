package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/loyalty/backend/internal/domain/shared"
)

// ScanEvent records a customer barcode scan at the register, whether or not
// it was eventually matched to a purchase.
type ScanEvent struct {
	shared.BaseEntity
	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
	BarcodeData string     `gorm:"type:varchar(50);not null"`
	ScannedAt   time.Time  `gorm:"not null;index"`
	IsMatched   bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ScanEvent) TableName() string {
	return "scan_events"
}

// NewScanEvent creates a scan event for a barcode token
func NewScanEvent(barcode string, scannedAt time.Time) (*ScanEvent, error) {
	if barcode == "" {
		return nil, shared.NewDomainError("INVALID_BARCODE", "Barcode cannot be empty")
	}

	return &ScanEvent{
		BaseEntity:  shared.NewBaseEntity(),
		BarcodeData: barcode,
		ScannedAt:   scannedAt,
	}, nil
}

// AttachCustomer links the scan to a known customer
func (s *ScanEvent) AttachCustomer(customerID uuid.UUID) {
	s.CustomerID = &customerID
	s.UpdatedAt = time.Now()
}

// MarkMatched flags the scan as matched to a purchase
func (s *ScanEvent) MarkMatched() {
	s.IsMatched = true
	s.UpdatedAt = time.Now()
}
