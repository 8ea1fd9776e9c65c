package loyalty

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/loyalty/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Purchase represents a completed transaction credited to a customer
type Purchase struct {
	shared.BaseEntity
	CustomerID    *uuid.UUID      `gorm:"type:uuid;index"`
	ReceiptNumber string          `gorm:"type:varchar(50)"`
	ReceiptText   string          `gorm:"type:text"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PointsAwarded int             `gorm:"not null;default:0"`
	ItemCount     int             `gorm:"not null;default:0"`
	PurchaseDate  time.Time       `gorm:"not null;index"`
	ReceiptHash   string          `gorm:"type:varchar(64);index"` // sha256 of raw text, for duplicate detection
}

// TableName returns the table name for GORM
func (Purchase) TableName() string {
	return "purchases"
}

// NewPurchase creates a purchase record for a customer
func NewPurchase(customerID uuid.UUID, receiptNumber, receiptText string, amount decimal.Decimal, itemCount int) (*Purchase, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase amount cannot be negative")
	}
	if itemCount < 0 {
		return nil, shared.NewDomainError("INVALID_ITEM_COUNT", "Item count cannot be negative")
	}

	purchase := &Purchase{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    &customerID,
		ReceiptNumber: receiptNumber,
		ReceiptText:   receiptText,
		Amount:        amount,
		ItemCount:     itemCount,
		PurchaseDate:  time.Now(),
	}
	if receiptText != "" {
		purchase.ReceiptHash = HashReceiptText(receiptText)
	}

	return purchase, nil
}

// AwardPoints stamps the points computed for this purchase
func (p *Purchase) AwardPoints(points int) error {
	if points < 0 {
		return shared.NewDomainError("INVALID_POINTS", "Awarded points cannot be negative")
	}
	p.PointsAwarded = points
	p.UpdatedAt = time.Now()
	return nil
}

// HashReceiptText returns the sha256 hex digest of raw receipt text
func HashReceiptText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
