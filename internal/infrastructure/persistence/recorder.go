package persistence

import (
	"context"

	"github.com/loyalty/backend/internal/application/session"
	"github.com/loyalty/backend/internal/domain/loyalty"
	"github.com/loyalty/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PurchaseRecorder persists a matched scan/receipt pair: it credits the
// customer, stores the purchase and logs the scan event, all in one
// transaction. It implements session.Recorder.
type PurchaseRecorder struct {
	db         *Database
	calculator *loyalty.PointsCalculator
	log        *zap.Logger
}

// NewPurchaseRecorder creates a PurchaseRecorder
func NewPurchaseRecorder(db *Database, calculator *loyalty.PointsCalculator, log *zap.Logger) *PurchaseRecorder {
	return &PurchaseRecorder{
		db:         db,
		calculator: calculator,
		log:        log.Named("recorder"),
	}
}

// OnCorrelated records the correlated purchase and returns the points awarded.
// A receipt whose text digest was already recorded yields ErrDuplicateMatch;
// an unknown barcode yields ErrNotFound. Nothing is written in either case.
func (r *PurchaseRecorder) OnCorrelated(ctx context.Context, result session.CorrelationResult) (int, error) {
	var points int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		customers := NewGormCustomerRepository(tx)
		purchases := NewGormPurchaseRepository(tx)
		scans := NewGormScanEventRepository(tx)

		customer, err := customers.FindByBarcode(ctx, result.Scan.IdentifierToken)
		if err != nil {
			return err
		}

		hash := loyalty.HashReceiptText(result.Receipt.RawText)
		duplicate, err := purchases.ExistsByReceiptHash(ctx, hash)
		if err != nil {
			return err
		}
		if duplicate {
			return shared.ErrDuplicateMatch
		}

		purchase, err := loyalty.NewPurchase(
			customer.ID,
			result.Receipt.ReceiptID,
			result.Receipt.RawText,
			result.Receipt.TotalAmount,
			result.Receipt.ItemCount,
		)
		if err != nil {
			return err
		}

		points = r.calculator.Calculate(result.Receipt.TotalAmount)
		if err := purchase.AwardPoints(points); err != nil {
			return err
		}
		if err := purchases.Save(ctx, purchase); err != nil {
			return err
		}

		if err := customer.RecordVisit(result.Receipt.TotalAmount, points); err != nil {
			return err
		}
		if err := customers.Save(ctx, customer); err != nil {
			return err
		}

		scan, err := loyalty.NewScanEvent(result.Scan.IdentifierToken, result.Scan.ObservedAt)
		if err != nil {
			return err
		}
		scan.AttachCustomer(customer.ID)
		scan.MarkMatched()
		return scans.Save(ctx, scan)
	})
	if err != nil {
		return 0, err
	}

	r.log.Info("purchase recorded",
		zap.String("barcode", result.Scan.IdentifierToken),
		zap.String("receipt", result.Receipt.ReceiptID),
		zap.String("amount", result.Receipt.TotalAmount.String()),
		zap.Int("points", points),
	)
	return points, nil
}

// Ensure PurchaseRecorder implements session.Recorder
var _ session.Recorder = (*PurchaseRecorder)(nil)
