package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem represents a single purchased item extracted from a receipt
type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Line  string          `json:"line"` // The original line the item was extracted from
}

// Record represents the structured result of extracting a raw receipt text.
// It is immutable once produced by Extract.
type Record struct {
	RawText     string          `json:"raw_text"`
	TotalAmount decimal.Decimal `json:"total"`
	ReceiptID   string          `json:"receipt_id,omitempty"`
	Date        string          `json:"date,omitempty"`
	Time        string          `json:"time,omitempty"`
	Items       []LineItem      `json:"items"`
	ItemCount   int             `json:"items_count"`
	ExtractedAt time.Time       `json:"extracted_at"`
	ParseError  string          `json:"error,omitempty"`
}

// validityKeywords are the indicators checked by IsValid. At least two must
// appear for a text to be considered a receipt.
var validityKeywords = []string{
	"total", "receipt", "thank you", "transaction",
	"subtotal", "tax", "change", "payment",
}

// IsValid reports whether the record's raw text is confidently a receipt.
// This gate, not extraction success, decides whether a record may participate
// in correlation: the text must be at least 20 characters, contain at least
// two receipt indicators, and carry a positive extracted total.
func (r *Record) IsValid() bool {
	if len(strings.TrimSpace(r.RawText)) < 20 {
		return false
	}

	textLower := strings.ToLower(r.RawText)
	found := 0
	for _, keyword := range validityKeywords {
		if strings.Contains(textLower, keyword) {
			found++
		}
	}

	return found >= 2 && r.TotalAmount.GreaterThan(decimal.Zero)
}
