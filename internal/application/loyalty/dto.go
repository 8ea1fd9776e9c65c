package loyalty

import (
	"time"

	"github.com/google/uuid"
	domain "github.com/loyalty/backend/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest represents a request to enroll a new customer
type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email,max=100"`
	Phone string `json:"phone" binding:"max=20"`
	Notes string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Empty fields are left unchanged.
type UpdateCustomerRequest struct {
	Name  string `json:"name" binding:"omitempty,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email,max=100"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
	Notes string `json:"notes"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Barcode     string          `json:"barcode"`
	TotalPoints int             `json:"total_points"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	JoinedAt    time.Time       `json:"joined_at"`
	LastVisit   *time.Time      `json:"last_visit"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CustomerListFilter represents pagination options for the customer list
type CustomerListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// CreatePurchaseRequest represents a manually entered purchase
type CreatePurchaseRequest struct {
	Barcode       string          `json:"barcode" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	ReceiptNumber string          `json:"receipt_number" binding:"max=50"`
	ItemCount     int             `json:"item_count" binding:"omitempty,min=0"`
}

// PurchaseResponse represents a purchase in API responses
type PurchaseResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    *uuid.UUID      `json:"customer_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	PointsAwarded int             `json:"points_awarded"`
	ItemCount     int             `json:"item_count"`
	PurchaseDate  time.Time       `json:"purchase_date"`
}

// ScanEventResponse represents a scan event in API responses
type ScanEventResponse struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  *uuid.UUID `json:"customer_id"`
	BarcodeData string     `json:"barcode_data"`
	ScannedAt   time.Time  `json:"scanned_at"`
	IsMatched   bool       `json:"is_matched"`
}

// StatsResponse aggregates system figures for the admin surface
type StatsResponse struct {
	TotalCustomers     int64   `json:"total_customers"`
	TotalPurchases     int64   `json:"total_purchases"`
	TotalRevenue       float64 `json:"total_revenue"`
	TotalPointsAwarded int64   `json:"total_points_awarded"`
	AvgPurchaseAmount  float64 `json:"avg_purchase_amount"`
	TotalScans         int64   `json:"total_scans"`
}

// ToCustomerResponse converts a domain customer to an API response
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Barcode:     c.Barcode,
		TotalPoints: c.TotalPoints,
		TotalSpent:  c.TotalSpent,
		JoinedAt:    c.JoinedAt,
		LastVisit:   c.LastVisit,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToPurchaseResponse converts a domain purchase to an API response
func ToPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		ReceiptNumber: p.ReceiptNumber,
		Amount:        p.Amount,
		PointsAwarded: p.PointsAwarded,
		ItemCount:     p.ItemCount,
		PurchaseDate:  p.PurchaseDate,
	}
}

// ToScanEventResponse converts a domain scan event to an API response
func ToScanEventResponse(s *domain.ScanEvent) ScanEventResponse {
	return ScanEventResponse{
		ID:          s.ID,
		CustomerID:  s.CustomerID,
		BarcodeData: s.BarcodeData,
		ScannedAt:   s.ScannedAt,
		IsMatched:   s.IsMatched,
	}
}
