package loyalty

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/loyalty/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer represents an enrolled loyalty member.
// It is the aggregate root for customer-related operations.
type Customer struct {
	shared.BaseEntity
	Name        string          `gorm:"type:varchar(100);not null"`
	Email       string          `gorm:"type:varchar(100);uniqueIndex:idx_customer_email,where:email <> ''"`
	Phone       string          `gorm:"type:varchar(20)"`
	Barcode     string          `gorm:"type:varchar(50);uniqueIndex"`
	TotalPoints int             `gorm:"not null;default:0"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	JoinedAt    time.Time       `gorm:"not null"`
	LastVisit   *time.Time
	Notes       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer with a freshly generated barcode
func NewCustomer(name, email, phone, notes string) (*Customer, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return nil, err
		}
	}

	customer := &Customer{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Email:      strings.ToLower(email),
		Phone:      phone,
		Notes:      notes,
		TotalSpent: decimal.Zero,
		JoinedAt:   time.Now(),
	}
	customer.Barcode = generateBarcode()

	return customer, nil
}

// Update updates the customer's contact details. Empty values leave the
// corresponding field unchanged.
func (c *Customer) Update(name, email, phone, notes string) error {
	if name != "" {
		if err := validateName(name); err != nil {
			return err
		}
		c.Name = name
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
		c.Email = strings.ToLower(email)
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
		c.Phone = phone
	}
	if notes != "" {
		c.Notes = notes
	}
	c.UpdatedAt = time.Now()

	return nil
}

// RecordVisit applies a completed purchase to the customer's running totals
// and stamps the visit time.
func (c *Customer) RecordVisit(amount decimal.Decimal, points int) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amount cannot be negative")
	}
	if points < 0 {
		return shared.NewDomainError("INVALID_POINTS", "Awarded points cannot be negative")
	}

	now := time.Now()
	c.TotalSpent = c.TotalSpent.Add(amount)
	c.TotalPoints += points
	c.LastVisit = &now
	c.UpdatedAt = now

	return nil
}

// generateBarcode builds a LOY-prefixed numeric token from the current time
// and a random suffix. Uniqueness is enforced by the storage layer.
func generateBarcode() string {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	if len(timestamp) > 6 {
		timestamp = timestamp[len(timestamp)-6:]
	}
	return fmt.Sprintf("LOY%s%04d", timestamp, rand.Intn(10000))
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 100 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 20 characters")
	}
	validPhone := regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 100 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 100 characters")
	}
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
