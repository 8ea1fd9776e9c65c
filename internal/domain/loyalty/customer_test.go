package loyalty

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer with generated barcode", func(t *testing.T) {
		customer, err := NewCustomer("Maria Lopez", "maria@example.com", "555-0101", "regular")

		require.NoError(t, err)
		assert.Equal(t, "Maria Lopez", customer.Name)
		assert.Equal(t, "maria@example.com", customer.Email)
		assert.True(t, strings.HasPrefix(customer.Barcode, "LOY"))
		assert.Len(t, customer.Barcode, 13)
		assert.Zero(t, customer.TotalPoints)
		assert.True(t, customer.TotalSpent.IsZero())
		assert.Nil(t, customer.LastVisit)
		assert.NotZero(t, customer.JoinedAt)
	})

	t.Run("lowercases email", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "ANA@Example.COM", "", "")

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", customer.Email)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		customer, err := NewCustomer("", "a@b.co", "", "")

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "not-an-email", "", "")

		assert.Error(t, err)
		assert.Nil(t, customer)
	})

	t.Run("fails with invalid phone", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "", "phone#1", "")

		assert.Error(t, err)
		assert.Nil(t, customer)
	})

	t.Run("optional email and phone may be empty", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "", "", "")

		require.NoError(t, err)
		assert.Empty(t, customer.Email)
		assert.Empty(t, customer.Phone)
	})
}

func TestCustomerRecordVisit(t *testing.T) {
	t.Run("accumulates spend and points", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "", "", "")
		require.NoError(t, err)

		require.NoError(t, customer.RecordVisit(decimal.RequireFromString("25.50"), 25))
		require.NoError(t, customer.RecordVisit(decimal.RequireFromString("10.00"), 10))

		assert.Equal(t, 35, customer.TotalPoints)
		assert.True(t, customer.TotalSpent.Equal(decimal.RequireFromString("35.50")))
		assert.NotNil(t, customer.LastVisit)
	})

	t.Run("rejects negative values", func(t *testing.T) {
		customer, err := NewCustomer("Ana", "", "", "")
		require.NoError(t, err)

		assert.Error(t, customer.RecordVisit(decimal.NewFromInt(-1), 0))
		assert.Error(t, customer.RecordVisit(decimal.NewFromInt(1), -5))
	})
}

func TestCustomerUpdate(t *testing.T) {
	customer, err := NewCustomer("Ana", "ana@example.com", "", "")
	require.NoError(t, err)

	t.Run("empty fields are left unchanged", func(t *testing.T) {
		require.NoError(t, customer.Update("", "", "555-0102", ""))

		assert.Equal(t, "Ana", customer.Name)
		assert.Equal(t, "ana@example.com", customer.Email)
		assert.Equal(t, "555-0102", customer.Phone)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		assert.Error(t, customer.Update("", "bad", "", ""))
	})
}
