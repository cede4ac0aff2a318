package partner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCustomer(t *testing.T) *Customer {
	customer, err := NewCustomer(uuid.New(), "CUST-001", "Acme Advertising", CustomerTypeAgency)
	require.NoError(t, err)
	return customer
}

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid customer", func(t *testing.T) {
		customer, err := NewCustomer(tenantID, "cust-001", "Acme Advertising", CustomerTypeAgency)
		require.NoError(t, err)
		assert.Equal(t, "CUST-001", customer.Code) // codes are upper-cased
		assert.Equal(t, CustomerStatusActive, customer.Status)
		assert.True(t, customer.Balance.IsZero())
		assert.Len(t, customer.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeCustomerCreated, customer.GetDomainEvents()[0].EventType())
	})

	t.Run("invalid inputs", func(t *testing.T) {
		tests := []struct {
			name     string
			code     string
			custName string
			custType CustomerType
		}{
			{"empty code", "", "Acme", CustomerTypeBusiness},
			{"code with spaces", "CUST 001", "Acme", CustomerTypeBusiness},
			{"empty name", "CUST-001", "", CustomerTypeBusiness},
			{"invalid type", "CUST-001", "Acme", CustomerType("vip")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewCustomer(tenantID, tt.code, tt.custName, tt.custType)
				assert.Error(t, err)
			})
		}
	})
}

func TestCustomer_SetContact(t *testing.T) {
	customer := createTestCustomer(t)

	err := customer.SetContact("Nimal Perera", "+94 77 123 4567", "+94771234567", "nimal@acme.lk")
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", customer.WhatsApp)

	assert.Error(t, customer.SetContact("", "not-a-phone", "", ""))
	assert.Error(t, customer.SetContact("", "", "", "not-an-email"))
}

func TestCustomer_CreditTerms(t *testing.T) {
	customer := createTestCustomer(t)

	require.NoError(t, customer.SetCreditTerms(30, decimal.NewFromInt(100000)))
	assert.Equal(t, 30, customer.CreditDays)

	issued := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), customer.DueDateFrom(issued))

	assert.Error(t, customer.SetCreditTerms(-1, decimal.Zero))
	assert.Error(t, customer.SetCreditTerms(400, decimal.Zero))
	assert.Error(t, customer.SetCreditTerms(30, decimal.NewFromInt(-1)))
}

func TestCustomer_Balance(t *testing.T) {
	customer := createTestCustomer(t)

	require.NoError(t, customer.AddBalance(decimal.NewFromInt(5000)))
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(5000)))

	require.NoError(t, customer.DeductBalance(decimal.NewFromInt(2000)))
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(3000)))

	// Cannot pay down more than is owed
	err := customer.DeductBalance(decimal.NewFromInt(9999))
	assert.Error(t, err)

	assert.Error(t, customer.AddBalance(decimal.Zero))
	assert.Error(t, customer.AddBalance(decimal.NewFromInt(-10)))
}

func TestCustomer_HasAvailableCredit(t *testing.T) {
	customer := createTestCustomer(t)

	// Zero limit means unlimited
	assert.True(t, customer.HasAvailableCredit(decimal.NewFromInt(1000000)))

	require.NoError(t, customer.SetCreditTerms(30, decimal.NewFromInt(10000)))
	require.NoError(t, customer.AddBalance(decimal.NewFromInt(8000)))

	assert.True(t, customer.HasAvailableCredit(decimal.NewFromInt(2000)))
	assert.False(t, customer.HasAvailableCredit(decimal.NewFromInt(2001)))
}

func TestCustomer_StatusTransitions(t *testing.T) {
	customer := createTestCustomer(t)

	assert.Error(t, customer.Activate()) // already active

	require.NoError(t, customer.Deactivate())
	assert.False(t, customer.IsActive())
	assert.Error(t, customer.Deactivate())

	require.NoError(t, customer.Activate())
	require.NoError(t, customer.Block())
	assert.True(t, customer.IsBlocked())
	assert.Error(t, customer.Block())

	// Blocked customers can be re-activated after resolution
	require.NoError(t, customer.Activate())
	assert.True(t, customer.IsActive())
}

func TestCustomer_VersionIncrements(t *testing.T) {
	customer := createTestCustomer(t)
	v := customer.GetVersion()

	require.NoError(t, customer.Update("Acme Advertising Ltd"))
	assert.Equal(t, v+1, customer.GetVersion())
}
