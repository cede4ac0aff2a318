package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/partner"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCustomerRepository creates a GormCustomerRepository with a mocked SQL connection
func newMockCustomerRepository(t *testing.T) (*GormCustomerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormCustomerRepository(gormDB), mock, mockDB
}

func customerRows(customerID, tenantID uuid.UUID, code, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "status", "balance", "credit_limit", "version"}).
		AddRow(customerID, tenantID, code, name, "business", "active", decimal.Zero, decimal.Zero, 1)
}

func TestNewGormCustomerRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	t.Run("finds existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnRows(customerRows(customerID, tenantID, "CUST-001", "Riverside Hotel"))

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, customerID, customer.ID)
		assert.Equal(t, "CUST-001", customer.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(customerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByID(context.Background(), customerID)

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds customer within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, customerID, 1).
			WillReturnRows(customerRows(customerID, tenantID, "CUST-001", "Riverside Hotel"))

		customer, err := repo.FindByIDForTenant(context.Background(), tenantID, customerID)

		assert.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, tenantID, customer.TenantID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for wrong tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		customer, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, customer)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindByCode(t *testing.T) {
	t.Run("uppercases code before lookup", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "CUST-001", 1).
			WillReturnRows(customerRows(customerID, tenantID, "CUST-001", "Riverside Hotel"))

		customer, err := repo.FindByCode(context.Background(), tenantID, "  cust-001 ")

		assert.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, "CUST-001", customer.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_ExistsByCode(t *testing.T) {
	t.Run("returns true when code is taken", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE tenant_id = \$1 AND code = \$2`).
			WithArgs(tenantID, "CUST-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByCode(context.Background(), tenantID, "cust-001")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when code is free", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE tenant_id = \$1 AND code = \$2`).
			WithArgs(tenantID, "CUST-999").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByCode(context.Background(), tenantID, "CUST-999")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_CountByStatus(t *testing.T) {
	t.Run("groups counts by status", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"status", "count"}).
			AddRow("active", 12).
			AddRow("blocked", 2)

		mock.ExpectQuery(`SELECT status, COUNT\(\*\) as count FROM "customers" WHERE tenant_id = \$1 GROUP BY .*`).
			WithArgs(tenantID).
			WillReturnRows(rows)

		counts, err := repo.CountByStatus(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, int64(12), counts[partner.CustomerStatusActive])
		assert.Equal(t, int64(2), counts[partner.CustomerStatusBlocked])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_FindAllForTenant(t *testing.T) {
	t.Run("applies pagination and default ordering", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := customerRows(uuid.New(), tenantID, "CUST-001", "Riverside Hotel").
			AddRow(uuid.New(), tenantID, "CUST-002", "Metro Advertising", "agency", "active", decimal.Zero, decimal.Zero, 1)

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(tenantID, 20).
			WillReturnRows(rows)

		customers, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{Page: 1, PageSize: 20})

		assert.NoError(t, err)
		assert.Len(t, customers, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters by status", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
			WithArgs(tenantID, "blocked").
			WillReturnRows(customerRows(uuid.New(), tenantID, "CUST-007", "Slow Payer Ltd"))

		customers, err := repo.FindAllForTenant(context.Background(), tenantID, shared.Filter{
			Filters: map[string]interface{}{"status": "blocked"},
		})

		assert.NoError(t, err)
		assert.Len(t, customers, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Save(t *testing.T) {
	t.Run("saves customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customer, err := partner.NewCustomer(tenantID, "CUST-001", "Riverside Hotel", partner.CustomerTypeBusiness)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "customers" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), customer)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Delete(t *testing.T) {
	t.Run("deletes existing customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), customerID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent customer", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		customerID := uuid.New()

		mock.ExpectExec(`DELETE FROM "customers" WHERE id = \$1`).
			WithArgs(customerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), customerID)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_Count(t *testing.T) {
	t.Run("counts customers matching filter", func(t *testing.T) {
		repo, mock, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "customers"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))

		count, err := repo.Count(context.Background(), shared.Filter{})

		assert.NoError(t, err)
		assert.Equal(t, int64(10), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCustomerRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements CustomerRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockCustomerRepository(t)
		defer mockDB.Close()

		var _ partner.CustomerRepository = repo
	})
}
