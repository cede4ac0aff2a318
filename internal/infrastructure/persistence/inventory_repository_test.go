package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/printcloud/backend/internal/domain/inventory"
	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&inventory.InventoryItem{}, &inventory.StockMovement{})
	require.NoError(t, err)

	return db
}

func newPersistedItem(t *testing.T, repo *GormItemRepository, tenantID uuid.UUID, sku string) *inventory.InventoryItem {
	t.Helper()

	item, err := inventory.NewInventoryItem(tenantID, sku, "80gsm A4 Paper", inventory.ItemCategoryPaper, "ream")
	require.NoError(t, err)
	item.ClearDomainEvents()

	err = repo.SaveWithMovements(context.Background(), item, nil, nil)
	require.NoError(t, err)

	return item
}

func TestGormItemRepository_SaveWithMovements(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()

	t.Run("first save inserts the item", func(t *testing.T) {
		tenantID := uuid.New()
		item := newPersistedItem(t, repo, tenantID, "PAP-80A4")

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, "PAP-80A4", found.SKU)
		assert.Equal(t, tenantID, found.TenantID)
		assert.True(t, found.Active)
	})

	t.Run("receipt persists quantity, cost and movement ledger", func(t *testing.T) {
		tenantID := uuid.New()
		item := newPersistedItem(t, repo, tenantID, "INK-CYN")

		loaded, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		movement, err := loaded.Receive(decimal.NewFromInt(100), decimal.NewFromFloat(4.20), "BILL-2026-00012")
		require.NoError(t, err)

		err = repo.SaveWithMovements(ctx, loaded, []*inventory.StockMovement{movement}, nil)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, loaded.ID)
		require.NoError(t, err)
		assert.True(t, found.QuantityOnHand.Equal(decimal.NewFromInt(100)))
		assert.True(t, found.UnitCost.Equal(decimal.NewFromFloat(4.20)))

		movementRepo := NewGormMovementRepository(db)
		movements, err := movementRepo.FindByItem(ctx, tenantID, loaded.ID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.MovementTypeReceipt, movements[0].Type)
		assert.Equal(t, "BILL-2026-00012", movements[0].Reference)
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		tenantID := uuid.New()
		item := newPersistedItem(t, repo, tenantID, "PLT-OFF")

		first, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)

		m1, err := first.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5), "BILL-A")
		require.NoError(t, err)
		err = repo.SaveWithMovements(ctx, first, []*inventory.StockMovement{m1}, nil)
		require.NoError(t, err)

		m2, err := second.Receive(decimal.NewFromInt(20), decimal.NewFromInt(5), "BILL-B")
		require.NoError(t, err)
		err = repo.SaveWithMovements(ctx, second, []*inventory.StockMovement{m2}, nil)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONCURRENT_MODIFICATION", domainErr.Code)
	})
}

func TestGormItemRepository_Finders(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	item := newPersistedItem(t, repo, tenantID, "PAP-130GL")

	t.Run("FindBySKU uppercases the lookup", func(t *testing.T) {
		found, err := repo.FindBySKU(ctx, tenantID, "  pap-130gl ")
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
	})

	t.Run("FindByIDForTenant enforces tenant isolation", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), item.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		found, err := repo.FindByIDForTenant(ctx, tenantID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
	})

	t.Run("ExistsBySKU", func(t *testing.T) {
		exists, err := repo.ExistsBySKU(ctx, tenantID, "pap-130gl")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySKU(ctx, tenantID, "PAP-999")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FindByCategory", func(t *testing.T) {
		inkItem, err := inventory.NewInventoryItem(tenantID, "INK-MAG", "Magenta Ink", inventory.ItemCategoryInk, "kg")
		require.NoError(t, err)
		inkItem.ClearDomainEvents()
		require.NoError(t, repo.SaveWithMovements(ctx, inkItem, nil, nil))

		items, err := repo.FindByCategory(ctx, tenantID, inventory.ItemCategoryInk, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "INK-MAG", items[0].SKU)
	})
}

func TestGormItemRepository_FindLowStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormItemRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	low, err := inventory.NewInventoryItem(tenantID, "PAP-LOW", "Low Stock Paper", inventory.ItemCategoryPaper, "ream")
	require.NoError(t, err)
	require.NoError(t, low.SetReorderLevel(decimal.NewFromInt(25)))
	low.ClearDomainEvents()
	require.NoError(t, repo.SaveWithMovements(ctx, low, nil, nil))

	healthy, err := inventory.NewInventoryItem(tenantID, "PAP-OK", "Well Stocked Paper", inventory.ItemCategoryPaper, "ream")
	require.NoError(t, err)
	require.NoError(t, healthy.SetReorderLevel(decimal.NewFromInt(5)))
	healthy.ClearDomainEvents()
	require.NoError(t, repo.SaveWithMovements(ctx, healthy, nil, nil))

	loaded, err := repo.FindByID(ctx, healthy.ID)
	require.NoError(t, err)
	movement, err := loaded.Receive(decimal.NewFromInt(200), decimal.NewFromInt(4), "BILL-2026-00030")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovements(ctx, loaded, []*inventory.StockMovement{movement}, nil))

	items, err := repo.FindLowStock(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "PAP-LOW", items[0].SKU)
}

func TestGormMovementRepository(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewGormItemRepository(db)
	movementRepo := NewGormMovementRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	item := newPersistedItem(t, repo, tenantID, "PAP-MOVE")

	loaded, err := repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	receipt, err := loaded.Receive(decimal.NewFromInt(50), decimal.NewFromInt(4), "BILL-2026-00040")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovements(ctx, loaded, []*inventory.StockMovement{receipt}, nil))

	loaded, err = repo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	issue, err := loaded.Issue(decimal.NewFromInt(30), "SO-2026-00021")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithMovements(ctx, loaded, []*inventory.StockMovement{issue}, nil))

	t.Run("FindByReference returns the ledger rows of a document", func(t *testing.T) {
		movements, err := movementRepo.FindByReference(ctx, tenantID, "SO-2026-00021")
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.MovementTypeIssue, movements[0].Type)
		assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(-30)))
	})

	t.Run("CountByItem", func(t *testing.T) {
		count, err := movementRepo.CountByItem(ctx, tenantID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("FindByItem paginates", func(t *testing.T) {
		movements, err := movementRepo.FindByItem(ctx, tenantID, item.ID, shared.Filter{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Len(t, movements, 1)
	})
}
