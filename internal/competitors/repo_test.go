package competitors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
)

// openTestDB builds an in-memory sqlite database with hand-written DDL.
// The production schema lives in goose migrations; sqlite only needs
// shapes compatible with the queries under test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same :memory: db
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec(`CREATE TABLE competitor_suggestions (
		id text PRIMARY KEY,
		shop_id text NOT NULL,
		product_id text NOT NULL,
		suggested_url text NOT NULL,
		price numeric NOT NULL,
		currency text NOT NULL DEFAULT 'USD',
		source text NOT NULL,
		status text NOT NULL DEFAULT 'new',
		created_at datetime NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at datetime NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (product_id, suggested_url)
	)`).Error)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func newSuggestionRow(shopID, productID uuid.UUID, url, price string) *models.CompetitorSuggestion {
	return &models.CompetitorSuggestion{
		ID:           uuid.New(),
		ShopID:       shopID,
		ProductID:    productID,
		SuggestedURL: url,
		Price:        decimal.RequireFromString(price),
		Currency:     "USD",
		Source:       enums.SuggestionSourceCrawler,
		Status:       enums.SuggestionStatusNew,
	}
}

func TestRepositoryUpsertReportsCreatedOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopID := uuid.New()
	productID := uuid.New()
	url := "https://rival.example/widget"

	first := newSuggestionRow(shopID, productID, url, "18.00")
	created, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	require.True(t, created, "the first write for a pair must report created")

	// a replay carries its own id; only the insert decides created
	replay := newSuggestionRow(shopID, productID, url, "17.50")
	created, err = repo.Upsert(ctx, replay)
	require.NoError(t, err)
	require.False(t, created, "a conflicting write must never report created")

	require.Equal(t, first.ID, replay.ID, "the caller must see the canonical row")
	require.True(t, replay.Price.Equal(decimal.RequireFromString("17.50")))

	var total int64
	require.NoError(t, db.Model(&models.CompetitorSuggestion{}).Count(&total).Error)
	require.EqualValues(t, 1, total)
}

func TestRepositoryUpsertRefreshesPriceAndSource(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopID := uuid.New()
	productID := uuid.New()
	url := "https://rival.example/gadget"

	original := newSuggestionRow(shopID, productID, url, "30.00")
	_, err := repo.Upsert(ctx, original)
	require.NoError(t, err)

	update := newSuggestionRow(shopID, productID, url, "27.99")
	update.Source = enums.SuggestionSourceManual
	created, err := repo.Upsert(ctx, update)
	require.NoError(t, err)
	require.False(t, created)

	var reloaded models.CompetitorSuggestion
	require.NoError(t, db.First(&reloaded, "id = ?", original.ID).Error)
	require.True(t, reloaded.Price.Equal(decimal.RequireFromString("27.99")))
	require.Equal(t, enums.SuggestionSourceManual, reloaded.Source)
	require.Equal(t, enums.SuggestionStatusNew, reloaded.Status, "a refresh must not reset review state")
}

func TestRepositoryUpsertSameURLDifferentProducts(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopID := uuid.New()
	url := "https://rival.example/listing"

	created, err := repo.Upsert(ctx, newSuggestionRow(shopID, uuid.New(), url, "10.00"))
	require.NoError(t, err)
	require.True(t, created)

	created, err = repo.Upsert(ctx, newSuggestionRow(shopID, uuid.New(), url, "11.00"))
	require.NoError(t, err)
	require.True(t, created, "uniqueness is per product and url pair")

	var total int64
	require.NoError(t, db.Model(&models.CompetitorSuggestion{}).Count(&total).Error)
	require.EqualValues(t, 2, total)
}

func TestRepositoryUpdateStatusScopedToShop(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	shopID := uuid.New()
	now := time.Now().UTC()

	row := newSuggestionRow(shopID, uuid.New(), "https://rival.example/a", "5.00")
	_, err := repo.Upsert(ctx, row)
	require.NoError(t, err)

	affected, err := repo.UpdateStatus(ctx, uuid.New(), row.ID, enums.SuggestionStatusApproved, now)
	require.NoError(t, err)
	require.Zero(t, affected, "another shop must not review the row")

	affected, err = repo.UpdateStatus(ctx, shopID, row.ID, enums.SuggestionStatusApproved, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)
}
