package trading

import (
	"context"
	"testing"
	"time"

	"aurum-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTradingTest(t *testing.T) (*Service, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.WalletTransaction{}, &domain.GoldHolding{}))

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{
		UserID:   userID,
		Balance:  decimal.NewFromInt(1000),
		Currency: "USD",
	}).Error)
	return &Service{DB: db}, db, userID
}

func TestBuyGold_DebitsWalletAndLocksHolding(t *testing.T) {
	svc, db, userID := setupTradingTest(t)

	before := time.Now()
	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromFloat(2.5), decimal.NewFromInt(80))
	require.NoError(t, err)

	assert.Equal(t, domain.HoldingStatusLocked, holding.Status)
	assert.True(t, holding.Grams.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, holding.BuyPrice.Equal(decimal.NewFromInt(80)))

	// 2.5 g x 80/g = 200 off the wallet
	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(800)), "got %s", w.Balance)

	var ledger domain.WalletTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, domain.TxTypeGoldBuy).First(&ledger).Error)
	assert.True(t, ledger.Amount.Equal(decimal.NewFromInt(-200)))
	require.NotNil(t, ledger.ReferenceID)
	assert.Equal(t, holding.HoldingID, *ledger.ReferenceID)

	// Default 30-day lock
	lockLow := before.Add(30 * 24 * time.Hour)
	lockHigh := time.Now().Add(30*24*time.Hour + time.Minute)
	assert.True(t, holding.MaturityDate.After(lockLow.Add(-time.Minute)), "maturity %s too early", holding.MaturityDate)
	assert.True(t, holding.MaturityDate.Before(lockHigh), "maturity %s too late", holding.MaturityDate)
}

func TestBuyGold_InsufficientBalance(t *testing.T) {
	svc, db, userID := setupTradingTest(t)

	_, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(20), decimal.NewFromInt(80))
	require.EqualError(t, err, "Insufficient wallet balance to buy gold")

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(1000)))

	var holdings int64
	require.NoError(t, db.Model(&domain.GoldHolding{}).Count(&holdings).Error)
	assert.EqualValues(t, 0, holdings)
}

func TestBuyGold_RejectsNonPositiveInputs(t *testing.T) {
	svc, _, userID := setupTradingTest(t)

	_, err := svc.BuyGold(context.Background(), userID, decimal.Zero, decimal.NewFromInt(80))
	require.EqualError(t, err, "Grams must be a positive number")

	_, err = svc.BuyGold(context.Background(), userID, decimal.NewFromInt(1), decimal.Zero)
	require.EqualError(t, err, "Price must be a positive number")
}

func TestSellGold_LockedHoldingIsNotSellable(t *testing.T) {
	svc, _, userID := setupTradingTest(t)

	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(1), decimal.NewFromInt(80))
	require.NoError(t, err)

	_, err = svc.SellGold(context.Background(), userID, holding.HoldingID, decimal.NewFromInt(90))
	require.EqualError(t, err, "Holding is still locked")
}

func TestSellGold_MatureHoldingCreditsProceeds(t *testing.T) {
	svc, db, userID := setupTradingTest(t)

	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(2), decimal.NewFromInt(80))
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.GoldHolding{}).
		Where("holding_id = ?", holding.HoldingID).
		Update("status", domain.HoldingStatusMature).Error)

	result, err := svc.SellGold(context.Background(), userID, holding.HoldingID, decimal.NewFromInt(95))
	require.NoError(t, err)

	proceeds := result["proceeds"].(decimal.Decimal)
	assert.True(t, proceeds.Equal(decimal.NewFromInt(190)))
	balance := result["balance"].(decimal.Decimal)
	assert.True(t, balance.Equal(decimal.NewFromInt(1030)), "1000 - 160 buy + 190 sale, got %s", balance)

	var got domain.GoldHolding
	require.NoError(t, db.Where("holding_id = ?", holding.HoldingID).First(&got).Error)
	assert.Equal(t, domain.HoldingStatusSold, got.Status)

	var ledger domain.WalletTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, domain.TxTypeGoldSell).First(&ledger).Error)
	assert.True(t, ledger.Amount.Equal(decimal.NewFromInt(190)))
}

func TestSellGold_AlreadySoldHolding(t *testing.T) {
	svc, db, userID := setupTradingTest(t)

	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(1), decimal.NewFromInt(80))
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.GoldHolding{}).
		Where("holding_id = ?", holding.HoldingID).
		Update("status", domain.HoldingStatusSold).Error)

	_, err = svc.SellGold(context.Background(), userID, holding.HoldingID, decimal.NewFromInt(90))
	require.EqualError(t, err, "Holding is not available to sell")
}

func TestSellGold_OtherUsersHolding(t *testing.T) {
	svc, _, userID := setupTradingTest(t)

	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(1), decimal.NewFromInt(80))
	require.NoError(t, err)

	_, err = svc.SellGold(context.Background(), uuid.New(), holding.HoldingID, decimal.NewFromInt(90))
	require.EqualError(t, err, "Unauthorized access to holding")
}

func TestSellGold_UnknownHolding(t *testing.T) {
	svc, _, userID := setupTradingTest(t)

	_, err := svc.SellGold(context.Background(), userID, uuid.New(), decimal.NewFromInt(90))
	require.EqualError(t, err, "Holding not found")
}

func TestBuyGold_CustomLockPeriod(t *testing.T) {
	svc, _, userID := setupTradingTest(t)
	svc.LockPeriodDays = 7

	holding, err := svc.BuyGold(context.Background(), userID, decimal.NewFromInt(1), decimal.NewFromInt(80))
	require.NoError(t, err)

	expected := time.Now().Add(7 * 24 * time.Hour)
	diff := holding.MaturityDate.Sub(expected)
	assert.Less(t, diff.Abs(), time.Minute)
}
