package wallet

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

func setupWalletTest(t *testing.T) (*Service, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.WalletTransaction{}))

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{
		UserID:   userID,
		Balance:  decimal.NewFromInt(100),
		Currency: "USD",
	}).Error)
	return &Service{DB: db}, db, userID
}

func TestCredit_AddsBalanceAndLedger(t *testing.T) {
	svc, db, userID := setupWalletTest(t)

	w, err := svc.Credit(context.Background(), userID, decimal.NewFromFloat(25.50), domain.TxTypeTopup, "Wallet top-up", nil)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromFloat(125.50)), "got %s", w.Balance)

	var ledger domain.WalletTransaction
	require.NoError(t, db.Where("user_id = ?", userID).First(&ledger).Error)
	assert.Equal(t, domain.TxTypeTopup, ledger.Type)
	assert.True(t, ledger.Amount.Equal(decimal.NewFromFloat(25.50)))
}

func TestDebit_SubtractsAndRecordsNegativeAmount(t *testing.T) {
	svc, db, userID := setupWalletTest(t)

	w, err := svc.Debit(context.Background(), userID, decimal.NewFromInt(40), domain.TxTypeGoldBuy, "Gold purchase", nil)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(60)))

	var ledger domain.WalletTransaction
	require.NoError(t, db.Where("user_id = ?", userID).First(&ledger).Error)
	assert.True(t, ledger.Amount.Equal(decimal.NewFromInt(-40)), "debits are stored negative, got %s", ledger.Amount)
}

func TestDebit_InsufficientFundsLeavesBalanceUntouched(t *testing.T) {
	svc, db, userID := setupWalletTest(t)

	_, err := svc.Debit(context.Background(), userID, decimal.NewFromFloat(100.01), domain.TxTypeGoldBuy, "Gold purchase", nil)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))

	var count int64
	require.NoError(t, db.Model(&domain.WalletTransaction{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 0, count, "failed debit must not leave a ledger entry")
}

func TestDebit_ExactBalanceIsAllowed(t *testing.T) {
	svc, _, userID := setupWalletTest(t)

	w, err := svc.Debit(context.Background(), userID, decimal.NewFromInt(100), domain.TxTypeInvestment, "Plan subscription", nil)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
}

func TestCreditAndDebit_RejectNonPositiveAmounts(t *testing.T) {
	svc, _, userID := setupWalletTest(t)

	_, err := svc.Credit(context.Background(), userID, decimal.Zero, domain.TxTypeTopup, "", nil)
	require.EqualError(t, err, "Amount must be a positive number")

	_, err = svc.Debit(context.Background(), userID, decimal.NewFromInt(-5), domain.TxTypeGoldBuy, "", nil)
	require.EqualError(t, err, "Amount must be a positive number")
}

func TestCredit_UnknownWallet(t *testing.T) {
	svc, _, _ := setupWalletTest(t)

	_, err := svc.Credit(context.Background(), uuid.New(), decimal.NewFromInt(10), domain.TxTypeTopup, "", nil)
	require.EqualError(t, err, "Wallet not found")
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, db, userID := setupWalletTest(t)

	_, err := svc.Credit(context.Background(), userID, decimal.NewFromInt(10), domain.TxTypeTopup, "first", nil)
	require.NoError(t, err)
	_, err = svc.Debit(context.Background(), userID, decimal.NewFromInt(5), domain.TxTypeGoldBuy, "second", nil)
	require.NoError(t, err)

	// Force distinct timestamps; two writes can land in the same tick on
	// fast machines.
	require.NoError(t, db.Model(&domain.WalletTransaction{}).
		Where("description = ?", "second").
		Update("created_at", time.Now().Add(time.Hour)).Error)

	txs, err := svc.History(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "second", txs[0].Description)
	assert.Equal(t, "first", txs[1].Description)
}
