package wallet

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	walletsvc "aurum-backend/internal/application/wallet"
	"aurum-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStripeCreator struct {
	lastAmountCents int64
	lastCurrency    string
	lastMetadata    map[string]string
	err             error
}

func (f *fakeStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	f.lastAmountCents = amountCents
	f.lastCurrency = currency
	f.lastMetadata = metadata
	if f.err != nil {
		return nil, f.err
	}
	return &StripePaymentIntentResult{ID: "pi_test_123", ClientSecret: "pi_test_123_secret"}, nil
}

func newWalletApp(t *testing.T, creator StripePaymentIntentCreator) (*fiber.App, *gorm.DB, uuid.UUID) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.WalletTransaction{}))

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{
		UserID:   userID,
		Balance:  decimal.NewFromFloat(123.456),
		Currency: "USD",
	}).Error)

	h := &Handlers{Service: &walletsvc.Service{DB: db}, StripeCreator: creator}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": userID.String(),
			"email":   "holder@example.com",
			"role":    "customer",
		})
		return c.Next()
	})
	app.Get("/wallet", h.Balance)
	app.Get("/wallet/transactions", h.History)
	app.Post("/wallet/top-up", h.TopUp)
	return app, db, userID
}

func TestBalance_Endpoint(t *testing.T) {
	app, _, _ := newWalletApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Balance  string `json:"balance"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "123.46", body.Data.Balance, "balance is serialized with two decimals")
	assert.Equal(t, "USD", body.Data.Currency)
}

func TestBalance_Endpoint_MissingWallet(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Wallet{}))

	h := &Handlers{Service: &walletsvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{"user_id": uuid.NewString()})
		return c.Next()
	})
	app.Get("/wallet", h.Balance)

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHistory_Endpoint(t *testing.T) {
	app, db, userID := newWalletApp(t, nil)

	require.NoError(t, db.Create(&domain.WalletTransaction{
		UserID:      userID,
		Type:        domain.TxTypeTopup,
		Amount:      decimal.NewFromInt(50),
		Description: "Wallet top-up via Stripe (pi_x)",
	}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/wallet/transactions", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data struct {
			Transactions []domain.WalletTransaction `json:"transactions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data.Transactions, 1)
	assert.Equal(t, domain.TxTypeTopup, body.Data.Transactions[0].Type)
}

func TestTopUp_Endpoint_CreatesIntentOnly(t *testing.T) {
	creator := &fakeStripeCreator{}
	app, db, userID := newWalletApp(t, creator)

	req := httptest.NewRequest("POST", "/wallet/top-up", strings.NewReader(`{"amount": 55.50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Data struct {
			PaymentIntentID string `json:"payment_intent_id"`
			ClientSecret    string `json:"client_secret"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pi_test_123", body.Data.PaymentIntentID)
	assert.Equal(t, "pi_test_123_secret", body.Data.ClientSecret)

	// The intent carries the metadata the webhook needs to route the credit
	assert.EqualValues(t, 5550, creator.lastAmountCents)
	assert.Equal(t, "usd", creator.lastCurrency)
	assert.Equal(t, "wallet_topup", creator.lastMetadata["purpose"])
	assert.Equal(t, userID.String(), creator.lastMetadata["user_id"])
	assert.Equal(t, "55.50", creator.lastMetadata["amount"])

	// No credit until the webhook lands
	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromFloat(123.456)))
}

func TestTopUp_Endpoint_RejectsNonPositiveAmount(t *testing.T) {
	app, _, _ := newWalletApp(t, &fakeStripeCreator{})

	req := httptest.NewRequest("POST", "/wallet/top-up", strings.NewReader(`{"amount": 0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestTopUp_Endpoint_UnconfiguredStripe(t *testing.T) {
	app, _, _ := newWalletApp(t, &RealStripeCreator{})

	req := httptest.NewRequest("POST", "/wallet/top-up", strings.NewReader(`{"amount": 10}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 501, resp.StatusCode)
}
