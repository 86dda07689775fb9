package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	notifsvc "aurum-backend/internal/application/notifications"
	"aurum-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Wallet{}, &domain.WalletTransaction{},
		&domain.Payment{}, &domain.Notification{},
	))

	wh := &WebhookHandler{
		DB:            db,
		Notifications: &notifsvc.Service{DB: db},
		WebhookSecret: testWebhookSecret,
	}
	app := fiber.New()
	app.Post("/api/v1/stripe/webhook", wh.HandleWebhook)
	return app, db
}

// signPayload builds a Stripe-Signature header the way Stripe does:
// t=<unix>,v1=<hex hmac-sha256 of "<unix>.<payload>">.
func signPayload(payload []byte, secret string, ts time.Time) string {
	timestamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func paymentIntentEvent(intentID string, userID uuid.UUID, amountCents int) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_%s",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": %q,
			"amount_received": %d,
			"currency": "usd",
			"status": "succeeded",
			"metadata": {"purpose": "wallet_topup", "user_id": %q}
		}}
	}`, intentID, intentID, amountCents, userID))
}

func TestWebhook_CreditsWalletOnSucceededIntent(t *testing.T) {
	app, db := newWebhookApp(t)

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{UserID: userID, Currency: "USD"}).Error)

	payload := paymentIntentEvent("pi_123", userID, 5550)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromFloat(55.50)), "got %s", w.Balance)

	var payment domain.Payment
	require.NoError(t, db.Where("stripe_payment_intent_id = ?", "pi_123").First(&payment).Error)
	assert.Equal(t, userID, payment.UserID)
	assert.Equal(t, 5550, payment.AmountPaidCents)

	var ledger domain.WalletTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, domain.TxTypeTopup).First(&ledger).Error)
	assert.True(t, ledger.Amount.Equal(decimal.NewFromFloat(55.50)))
	require.NotNil(t, ledger.ReferenceID)
	assert.Equal(t, payment.ID, *ledger.ReferenceID)

	var notif domain.Notification
	require.NoError(t, db.Where("user_id = ?", userID).First(&notif).Error)
	assert.Equal(t, "Wallet Top-Up", notif.Title)
	assert.Contains(t, notif.Message, "55.50 USD")
}

func TestWebhook_RedeliveryCreditsOnce(t *testing.T) {
	app, db := newWebhookApp(t)

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{UserID: userID, Currency: "USD"}).Error)

	payload := paymentIntentEvent("pi_once", userID, 1000)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
		req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(10)), "got %s", w.Balance)

	var ledgerCount int64
	require.NoError(t, db.Model(&domain.WalletTransaction{}).Where("user_id = ?", userID).Count(&ledgerCount).Error)
	assert.EqualValues(t, 1, ledgerCount)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	app, db := newWebhookApp(t)

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{UserID: userID, Currency: "USD"}).Error)

	payload := paymentIntentEvent("pi_bad", userID, 1000)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload, "whsec_wrong_secret", time.Now()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.IsZero())
}

func TestWebhook_RejectsStaleTimestamp(t *testing.T) {
	app, _ := newWebhookApp(t)

	payload := paymentIntentEvent("pi_stale", uuid.New(), 1000)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now().Add(-10*time.Minute)))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	app, _ := newWebhookApp(t)

	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(`{}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestWebhook_IgnoresNonTopupIntents(t *testing.T) {
	app, db := newWebhookApp(t)

	userID := uuid.New()
	require.NoError(t, db.Create(&domain.Wallet{UserID: userID, Currency: "USD"}).Error)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_other",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_other",
			"amount_received": 1000,
			"currency": "usd",
			"status": "succeeded",
			"metadata": {"purpose": "something_else", "user_id": %q}
		}}
	}`, userID))
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	assert.True(t, w.Balance.IsZero())
}

func TestWebhook_IgnoresUnhandledEventTypes(t *testing.T) {
	app, _ := newWebhookApp(t)

	payload := []byte(`{"id": "evt_x", "type": "charge.refunded", "data": {"object": {}}}`)
	req := httptest.NewRequest("POST", "/api/v1/stripe/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
