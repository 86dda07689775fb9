package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	notifsvc "aurum-backend/internal/application/notifications"
	"aurum-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WebhookHandler struct {
	DB            *gorm.DB
	Notifications *notifsvc.Service
	WebhookSecret string
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type paymentIntentObject struct {
	ID             string            `json:"id"`
	AmountReceived int               `json:"amount_received"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
}

// HandleWebhook POST /api/v1/stripe/webhook — raw body, signature verification, then process.
func (wh *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	rawBody := c.BodyRaw()
	sig := c.Get("Stripe-Signature")

	if len(rawBody) == 0 {
		log.Warn().Msg("Stripe webhook received empty body (ensure no global body parser consumes the webhook body)")
		return c.Status(400).SendString("Webhook Error: empty body")
	}

	if err := verifyStripeSignature(rawBody, sig, wh.WebhookSecret); err != nil {
		log.Warn().Err(err).Bool("has_sig", sig != "").Bool("has_secret", wh.WebhookSecret != "").Msg("Stripe webhook signature verification failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	var event stripeEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Warn().Err(err).Msg("Stripe webhook JSON parse failed")
		return c.Status(400).SendString(fmt.Sprintf("Webhook Error: %s", err.Error()))
	}

	if event.Type == "payment_intent.succeeded" {
		var pi paymentIntentObject
		if err := json.Unmarshal(event.Data.Object, &pi); err != nil {
			return c.Status(200).SendString("ok")
		}

		// Domain errors still get a 200 so Stripe stops retrying; the payment
		// row keeps the raw intent for manual reconciliation.
		if err := wh.handlePaymentIntentSucceeded(c, pi, event.ID, rawBody); err != nil {
			log.Error().Err(err).Str("payment_intent", pi.ID).Msg("Stripe webhook top-up processing failed")
			return c.Status(200).SendString("ok")
		}
	}

	return c.Status(200).SendString("ok")
}

func (wh *WebhookHandler) handlePaymentIntentSucceeded(c *fiber.Ctx, pi paymentIntentObject, eventID string, rawBody []byte) error {
	if pi.Metadata["purpose"] != "wallet_topup" {
		return nil
	}
	userIDStr := pi.Metadata["user_id"]
	if userIDStr == "" {
		return nil
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil
	}
	if pi.AmountReceived <= 0 {
		return nil
	}
	amount := decimal.NewFromInt(int64(pi.AmountReceived)).Div(decimal.NewFromInt(100)).Round(2)

	err = wh.DB.Transaction(func(tx *gorm.DB) error {
		// Idempotency: the payment row lands before the credit, keyed by intent ID
		var existing domain.Payment
		if err := tx.Where("stripe_payment_intent_id = ?", pi.ID).First(&existing).Error; err == nil {
			return nil
		}

		payment := domain.Payment{
			StripePaymentIntentID: pi.ID,
			StripeEventID:         eventID,
			UserID:                userID,
			Amount:                amount,
			AmountPaidCents:       pi.AmountReceived,
			Currency:              pi.Currency,
			Status:                pi.Status,
			RawPaymentIntent:      rawBody,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New("Wallet not found")
			}
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		if err := tx.Save(&wallet).Error; err != nil {
			return err
		}

		return tx.Create(&domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxTypeTopup,
			Amount:      amount,
			Description: fmt.Sprintf("Wallet top-up via Stripe (%s)", pi.ID),
			ReferenceID: &payment.ID,
		}).Error
	})
	if err != nil {
		return err
	}

	if wh.Notifications != nil {
		msg := fmt.Sprintf("Your wallet was topped up with %s %s.", amount.StringFixed(2), strings.ToUpper(pi.Currency))
		if _, err := wh.Notifications.Create(c.Context(), userID, "Wallet Top-Up", msg, domain.NotificationTypeTopup); err != nil {
			log.Warn().Err(err).Str("payment_intent", pi.ID).Msg("top-up notification failed")
		}
	}
	return nil
}

// verifyStripeSignature verifies the Stripe-Signature header using the webhook secret.
func verifyStripeSignature(payload []byte, sigHeader, secret string) error {
	if sigHeader == "" || secret == "" {
		return errors.New("missing signature or secret")
	}

	var timestamp string
	var signatures []string

	parts := strings.Split(sigHeader, ",")
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return errors.New("invalid signature format")
	}

	signedPayload := timestamp + "." + string(payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	expectedSig := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expectedSig)) {
			ts, err := strconv.ParseInt(timestamp, 10, 64)
			if err != nil {
				return errors.New("invalid timestamp")
			}
			diff := time.Now().Unix() - ts
			if diff < 0 {
				diff = -diff
			}
			if diff > 300 {
				return errors.New("timestamp too old")
			}
			return nil
		}
	}

	return errors.New("signature mismatch")
}
