package wallet

import (
	"math"
	"strconv"

	walletsvc "aurum-backend/internal/application/wallet"
	"aurum-backend/internal/middleware"
	"aurum-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type Handlers struct {
	Service       *walletsvc.Service
	StripeCreator StripePaymentIntentCreator
}

// StripePaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
type StripePaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error)
}

type StripePaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// RealStripeCreator uses the Stripe Go SDK to create PaymentIntents.
type RealStripeCreator struct {
	SecretKey string
}

func (r *RealStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*StripePaymentIntentResult, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(501, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &StripePaymentIntentResult{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Balance GET /api/v1/wallet — session user's wallet.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	w, err := h.Service.Balance(c.Context(), userID)
	if err != nil {
		if err.Error() == "Wallet not found" {
			return response.Error(c, err.Error(), 404, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Wallet found", fiber.Map{
		"balance":  w.Balance.StringFixed(2),
		"currency": w.Currency,
	}, nil)
}

// History GET /api/v1/wallet/transactions — ledger entries newest-first.
func (h *Handlers) History(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	txs, err := h.Service.History(c.Context(), userID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Transactions found", fiber.Map{"transactions": txs}, nil)
}

// TopUp POST /api/v1/wallet/top-up — ONLY creates the Stripe PaymentIntent.
// The wallet is credited when the webhook confirms payment_intent.succeeded.
func (h *Handlers) TopUp(c *fiber.Ctx) error {
	userID, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Amount <= 0 {
		return response.Error(c, "Amount must be a positive number", 400, nil)
	}

	if h.StripeCreator == nil {
		return response.Error(c, "Stripe not configured", 500, nil)
	}

	amountCents := int64(math.Round(body.Amount * 100))
	pi, err := h.StripeCreator.Create(amountCents, "usd", map[string]string{
		"user_id": userID.String(),
		"purpose": "wallet_topup",
		"amount":  strconv.FormatFloat(body.Amount, 'f', 2, 64),
	})
	if err != nil {
		code := 500
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}
		return response.Error(c, err.Error(), code, nil)
	}

	return response.Success(c, "Payment intent created", fiber.Map{
		"payment_intent_id": pi.ID,
		"client_secret":     pi.ClientSecret,
	}, nil)
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	u := middleware.GetUser(c)
	m, ok := u.(map[string]interface{})
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, _ := m["user_id"].(string)
	return uuid.Parse(id)
}
