package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurum-backend/internal/application/chat"
	"aurum-backend/internal/application/emails"
	"aurum-backend/internal/application/notifications"
	"aurum-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Conversation subjects for maturity announcements. Fixed strings: all
// settlement messages for one owner land in the same thread.
const (
	GoldMaturitySubject       = "Gold Maturity Notification"
	InvestmentMaturitySubject = "Investment Maturity Notification"
)

var errAlreadySettled = errors.New("already settled by an earlier run")

// Service is the maturity settlement worker. One Run scans both ledgers for
// entries past their maturity instant (strict less-than), transitions each to
// its terminal state and, for investments, credits the payout to the owner's
// wallet. It requires a privileged DB handle that can read and write every
// owner's rows.
type Service struct {
	DB            *gorm.DB
	Notifications *notifications.Service
	Chat          *chat.Service
	// Emails, when set, sends maturity notices best-effort. Nil skips email.
	Emails emails.Sender
	// Now is the sweep clock; tests override it to pin the boundary instant.
	Now func() time.Time
}

// ItemResult reports the outcome of one holding or investment so operators
// can reconcile failures from the run summary instead of scraping logs.
type ItemResult struct {
	ID     uuid.UUID `json:"id"`
	Ledger string    `json:"ledger"`
	OK     bool      `json:"ok"`
	Step   string    `json:"step,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// RunSummary is the result of one sweep.
type RunSummary struct {
	HoldingsMatured      int          `json:"holdings_matured"`
	InvestmentsCompleted int          `json:"investments_completed"`
	Items                []ItemResult `json:"items"`
}

// Processed is the total number of settled items across both ledgers.
func (r *RunSummary) Processed() int {
	return r.HoldingsMatured + r.InvestmentsCompleted
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run executes one settlement sweep. A failure to list either ledger's
// candidates aborts the whole run; every per-item failure is recorded and the
// loop continues, leaving the item eligible for the next scheduled run.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	now := s.now()
	summary := &RunSummary{Items: []ItemResult{}}

	var holdings []domain.GoldHolding
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND maturity_date < ?", domain.HoldingStatusLocked, now).
		Find(&holdings).Error; err != nil {
		return nil, fmt.Errorf("list matured holdings: %w", err)
	}
	for i := range holdings {
		item := s.settleHolding(ctx, &holdings[i])
		if item.OK {
			summary.HoldingsMatured++
		}
		summary.Items = append(summary.Items, item)
	}

	var investments []domain.Investment
	if err := s.DB.WithContext(ctx).
		Preload("Plan").
		Where("status = ? AND end_date < ?", domain.InvestmentStatusActive, now).
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("list matured investments: %w", err)
	}
	for i := range investments {
		item := s.settleInvestment(ctx, &investments[i], now)
		if item.OK {
			summary.InvestmentsCompleted++
		}
		summary.Items = append(summary.Items, item)
	}

	return summary, nil
}

// settleHolding flips one holding locked → mature, then notifies the owner.
// The guarded update makes the transition happen at most once even when two
// sweeps overlap; notify failures never revert it.
func (s *Service) settleHolding(ctx context.Context, h *domain.GoldHolding) ItemResult {
	item := ItemResult{ID: h.HoldingID, Ledger: "holding"}

	res := s.DB.WithContext(ctx).Model(&domain.GoldHolding{}).
		Where("holding_id = ? AND status = ?", h.HoldingID, domain.HoldingStatusLocked).
		Update("status", domain.HoldingStatusMature)
	if res.Error != nil {
		log.Error().Err(res.Error).Str("holding_id", h.HoldingID.String()).Msg("holding maturity transition failed")
		item.Step = "transition"
		item.Error = res.Error.Error()
		return item
	}
	if res.RowsAffected == 0 {
		// A concurrent run won the flip; nothing left to do here.
		item.Step = "transition"
		item.Error = "holding no longer locked"
		return item
	}
	item.OK = true

	msg := fmt.Sprintf("Your %s g gold holding has matured and is now available to sell or withdraw.", h.Grams.String())
	if _, err := s.Notifications.Create(ctx, h.UserID, "Gold Matured", msg, domain.NotificationTypeGoldPurchase); err != nil {
		log.Warn().Err(err).Str("holding_id", h.HoldingID.String()).Msg("holding maturity notification failed")
		item.Step = "notify"
		item.Error = err.Error()
		return item
	}
	if err := s.announce(ctx, h.UserID, GoldMaturitySubject, msg); err != nil {
		log.Warn().Err(err).Str("holding_id", h.HoldingID.String()).Msg("holding maturity chat message failed")
		item.Step = "chat"
		item.Error = err.Error()
	}
	if s.Emails != nil {
		if email, name, ok := s.ownerContact(ctx, h.UserID); ok {
			if err := s.Emails.SendGoldMatured(ctx, email, name, h.Grams.String()); err != nil {
				log.Warn().Err(err).Str("holding_id", h.HoldingID.String()).Msg("gold maturity email failed")
			}
		}
	}
	return item
}

// settleInvestment completes one investment and credits the payout. The
// settlement record, wallet credit, ledger entry and status flip share one
// transaction, with the unique settlement record inserted before the credit
// so a retry or overlapping run can never double-credit.
func (s *Service) settleInvestment(ctx context.Context, inv *domain.Investment, now time.Time) ItemResult {
	item := ItemResult{ID: inv.InvestmentID, Ledger: "investment"}

	plan := inv.Plan
	if plan == nil {
		var p domain.InvestmentPlan
		if err := s.DB.WithContext(ctx).Where("plan_id = ?", inv.PlanID).First(&p).Error; err != nil {
			log.Error().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment plan lookup failed")
			item.Step = "plan"
			item.Error = err.Error()
			return item
		}
		plan = &p
	}

	// payout = principal * (1 + returns_percentage/100), computed once.
	payout := inv.Principal.Add(
		inv.Principal.Mul(plan.ReturnsPercentage).Div(decimal.NewFromInt(100)),
	).Round(2)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := domain.SettlementRecord{
			InvestmentID: inv.InvestmentID,
			UserID:       inv.UserID,
			Payout:       payout,
			CreditedAt:   now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "investment_id"}},
			DoNothing: true,
		}).Create(&rec)
		if res.Error != nil {
			return fmt.Errorf("settlement record: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadySettled
		}

		var wallet domain.Wallet
		if err := tx.Where("user_id = ?", inv.UserID).First(&wallet).Error; err != nil {
			return fmt.Errorf("wallet fetch: %w", err)
		}
		wallet.Balance = wallet.Balance.Add(payout)
		if err := tx.Save(&wallet).Error; err != nil {
			return fmt.Errorf("wallet credit: %w", err)
		}

		ledger := domain.WalletTransaction{
			UserID:      inv.UserID,
			Type:        domain.TxTypeInvestmentReturn,
			Amount:      payout,
			Description: fmt.Sprintf("Matured investment payout (%s plan)", plan.Name),
			ReferenceID: &inv.InvestmentID,
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return fmt.Errorf("ledger entry: %w", err)
		}

		upd := tx.Model(&domain.Investment{}).
			Where("investment_id = ? AND status = ?", inv.InvestmentID, domain.InvestmentStatusActive).
			Update("status", domain.InvestmentStatusCompleted)
		if upd.Error != nil {
			return fmt.Errorf("status transition: %w", upd.Error)
		}
		if upd.RowsAffected == 0 {
			return errors.New("investment no longer active")
		}
		return nil
	})
	if err != nil {
		if err != errAlreadySettled {
			log.Error().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment settlement failed")
		}
		item.Step = "settle"
		item.Error = err.Error()
		return item
	}
	item.OK = true

	msg := fmt.Sprintf("Your investment of %s has matured. %s has been credited to your wallet.", inv.Principal.StringFixed(2), payout.StringFixed(2))
	if _, err := s.Notifications.Create(ctx, inv.UserID, "Investment Matured", msg, domain.NotificationTypeInvestment); err != nil {
		log.Warn().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment maturity notification failed")
		item.Step = "notify"
		item.Error = err.Error()
		return item
	}
	if err := s.announce(ctx, inv.UserID, InvestmentMaturitySubject, msg); err != nil {
		log.Warn().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment maturity chat message failed")
		item.Step = "chat"
		item.Error = err.Error()
	}
	if s.Emails != nil {
		if email, name, ok := s.ownerContact(ctx, inv.UserID); ok {
			if err := s.Emails.SendInvestmentMatured(ctx, email, name, payout.StringFixed(2)); err != nil {
				log.Warn().Err(err).Str("investment_id", inv.InvestmentID.String()).Msg("investment maturity email failed")
			}
		}
	}
	return item
}

// ownerContact looks up the owner's email and first name for maturity notices.
func (s *Service) ownerContact(ctx context.Context, userID uuid.UUID) (string, string, bool) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("maturity email owner lookup failed")
		return "", "", false
	}
	name := u.Fullname
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	return u.Email, name, true
}

// announce appends a maturity message, from the owner's own identity, to the
// owner's conversation under the fixed subject.
func (s *Service) announce(ctx context.Context, userID uuid.UUID, subject, body string) error {
	conv, err := s.Chat.GetOrCreateConversation(ctx, userID, subject)
	if err != nil {
		return err
	}
	_, err = s.Chat.AppendMessage(ctx, conv.ConversationID, userID, body, nil, false)
	return err
}
