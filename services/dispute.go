package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// partialRefundPercent is the approved refund scale for partial
// resolutions. Conciliators cannot supply their own percentage.
const partialRefundPercent = 50

type OpenDisputeCmd struct {
	OrderID     string
	OrderAmount decimal.Decimal
	Currency    string
	SellerID    string
	ProviderID  string
	Reason      string
}

// OpenDispute is raised by the seller or the provider of a completed
// order.
func OpenDispute(ctx context.Context, actorID string, cmd OpenDisputeCmd) (*models.Dispute, error) {
	if cmd.OrderID == "" {
		return nil, Validation("order id is required")
	}
	if !cmd.OrderAmount.IsPositive() {
		return nil, Validation("order amount must be positive")
	}
	if actorID != cmd.SellerID && actorID != cmd.ProviderID {
		return nil, Forbidden("actor %s is not a party to order %s", actorID, cmd.OrderID)
	}

	var dispute *models.Dispute
	err := withTx(ctx, func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Dispute{}).
			Where("order_id = ? AND status IN ?", cmd.OrderID,
				[]string{models.DisputeStatusOpen, models.DisputeStatusUnderReview}).
			Count(&open).Error; err != nil {
			return Internal("failed to check open disputes", err)
		}
		if open > 0 {
			return Conflict("order %s already has an open dispute", cmd.OrderID)
		}

		d := models.Dispute{
			OrderID:     cmd.OrderID,
			OrderAmount: cmd.OrderAmount,
			Currency:    cmd.Currency,
			SellerID:    cmd.SellerID,
			ProviderID:  cmd.ProviderID,
			Status:      models.DisputeStatusOpen,
			Reason:      cmd.Reason,
		}
		if err := tx.Create(&d).Error; err != nil {
			return Internal("failed to create dispute", err)
		}
		dispute = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func getDispute(tx *gorm.DB, id uint) (*models.Dispute, error) {
	var d models.Dispute
	if err := tx.First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("dispute %d not found", id)
		}
		return nil, Internal("failed to load dispute", err)
	}
	return &d, nil
}

// AssignConciliator moves an open dispute under review.
func AssignConciliator(ctx context.Context, disputeID uint, conciliatorID string) (*models.Dispute, error) {
	if conciliatorID == "" {
		return nil, Validation("conciliator id is required")
	}

	var dispute *models.Dispute
	err := withTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Dispute{}).
			Where("id = ? AND status = ?", disputeID, models.DisputeStatusOpen).
			Updates(map[string]any{
				"status":         models.DisputeStatusUnderReview,
				"conciliator_id": conciliatorID,
				"assigned_at":    now,
			})
		if res.Error != nil {
			return Internal("failed to assign conciliator", res.Error)
		}
		if res.RowsAffected == 0 {
			d, err := getDispute(tx, disputeID)
			if err != nil {
				return err
			}
			return InvalidState("dispute %d is %s, not open", disputeID, d.Status)
		}

		d, err := getDispute(tx, disputeID)
		if err != nil {
			return err
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

type ResolveDisputeCmd struct {
	DisputeID      uint
	ConciliatorID  string
	ResolutionType string
	Resolution     string
}

// refundAmount applies the resolution policy table. A zero result
// means no wallet movement.
func refundAmount(resolutionType string, orderAmount decimal.Decimal) (decimal.Decimal, string, error) {
	switch resolutionType {
	case models.ResolutionRefundSeller:
		return orderAmount, models.EffectiveStatusRefunded, nil
	case models.ResolutionPartialRefund:
		half := orderAmount.Mul(decimal.NewFromInt(partialRefundPercent)).Div(decimal.NewFromInt(100)).Round(2)
		return half, models.EffectiveStatusPartialRefund, nil
	case models.ResolutionFavorProvider:
		return decimal.Zero, models.EffectiveStatusCompleted, nil
	case models.ResolutionNoAction:
		return decimal.Zero, models.EffectiveStatusUnchanged, nil
	default:
		return decimal.Zero, "", Validation("unknown resolution type %q", resolutionType)
	}
}

// ResolveDispute executes the financial outcome and the status
// transition as one atomic unit. A failed refund transfer (e.g. the
// provider wallet cannot cover it) aborts the whole resolution and
// leaves the dispute under review for a later retry.
func ResolveDispute(ctx context.Context, cmd ResolveDisputeCmd) (*models.Dispute, *models.LedgerTransaction, error) {
	var (
		dispute *models.Dispute
		entry   *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		d, err := getDispute(tx, cmd.DisputeID)
		if err != nil {
			return err
		}
		if d.Status != models.DisputeStatusUnderReview {
			return InvalidState("dispute %d is %s, not under review", d.ID, d.Status)
		}
		if d.ConciliatorID != cmd.ConciliatorID {
			return Forbidden("dispute %d is assigned to another conciliator", d.ID)
		}

		amount, effective, err := refundAmount(cmd.ResolutionType, d.OrderAmount)
		if err != nil {
			return err
		}

		var e *models.LedgerTransaction
		if amount.IsPositive() {
			providerWallet, err := walletByOwner(tx, d.ProviderID)
			if err != nil {
				return err
			}
			sellerWallet, err := walletByOwner(tx, d.SellerID)
			if err != nil {
				return err
			}
			e, err = TransferFunds(tx, providerWallet.ID, sellerWallet.ID, amount,
				Related("dispute", d.ID), "dispute resolution "+cmd.ResolutionType)
			if err != nil {
				return err
			}
		}

		detail := map[string]any{
			"resolution_type": cmd.ResolutionType,
			"refund_amount":   amount.String(),
		}
		if cmd.ResolutionType == models.ResolutionPartialRefund {
			detail["refund_percent"] = partialRefundPercent
		}
		if e != nil {
			detail["ledger_ref"] = e.RefID
		}
		detailJSON, err := json.Marshal(detail)
		if err != nil {
			return Internal("failed to encode resolution detail", err)
		}

		now := time.Now()
		res := tx.Model(&models.Dispute{}).
			Where("id = ? AND status = ?", d.ID, models.DisputeStatusUnderReview).
			Updates(map[string]any{
				"status":            models.DisputeStatusResolved,
				"resolution":        cmd.Resolution,
				"resolution_type":   cmd.ResolutionType,
				"effective_status":  effective,
				"resolution_detail": detailJSON,
				"resolved_at":       now,
			})
		if res.Error != nil {
			return Internal("failed to resolve dispute", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("dispute %d changed state during resolution", d.ID)
		}

		final, err := getDispute(tx, d.ID)
		if err != nil {
			return err
		}
		dispute = final
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return dispute, entry, nil
}

// CloseDispute archives a resolved dispute.
func CloseDispute(ctx context.Context, disputeID uint) (*models.Dispute, error) {
	var dispute *models.Dispute
	err := withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Dispute{}).
			Where("id = ? AND status = ?", disputeID, models.DisputeStatusResolved).
			Update("status", models.DisputeStatusClosed)
		if res.Error != nil {
			return Internal("failed to close dispute", res.Error)
		}
		if res.RowsAffected == 0 {
			d, err := getDispute(tx, disputeID)
			if err != nil {
				return err
			}
			return InvalidState("dispute %d is %s, not resolved", disputeID, d.Status)
		}

		d, err := getDispute(tx, disputeID)
		if err != nil {
			return err
		}
		dispute = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

func GetDispute(ctx context.Context, disputeID uint) (*models.Dispute, error) {
	return getDispute(database.DB.WithContext(ctx), disputeID)
}
