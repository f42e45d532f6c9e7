package services

import (
	"context"
	"errors"
	"time"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateRechargeCmd struct {
	UserID   string
	Amount   decimal.Decimal
	Currency string
}

// CreateRecharge records an external cash-in awaiting validator
// confirmation. No balance changes until validation.
func CreateRecharge(ctx context.Context, cmd CreateRechargeCmd) (*models.Recharge, error) {
	if cmd.UserID == "" {
		return nil, Validation("user id is required")
	}
	if !cmd.Amount.IsPositive() {
		return nil, Validation("recharge amount must be positive")
	}

	var recharge *models.Recharge
	err := withTx(ctx, func(tx *gorm.DB) error {
		r := models.Recharge{
			UserID:   cmd.UserID,
			Amount:   cmd.Amount,
			Currency: cmd.Currency,
			Status:   models.RechargeStatusPending,
		}
		if err := tx.Create(&r).Error; err != nil {
			return Internal("failed to create recharge", err)
		}
		recharge = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recharge, nil
}

// ValidateRecharge confirms the cash-in: the user's wallet is credited
// and one pending fund entry is recorded against the validator, both
// in the same atomic unit. Validating twice is rejected by the status
// guard.
func ValidateRecharge(ctx context.Context, validatorID string, rechargeID uint) (*models.Recharge, *models.LedgerTransaction, error) {
	if validatorID == "" {
		return nil, nil, Validation("validator id is required")
	}

	var (
		recharge *models.Recharge
		entry    *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		var r models.Recharge
		if err := lockForUpdate(tx).First(&r, rechargeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFound("recharge %d not found", rechargeID)
			}
			return Internal("failed to load recharge", err)
		}
		if r.Status != models.RechargeStatusPending {
			return InvalidState("recharge %d is %s, not pending", r.ID, r.Status)
		}

		userWallet, err := walletByOwner(tx, r.UserID)
		if err != nil {
			return err
		}

		e, err := CreditWallet(tx, userWallet.ID, r.Amount,
			Related("recharge", r.ID), "recharge validated by "+validatorID)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Recharge{}).
			Where("id = ? AND status = ?", r.ID, models.RechargeStatusPending).
			Updates(map[string]any{
				"status":       models.RechargeStatusValidated,
				"validator_id": validatorID,
				"validated_at": now,
			})
		if res.Error != nil {
			return Internal("failed to mark recharge validated", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("recharge %d changed state during validation", r.ID)
		}

		fe := models.ValidatorFundEntry{
			ValidatorID: validatorID,
			RechargeID:  r.ID,
			Amount:      r.Amount,
			Status:      models.FundEntryStatusPending,
		}
		if err := tx.Create(&fe).Error; err != nil {
			return Internal("failed to create fund entry", err)
		}

		final := r
		final.Status = models.RechargeStatusValidated
		final.ValidatorID = validatorID
		final.ValidatedAt = &now
		recharge = &final
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return recharge, entry, nil
}

type RequestValidatorTransferCmd struct {
	ValidatorID      string
	CommissionAmount decimal.Decimal
	PaymentMethod    string
}

// RequestValidatorTransfer batches the validator's pending fund
// entries into one transfer-up request. This is a reservation: the
// entries flip to transferred, no wallet moves until admin approval.
func RequestValidatorTransfer(ctx context.Context, cmd RequestValidatorTransferCmd) (*models.ValidatorAdminTransfer, error) {
	if cmd.ValidatorID == "" {
		return nil, Validation("validator id is required")
	}
	if cmd.CommissionAmount.IsNegative() {
		return nil, Validation("commission must not be negative")
	}

	var transfer *models.ValidatorAdminTransfer
	err := withTx(ctx, func(tx *gorm.DB) error {
		var entries []models.ValidatorFundEntry
		if err := lockForUpdate(tx).
			Where("validator_id = ? AND status = ?", cmd.ValidatorID, models.FundEntryStatusPending).
			Find(&entries).Error; err != nil {
			return Internal("failed to load fund entries", err)
		}
		if len(entries) == 0 {
			return InvalidState("validator %s has no pending funds to transfer", cmd.ValidatorID)
		}

		total := decimal.Zero
		ids := make([]uint, 0, len(entries))
		for _, fe := range entries {
			total = total.Add(fe.Amount)
			ids = append(ids, fe.ID)
		}
		if cmd.CommissionAmount.GreaterThan(total) {
			return Validation("commission %s exceeds total %s", cmd.CommissionAmount, total)
		}

		t := models.ValidatorAdminTransfer{
			ValidatorID:      cmd.ValidatorID,
			TotalAmount:      total,
			CommissionAmount: cmd.CommissionAmount,
			TransferAmount:   total.Sub(cmd.CommissionAmount),
			PaymentMethod:    cmd.PaymentMethod,
			Status:           models.ValidatorTransferStatusPending,
		}
		if err := tx.Create(&t).Error; err != nil {
			return Internal("failed to create validator transfer", err)
		}

		res := tx.Model(&models.ValidatorFundEntry{}).
			Where("id IN ? AND status = ?", ids, models.FundEntryStatusPending).
			Updates(map[string]any{
				"status":      models.FundEntryStatusTransferred,
				"transfer_id": t.ID,
			})
		if res.Error != nil {
			return Internal("failed to reserve fund entries", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return Conflict("fund entries changed state during batching")
		}

		if err := tx.Preload("FundEntries").First(&t, t.ID).Error; err != nil {
			return Internal("failed to reload validator transfer", err)
		}
		transfer = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func getValidatorTransfer(tx *gorm.DB, id uint) (*models.ValidatorAdminTransfer, error) {
	var t models.ValidatorAdminTransfer
	if err := tx.Preload("FundEntries").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("validator transfer %d not found", id)
		}
		return nil, Internal("failed to load validator transfer", err)
	}
	return &t, nil
}

// ApproveValidatorTransfer is where the money actually lands: the
// transfer amount is credited to the admin wallet (validator funds
// are external cash, never held in a wallet) and the transfer
// completes.
func ApproveValidatorTransfer(ctx context.Context, adminID string, transferID uint) (*models.ValidatorAdminTransfer, *models.LedgerTransaction, error) {
	var (
		transfer *models.ValidatorAdminTransfer
		entry    *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.ValidatorAdminTransfer{}).
			Where("id = ? AND status = ?", transferID, models.ValidatorTransferStatusPending).
			Updates(map[string]any{
				"status":       models.ValidatorTransferStatusApproved,
				"processed_by": adminID,
				"processed_at": now,
			})
		if res.Error != nil {
			return Internal("failed to approve validator transfer", res.Error)
		}
		if res.RowsAffected == 0 {
			t, err := getValidatorTransfer(tx, transferID)
			if err != nil {
				return err
			}
			return InvalidState("validator transfer %d is %s, not pending", transferID, t.Status)
		}

		t, err := getValidatorTransfer(tx, transferID)
		if err != nil {
			return err
		}

		admin, err := adminWallet(tx)
		if err != nil {
			return err
		}
		e, err := CreditWallet(tx, admin.ID, t.TransferAmount,
			Related("validator_transfer", t.ID), "validator fund transfer from "+t.ValidatorID)
		if err != nil {
			return err
		}

		res = tx.Model(&models.ValidatorAdminTransfer{}).
			Where("id = ? AND status = ?", t.ID, models.ValidatorTransferStatusApproved).
			Update("status", models.ValidatorTransferStatusCompleted)
		if res.Error != nil {
			return Internal("failed to complete validator transfer", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("validator transfer %d changed state during completion", t.ID)
		}

		final, err := getValidatorTransfer(tx, t.ID)
		if err != nil {
			return err
		}
		transfer = final
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return transfer, entry, nil
}

// RejectValidatorTransfer undoes the reservation: every included fund
// entry returns to pending and can be batched again.
func RejectValidatorTransfer(ctx context.Context, adminID string, transferID uint, reason string) (*models.ValidatorAdminTransfer, error) {
	if len(reason) < minRejectionReasonLen {
		return nil, Validation("rejection reason must be at least %d characters", minRejectionReasonLen)
	}

	var transfer *models.ValidatorAdminTransfer
	err := withTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.ValidatorAdminTransfer{}).
			Where("id = ? AND status = ?", transferID, models.ValidatorTransferStatusPending).
			Updates(map[string]any{
				"status":           models.ValidatorTransferStatusRejected,
				"processed_by":     adminID,
				"processed_at":     now,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return Internal("failed to reject validator transfer", res.Error)
		}
		if res.RowsAffected == 0 {
			t, err := getValidatorTransfer(tx, transferID)
			if err != nil {
				return err
			}
			return InvalidState("validator transfer %d is %s, not pending", transferID, t.Status)
		}

		res = tx.Model(&models.ValidatorFundEntry{}).
			Where("transfer_id = ? AND status = ?", transferID, models.FundEntryStatusTransferred).
			Updates(map[string]any{
				"status":      models.FundEntryStatusPending,
				"transfer_id": nil,
			})
		if res.Error != nil {
			return Internal("failed to release fund entries", res.Error)
		}

		t, err := getValidatorTransfer(tx, transferID)
		if err != nil {
			return err
		}
		transfer = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func GetValidatorTransfer(ctx context.Context, transferID uint) (*models.ValidatorAdminTransfer, error) {
	return getValidatorTransfer(database.DB.WithContext(ctx), transferID)
}
