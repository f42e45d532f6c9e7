package services

import (
	"context"
	"errors"
	"time"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const minRejectionReasonLen = 10

type RequestWithdrawalCmd struct {
	WalletID      uint
	Amount        decimal.Decimal
	PaymentMethod string
}

// RequestWithdrawal opens a payout request in pending. Funds stay in
// the wallet; the pending status is the reservation; the debit
// happens at completion.
func RequestWithdrawal(ctx context.Context, actorID string, cmd RequestWithdrawalCmd) (*models.Withdrawal, error) {
	if !cmd.Amount.IsPositive() {
		return nil, Validation("withdrawal amount must be positive")
	}
	if cmd.PaymentMethod == "" {
		return nil, Validation("payment method is required")
	}

	var withdrawal *models.Withdrawal
	err := withTx(ctx, func(tx *gorm.DB) error {
		w, err := lockWalletByID(tx, cmd.WalletID)
		if err != nil {
			return err
		}
		if w.OwnerID != actorID {
			return Forbidden("wallet %d does not belong to actor %s", w.ID, actorID)
		}
		if !w.IsActive() {
			return InvalidState("wallet %d is suspended", w.ID)
		}
		if w.Balance.LessThan(cmd.Amount) {
			return InsufficientBalance("wallet %d balance %s is below %s", w.ID, w.Balance, cmd.Amount)
		}

		wd := models.Withdrawal{
			WalletID:      w.ID,
			Amount:        cmd.Amount,
			Currency:      w.Currency,
			PaymentMethod: cmd.PaymentMethod,
			Status:        models.WithdrawalStatusPending,
			RequestedAt:   time.Now(),
		}
		if err := tx.Create(&wd).Error; err != nil {
			return Internal("failed to create withdrawal", err)
		}
		withdrawal = &wd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func getWithdrawal(tx *gorm.DB, id uint) (*models.Withdrawal, error) {
	var wd models.Withdrawal
	if err := tx.First(&wd, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("withdrawal %d not found", id)
		}
		return nil, Internal("failed to load withdrawal", err)
	}
	return &wd, nil
}

// ApproveWithdrawal flips pending to approved. The status guard in the
// WHERE clause makes two concurrent approvals resolve to exactly one
// winner.
func ApproveWithdrawal(ctx context.Context, processorID string, withdrawalID uint) (*models.Withdrawal, error) {
	var withdrawal *models.Withdrawal
	err := withTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
			Updates(map[string]any{
				"status":       models.WithdrawalStatusApproved,
				"processed_by": processorID,
				"processed_at": now,
			})
		if res.Error != nil {
			return Internal("failed to approve withdrawal", res.Error)
		}
		if res.RowsAffected == 0 {
			wd, err := getWithdrawal(tx, withdrawalID)
			if err != nil {
				return err
			}
			return InvalidState("withdrawal %d is %s, not pending", withdrawalID, wd.Status)
		}

		wd, err := getWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		withdrawal = wd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func RejectWithdrawal(ctx context.Context, processorID string, withdrawalID uint, reason string) (*models.Withdrawal, error) {
	if len(reason) < minRejectionReasonLen {
		return nil, Validation("rejection reason must be at least %d characters", minRejectionReasonLen)
	}

	var withdrawal *models.Withdrawal
	err := withTx(ctx, func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusPending).
			Updates(map[string]any{
				"status":           models.WithdrawalStatusRejected,
				"processed_by":     processorID,
				"processed_at":     now,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return Internal("failed to reject withdrawal", res.Error)
		}
		if res.RowsAffected == 0 {
			wd, err := getWithdrawal(tx, withdrawalID)
			if err != nil {
				return err
			}
			return InvalidState("withdrawal %d is %s, not pending", withdrawalID, wd.Status)
		}

		wd, err := getWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		withdrawal = wd
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

// CompleteWithdrawal records the external payout confirmation: the
// wallet is debited and the withdrawal closes. If the debit no longer
// fits the balance, the withdrawal goes back to pending for re-review
// instead of being dropped.
func CompleteWithdrawal(ctx context.Context, withdrawalID uint, payoutProof datatypes.JSON) (*models.Withdrawal, *models.LedgerTransaction, error) {
	var (
		withdrawal *models.Withdrawal
		entry      *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		wd, err := getWithdrawal(tx, withdrawalID)
		if err != nil {
			return err
		}
		if wd.Status != models.WithdrawalStatusApproved {
			return InvalidState("withdrawal %d is %s, not approved", withdrawalID, wd.Status)
		}

		e, err := DebitWallet(tx, wd.WalletID, wd.Amount,
			Related("withdrawal", wd.ID), "withdrawal payout "+wd.PaymentMethod)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", wd.ID, models.WithdrawalStatusApproved).
			Updates(map[string]any{
				"status":       models.WithdrawalStatusCompleted,
				"payout_proof": payoutProof,
			})
		if res.Error != nil {
			return Internal("failed to complete withdrawal", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("withdrawal %d changed state during completion", wd.ID)
		}

		final, err := getWithdrawal(tx, wd.ID)
		if err != nil {
			return err
		}
		withdrawal = final
		entry = e
		return nil
	})
	if err != nil {
		if IsKind(err, KindInsufficientBalance) {
			if revertErr := revertWithdrawalToPending(ctx, withdrawalID, err.Error()); revertErr != nil {
				return nil, nil, revertErr
			}
		}
		return nil, nil, err
	}
	return withdrawal, entry, nil
}

// revertWithdrawalToPending puts a failed completion back in the
// review queue with the failure recorded on the row.
func revertWithdrawalToPending(ctx context.Context, withdrawalID uint, reason string) error {
	return withTx(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, models.WithdrawalStatusApproved).
			Updates(map[string]any{
				"status":         models.WithdrawalStatusPending,
				"processed_by":   "",
				"processed_at":   nil,
				"failure_reason": reason,
			})
		if res.Error != nil {
			return Internal("failed to revert withdrawal", res.Error)
		}
		return nil
	})
}

func GetWithdrawal(ctx context.Context, withdrawalID uint) (*models.Withdrawal, error) {
	return getWithdrawal(database.DB.WithContext(ctx), withdrawalID)
}
