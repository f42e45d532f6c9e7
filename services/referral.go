package services

import (
	"context"
	"errors"
	"time"

	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateAffiliationCmd struct {
	AffiliateID      string
	ReferredUserID   string
	ApprovalFee      decimal.Decimal
	CommissionAmount decimal.Decimal
}

// CreateAffiliation records a referral at signup time, pending
// approval. No money moves yet.
func CreateAffiliation(ctx context.Context, cmd CreateAffiliationCmd) (*models.Affiliation, error) {
	if cmd.AffiliateID == "" || cmd.ReferredUserID == "" {
		return nil, Validation("affiliate id and referred user id are required")
	}
	if cmd.AffiliateID == cmd.ReferredUserID {
		return nil, Validation("affiliate cannot refer themselves")
	}
	if cmd.ApprovalFee.IsNegative() || cmd.CommissionAmount.IsNegative() {
		return nil, Validation("approval fee and commission must not be negative")
	}

	var affiliation *models.Affiliation
	err := withTx(ctx, func(tx *gorm.DB) error {
		a := models.Affiliation{
			AffiliateID:      cmd.AffiliateID,
			ReferredUserID:   cmd.ReferredUserID,
			ApprovalStatus:   models.AffiliationStatusPending,
			ApprovalFee:      cmd.ApprovalFee,
			CommissionAmount: cmd.CommissionAmount,
		}
		if err := tx.Create(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("user %s is already referred", cmd.ReferredUserID)
			}
			return Internal("failed to create affiliation", err)
		}
		affiliation = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affiliation, nil
}

func getAffiliation(tx *gorm.DB, id uint) (*models.Affiliation, error) {
	var a models.Affiliation
	if err := tx.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("affiliation %d not found", id)
		}
		return nil, Internal("failed to load affiliation", err)
	}
	return &a, nil
}

// ApproveReferral charges the approval fee from the affiliate's wallet
// to the admin wallet and flips the affiliation to approved, as one
// atomic unit. A failed fee transfer leaves the affiliation pending.
func ApproveReferral(ctx context.Context, affiliationID uint, affiliateUserID string) (*models.Affiliation, *models.LedgerTransaction, error) {
	var (
		affiliation *models.Affiliation
		entry       *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		a, err := getAffiliation(tx, affiliationID)
		if err != nil {
			return err
		}
		if a.AffiliateID != affiliateUserID {
			return Forbidden("affiliation %d does not belong to affiliate %s", affiliationID, affiliateUserID)
		}
		if a.ApprovalStatus != models.AffiliationStatusPending {
			return InvalidState("affiliation %d is %s, not pending", affiliationID, a.ApprovalStatus)
		}

		affiliateWallet, err := walletByOwner(tx, a.AffiliateID)
		if err != nil {
			return err
		}
		admin, err := adminWallet(tx)
		if err != nil {
			return err
		}

		var e *models.LedgerTransaction
		if a.ApprovalFee.IsPositive() {
			e, err = TransferFunds(tx, affiliateWallet.ID, admin.ID, a.ApprovalFee,
				Related("affiliation_approval", a.ID), "referral approval fee")
			if err != nil {
				return err
			}
		}

		now := time.Now()
		res := tx.Model(&models.Affiliation{}).
			Where("id = ? AND approval_status = ?", a.ID, models.AffiliationStatusPending).
			Updates(map[string]any{
				"approval_status": models.AffiliationStatusApproved,
				"approved_at":     now,
			})
		if res.Error != nil {
			return Internal("failed to approve affiliation", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("affiliation %d changed state during approval", a.ID)
		}

		final, err := getAffiliation(tx, a.ID)
		if err != nil {
			return err
		}
		affiliation = final
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return affiliation, entry, nil
}

// PayReferralCommission pays the affiliate their commission from the
// admin wallet once the referred user converts. Idempotent per
// affiliation; pays at most once.
func PayReferralCommission(ctx context.Context, affiliationID uint) (*models.Affiliation, *models.LedgerTransaction, error) {
	var (
		affiliation *models.Affiliation
		entry       *models.LedgerTransaction
	)
	err := withTx(ctx, func(tx *gorm.DB) error {
		a, err := getAffiliation(tx, affiliationID)
		if err != nil {
			return err
		}
		if a.ApprovalStatus != models.AffiliationStatusApproved {
			return InvalidState("affiliation %d is %s, not approved", affiliationID, a.ApprovalStatus)
		}
		if a.CommissionPaid {
			return InvalidState("commission for affiliation %d already paid", affiliationID)
		}
		if !a.CommissionAmount.IsPositive() {
			return Validation("affiliation %d has no commission amount", affiliationID)
		}

		admin, err := adminWallet(tx)
		if err != nil {
			return err
		}
		affiliateWallet, err := walletByOwner(tx, a.AffiliateID)
		if err != nil {
			return err
		}

		e, err := TransferFunds(tx, admin.ID, affiliateWallet.ID, a.CommissionAmount,
			Related("affiliation_commission", a.ID), "referral commission payout")
		if err != nil {
			return err
		}

		res := tx.Model(&models.Affiliation{}).
			Where("id = ? AND commission_paid = ?", a.ID, false).
			Update("commission_paid", true)
		if res.Error != nil {
			return Internal("failed to mark commission paid", res.Error)
		}
		if res.RowsAffected == 0 {
			return Conflict("affiliation %d changed state during commission payout", a.ID)
		}

		final, err := getAffiliation(tx, a.ID)
		if err != nil {
			return err
		}
		affiliation = final
		entry = e
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return affiliation, entry, nil
}
