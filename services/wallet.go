package services

import (
	"context"

	"marketpay/database"
	"marketpay/models"

	"gorm.io/gorm"
)

// CreateWallet provisions the single wallet an owner gets at
// onboarding. A second call for the same owner returns the existing
// wallet unchanged.
func CreateWallet(ctx context.Context, ownerID, ownerRole, currency string) (*models.Wallet, error) {
	if ownerID == "" {
		return nil, Validation("owner id is required")
	}
	if currency == "" {
		return nil, Validation("currency is required")
	}

	var wallet *models.Wallet
	err := withTx(ctx, func(tx *gorm.DB) error {
		existing, err := walletByOwner(tx, ownerID)
		if err == nil {
			wallet = existing
			return nil
		}
		if !IsKind(err, KindNotFound) {
			return err
		}

		w := models.Wallet{
			OwnerID:   ownerID,
			OwnerRole: ownerRole,
			Currency:  currency,
			Status:    models.WalletStatusActive,
		}
		if err := tx.Create(&w).Error; err != nil {
			return Internal("failed to create wallet", err)
		}
		wallet = &w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func GetWalletByOwner(ctx context.Context, ownerID string) (*models.Wallet, error) {
	return walletByOwner(database.DB.WithContext(ctx), ownerID)
}

// ListWalletTransactions returns the wallet's ledger entries oldest
// first, the order reconciliation replays them in.
func ListWalletTransactions(ctx context.Context, walletID uint) ([]models.LedgerTransaction, error) {
	var entries []models.LedgerTransaction
	err := database.DB.WithContext(ctx).
		Where("source_wallet_id = ? OR destination_wallet_id = ?", walletID, walletID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, Internal("failed to list wallet transactions", err)
	}
	return entries, nil
}

// SuspendWallet soft-disables a wallet. Wallets are never deleted.
func SuspendWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	var wallet *models.Wallet
	err := withTx(ctx, func(tx *gorm.DB) error {
		w, err := lockWalletByID(tx, walletID)
		if err != nil {
			return err
		}
		w.Status = models.WalletStatusSuspended
		if err := tx.Save(w).Error; err != nil {
			return Internal("failed to suspend wallet", err)
		}
		wallet = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}
