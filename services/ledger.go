package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelatedEntity tags every ledger movement with the domain event that
// caused it. The pair is the idempotency key: one settlement per event.
type RelatedEntity struct {
	Type string
	ID   string
}

func Related(entityType string, id uint) RelatedEntity {
	return RelatedEntity{Type: entityType, ID: strconv.FormatUint(uint64(id), 10)}
}

func defaultTxTimeout() time.Duration {
	if v := os.Getenv("LEDGER_TX_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 5 * time.Second
}

// withTx runs fn as one serializable unit against the ledger store.
// A deadline overrun aborts cleanly with no partial writes and is
// surfaced as a retryable Conflict.
func withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTxTimeout())
	defer cancel()

	err := database.DB.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Conflict("ledger transaction timed out, retry")
	}
	return err
}

// lockForUpdate takes a row lock on supporting dialects. SQLite has no
// row locks and serializes writers itself.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockWalletByID(tx *gorm.DB, id uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := lockForUpdate(tx).First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("wallet %d not found", id)
		}
		return nil, Internal("failed to load wallet", err)
	}
	return &w, nil
}

// lockWalletPair locks both wallets of a transfer in ascending id
// order so two opposing transfers on the same pair cannot deadlock.
func lockWalletPair(tx *gorm.DB, sourceID, destID uint) (*models.Wallet, *models.Wallet, error) {
	first, second := sourceID, destID
	if destID < sourceID {
		first, second = destID, sourceID
	}

	a, err := lockWalletByID(tx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := lockWalletByID(tx, second)
	if err != nil {
		return nil, nil, err
	}

	if a.ID == sourceID {
		return a, b, nil
	}
	return b, a, nil
}

func existingSettlement(tx *gorm.DB, related RelatedEntity) (*models.LedgerTransaction, error) {
	var entry models.LedgerTransaction
	err := tx.
		Where("related_entity_type = ? AND related_entity_id = ?", related.Type, related.ID).
		First(&entry).Error
	if err == nil {
		return &entry, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, Internal("failed to check existing settlement", err)
}

// TransferFunds moves amount from source to destination as one atomic
// unit: both balances and the appended LedgerTransaction commit
// together or not at all. Replaying the same related entity returns
// the already-recorded entry with no further movement.
func TransferFunds(tx *gorm.DB, sourceWalletID, destWalletID uint, amount decimal.Decimal, related RelatedEntity, description string) (*models.LedgerTransaction, error) {
	if !amount.IsPositive() {
		return nil, Validation("transfer amount must be positive")
	}
	if sourceWalletID == destWalletID {
		return nil, Validation("source and destination wallet must differ")
	}

	if existing, err := existingSettlement(tx, related); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	source, dest, err := lockWalletPair(tx, sourceWalletID, destWalletID)
	if err != nil {
		return nil, err
	}
	if !source.IsActive() {
		return nil, InvalidState("source wallet %d is suspended", source.ID)
	}
	if !dest.IsActive() {
		return nil, InvalidState("destination wallet %d is suspended", dest.ID)
	}
	if source.Balance.LessThan(amount) {
		return nil, InsufficientBalance("wallet %d balance %s is below %s", source.ID, source.Balance, amount)
	}

	sourceBefore := source.Balance
	destBefore := dest.Balance
	source.Balance = source.Balance.Sub(amount)
	dest.Balance = dest.Balance.Add(amount)

	if err := tx.Save(source).Error; err != nil {
		return nil, Internal("failed to update source wallet", err)
	}
	if err := tx.Save(dest).Error; err != nil {
		return nil, Internal("failed to update destination wallet", err)
	}

	entry := models.LedgerTransaction{
		TrxType:                  models.TrxTypeTransfer,
		SourceWalletID:           &source.ID,
		DestinationWalletID:      &dest.ID,
		Amount:                   amount,
		Currency:                 source.Currency,
		SourceBalanceBefore:      sourceBefore,
		SourceBalanceAfter:       source.Balance,
		DestinationBalanceBefore: destBefore,
		DestinationBalanceAfter:  dest.Balance,
		RelatedEntityType:        related.Type,
		RelatedEntityID:          related.ID,
		Description:              description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("settlement for %s %s already recorded", related.Type, related.ID)
		}
		return nil, Internal("failed to append ledger transaction", err)
	}

	return &entry, nil
}

// CreditWallet is the single-sided variant for external money landing
// in a wallet (e.g. a validated recharge). No counter-wallet exists.
func CreditWallet(tx *gorm.DB, walletID uint, amount decimal.Decimal, related RelatedEntity, description string) (*models.LedgerTransaction, error) {
	if !amount.IsPositive() {
		return nil, Validation("credit amount must be positive")
	}

	if existing, err := existingSettlement(tx, related); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	w, err := lockWalletByID(tx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive() {
		return nil, InvalidState("wallet %d is suspended", w.ID)
	}

	before := w.Balance
	w.Balance = w.Balance.Add(amount)
	if err := tx.Save(w).Error; err != nil {
		return nil, Internal("failed to update wallet balance", err)
	}

	entry := models.LedgerTransaction{
		TrxType:                  models.TrxTypeCredit,
		DestinationWalletID:      &w.ID,
		Amount:                   amount,
		Currency:                 w.Currency,
		DestinationBalanceBefore: before,
		DestinationBalanceAfter:  w.Balance,
		RelatedEntityType:        related.Type,
		RelatedEntityID:          related.ID,
		Description:              description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, Internal("failed to append ledger transaction", err)
	}
	return &entry, nil
}

// DebitWallet is the single-sided variant for money leaving the
// platform (e.g. a completed withdrawal payout).
func DebitWallet(tx *gorm.DB, walletID uint, amount decimal.Decimal, related RelatedEntity, description string) (*models.LedgerTransaction, error) {
	if !amount.IsPositive() {
		return nil, Validation("debit amount must be positive")
	}

	if existing, err := existingSettlement(tx, related); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	w, err := lockWalletByID(tx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.IsActive() {
		return nil, InvalidState("wallet %d is suspended", w.ID)
	}
	if w.Balance.LessThan(amount) {
		return nil, InsufficientBalance("wallet %d balance %s is below %s", w.ID, w.Balance, amount)
	}

	before := w.Balance
	w.Balance = w.Balance.Sub(amount)
	if err := tx.Save(w).Error; err != nil {
		return nil, Internal("failed to update wallet balance", err)
	}

	entry := models.LedgerTransaction{
		TrxType:             models.TrxTypeDebit,
		SourceWalletID:      &w.ID,
		Amount:              amount,
		Currency:            w.Currency,
		SourceBalanceBefore: before,
		SourceBalanceAfter:  w.Balance,
		RelatedEntityType:   related.Type,
		RelatedEntityID:     related.ID,
		Description:         description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, Internal("failed to append ledger transaction", err)
	}
	return &entry, nil
}

func walletByOwner(tx *gorm.DB, ownerID string) (*models.Wallet, error) {
	var w models.Wallet
	if err := tx.Where("owner_id = ?", ownerID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("no wallet for owner %s", ownerID)
		}
		return nil, Internal("failed to load wallet", err)
	}
	return &w, nil
}

// adminWallet resolves the central platform account configured via
// ADMIN_ACCOUNT_ID.
func adminWallet(tx *gorm.DB) (*models.Wallet, error) {
	adminID := os.Getenv("ADMIN_ACCOUNT_ID")
	if adminID == "" {
		return nil, Internal("ADMIN_ACCOUNT_ID is not configured", fmt.Errorf("missing env"))
	}
	return walletByOwner(tx, adminID)
}
