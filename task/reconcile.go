package tasks

import (
	"log"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
)

// ReconcileWallets replays every wallet's ledger entries from zero and
// compares the result with the stored balance. Any drift means a
// mutation bypassed the transfer engine and needs investigation.
func ReconcileWallets() {
	var wallets []models.Wallet
	if err := database.DB.Find(&wallets).Error; err != nil {
		log.Println("❌ Reconciliation failed to list wallets:", err)
		return
	}

	drifted := 0
	for _, w := range wallets {
		replayed, err := ReplayBalance(w.ID)
		if err != nil {
			log.Printf("❌ Reconciliation failed for wallet %d: %v", w.ID, err)
			continue
		}
		if !replayed.Equal(w.Balance) {
			drifted++
			log.Printf("⚠️  Wallet %d drift: stored %s, replayed %s", w.ID, w.Balance, replayed)
		}
	}

	if drifted == 0 {
		log.Printf("✅ Reconciled %d wallets, no drift", len(wallets))
	} else {
		log.Printf("❌ Reconciliation found drift in %d of %d wallets", drifted, len(wallets))
	}
}

// ReplayBalance folds a wallet's ledger entries, oldest first, from a
// zero starting balance.
func ReplayBalance(walletID uint) (decimal.Decimal, error) {
	var entries []models.LedgerTransaction
	err := database.DB.
		Where("source_wallet_id = ? OR destination_wallet_id = ?", walletID, walletID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, e := range entries {
		if e.SourceWalletID != nil && *e.SourceWalletID == walletID {
			balance = balance.Sub(e.Amount)
		}
		if e.DestinationWalletID != nil && *e.DestinationWalletID == walletID {
			balance = balance.Add(e.Amount)
		}
	}
	return balance, nil
}
