package services

import (
	"testing"

	"marketpay/database"
	"marketpay/models"

	tasks "marketpay/task"
)

func TestTransferConservation(t *testing.T) {
	setupTestDB(t)

	src := mkWallet(t, "seller-1", "seller", "100.00")
	dst := mkWallet(t, "provider-1", "provider", "0.00")

	entry, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "40.00"),
		Related("order", 1), "test transfer")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	wantBalance(t, src.ID, "60.00")
	wantBalance(t, dst.ID, "40.00")

	if entry.TrxType != models.TrxTypeTransfer {
		t.Fatalf("trx type = %s, want transfer", entry.TrxType)
	}
	if !entry.SourceBalanceBefore.Sub(entry.SourceBalanceAfter).Equal(dec(t, "40.00")) {
		t.Fatalf("source delta mismatch: %s -> %s", entry.SourceBalanceBefore, entry.SourceBalanceAfter)
	}
	if !entry.DestinationBalanceAfter.Sub(entry.DestinationBalanceBefore).Equal(dec(t, "40.00")) {
		t.Fatalf("destination delta mismatch: %s -> %s", entry.DestinationBalanceBefore, entry.DestinationBalanceAfter)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	setupTestDB(t)

	src := mkWallet(t, "seller-1", "seller", "5.00")
	dst := mkWallet(t, "provider-1", "provider", "0.00")

	_, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "40.00"),
		Related("order", 1), "test transfer")
	wantKind(t, err, KindInsufficientBalance)

	wantBalance(t, src.ID, "5.00")
	wantBalance(t, dst.ID, "0.00")
	if n := countLedgerEntries(t); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}
}

func TestTransferSuspendedWallet(t *testing.T) {
	setupTestDB(t)

	src := mkWallet(t, "seller-1", "seller", "100.00")
	dst := mkWallet(t, "provider-1", "provider", "0.00")
	database.DB.Model(dst).Update("status", models.WalletStatusSuspended)

	_, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "10.00"),
		Related("order", 1), "test transfer")
	wantKind(t, err, KindInvalidState)
	wantBalance(t, src.ID, "100.00")
}

func TestTransferValidation(t *testing.T) {
	setupTestDB(t)

	src := mkWallet(t, "seller-1", "seller", "100.00")
	dst := mkWallet(t, "provider-1", "provider", "0.00")

	_, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "0"),
		Related("order", 1), "zero amount")
	wantKind(t, err, KindValidation)

	_, err = TransferFunds(database.DB, src.ID, src.ID, dec(t, "10.00"),
		Related("order", 2), "self transfer")
	wantKind(t, err, KindValidation)

	_, err = TransferFunds(database.DB, src.ID, 9999, dec(t, "10.00"),
		Related("order", 3), "missing destination")
	wantKind(t, err, KindNotFound)
}

func TestTransferIdempotentReplay(t *testing.T) {
	setupTestDB(t)

	src := mkWallet(t, "seller-1", "seller", "100.00")
	dst := mkWallet(t, "provider-1", "provider", "0.00")

	first, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "40.00"),
		Related("dispute", 7), "dispute refund")
	if err != nil {
		t.Fatalf("first transfer failed: %v", err)
	}

	second, err := TransferFunds(database.DB, src.ID, dst.ID, dec(t, "40.00"),
		Related("dispute", 7), "dispute refund retry")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if first.RefID != second.RefID {
		t.Fatalf("replay produced a new entry: %s vs %s", first.RefID, second.RefID)
	}
	wantBalance(t, src.ID, "60.00")
	wantBalance(t, dst.ID, "40.00")
	if n := countLedgerEntries(t); n != 1 {
		t.Fatalf("ledger entries = %d, want 1", n)
	}
}

func TestCreditAndDebit(t *testing.T) {
	setupTestDB(t)

	w := mkWallet(t, "seller-1", "seller", "0.00")

	if _, err := CreditWallet(database.DB, w.ID, dec(t, "50.00"),
		Related("recharge", 1), "external recharge"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	wantBalance(t, w.ID, "50.00")

	if _, err := DebitWallet(database.DB, w.ID, dec(t, "20.00"),
		Related("withdrawal", 1), "payout"); err != nil {
		t.Fatalf("debit failed: %v", err)
	}
	wantBalance(t, w.ID, "30.00")

	_, err := DebitWallet(database.DB, w.ID, dec(t, "100.00"),
		Related("withdrawal", 2), "over-debit")
	wantKind(t, err, KindInsufficientBalance)
	wantBalance(t, w.ID, "30.00")
}

func TestReconciliationReplay(t *testing.T) {
	setupTestDB(t)

	a := mkWallet(t, "seller-1", "seller", "0.00")
	b := mkWallet(t, "provider-1", "provider", "0.00")

	mustOK := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("ledger operation failed: %v", err)
		}
	}

	_, err := CreditWallet(database.DB, a.ID, dec(t, "100.00"), Related("recharge", 1), "fund")
	mustOK(err)
	_, err = TransferFunds(database.DB, a.ID, b.ID, dec(t, "35.50"), Related("order", 1), "purchase")
	mustOK(err)
	_, err = DebitWallet(database.DB, a.ID, dec(t, "14.50"), Related("withdrawal", 1), "payout")
	mustOK(err)
	_, err = TransferFunds(database.DB, b.ID, a.ID, dec(t, "5.00"), Related("dispute", 1), "partial refund")
	mustOK(err)

	for _, w := range []*models.Wallet{a, b} {
		replayed, err := tasks.ReplayBalance(w.ID)
		if err != nil {
			t.Fatalf("replay failed for wallet %d: %v", w.ID, err)
		}
		stored := reloadWallet(t, w.ID).Balance
		if !replayed.Equal(stored) {
			t.Fatalf("wallet %d drift: stored %s, replayed %s", w.ID, stored, replayed)
		}
	}
}

func TestCreateWalletIdempotentPerOwner(t *testing.T) {
	setupTestDB(t)

	first, err := CreateWallet(testCtx(), "seller-1", "seller", "USD")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := CreateWallet(testCtx(), "seller-1", "seller", "USD")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("owner got two wallets: %d and %d", first.ID, second.ID)
	}
	if first.WalletNumber == "" {
		t.Fatal("wallet number was not generated")
	}
}

func TestSuspendedWalletRejectsCredit(t *testing.T) {
	setupTestDB(t)

	w := mkWallet(t, "seller-1", "seller", "10.00")
	if _, err := SuspendWallet(testCtx(), w.ID); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}

	_, err := CreditWallet(database.DB, w.ID, dec(t, "5.00"), Related("recharge", 1), "late recharge")
	wantKind(t, err, KindInvalidState)
	wantBalance(t, w.ID, "10.00")
}
