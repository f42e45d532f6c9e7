package services

import (
	"testing"

	"marketpay/models"
)

func mkReviewedDispute(t *testing.T, orderAmount string) *models.Dispute {
	t.Helper()

	d, err := OpenDispute(testCtx(), "seller-1", OpenDisputeCmd{
		OrderID:     "order-1",
		OrderAmount: dec(t, orderAmount),
		Currency:    "USD",
		SellerID:    "seller-1",
		ProviderID:  "provider-1",
		Reason:      "goods not delivered",
	})
	if err != nil {
		t.Fatalf("failed to open dispute: %v", err)
	}
	d, err = AssignConciliator(testCtx(), d.ID, "conciliator-1")
	if err != nil {
		t.Fatalf("failed to assign conciliator: %v", err)
	}
	return d
}

func TestResolveDisputePartialRefund(t *testing.T) {
	setupTestDB(t)

	seller := mkWallet(t, "seller-1", "seller", "0.00")
	provider := mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	resolved, entry, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionPartialRefund,
		Resolution:     "both parties partially at fault",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != models.DisputeStatusResolved {
		t.Fatalf("status = %s, want resolved", resolved.Status)
	}
	if resolved.EffectiveStatus != models.EffectiveStatusPartialRefund {
		t.Fatalf("effective status = %s", resolved.EffectiveStatus)
	}
	if resolved.ResolvedAt == nil {
		t.Fatal("resolved_at was not stamped")
	}
	if !entry.Amount.Equal(dec(t, "20.00")) {
		t.Fatalf("refund amount = %s, want 20.00", entry.Amount)
	}

	wantBalance(t, seller.ID, "20.00")
	wantBalance(t, provider.ID, "80.00")
}

func TestResolveDisputeFullRefund(t *testing.T) {
	setupTestDB(t)

	seller := mkWallet(t, "seller-1", "seller", "0.00")
	provider := mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	resolved, entry, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionRefundSeller,
		Resolution:     "provider failed to deliver",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.EffectiveStatus != models.EffectiveStatusRefunded {
		t.Fatalf("effective status = %s", resolved.EffectiveStatus)
	}
	if !entry.Amount.Equal(dec(t, "40.00")) {
		t.Fatalf("refund amount = %s, want 40.00", entry.Amount)
	}
	wantBalance(t, seller.ID, "40.00")
	wantBalance(t, provider.ID, "60.00")
}

func TestResolveDisputeNoMovementOutcomes(t *testing.T) {
	setupTestDB(t)

	mkWallet(t, "seller-1", "seller", "0.00")
	provider := mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	resolved, entry, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionFavorProvider,
		Resolution:     "delivery proven",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected no ledger entry, got %+v", entry)
	}
	if resolved.EffectiveStatus != models.EffectiveStatusCompleted {
		t.Fatalf("effective status = %s", resolved.EffectiveStatus)
	}
	wantBalance(t, provider.ID, "100.00")
	if n := countLedgerEntries(t); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}
}

// A refund the provider cannot cover must abort the whole resolution.
func TestResolveDisputeInsufficientProviderBalance(t *testing.T) {
	setupTestDB(t)

	mkWallet(t, "seller-1", "seller", "0.00")
	provider := mkWallet(t, "provider-1", "provider", "5.00")
	d := mkReviewedDispute(t, "40.00")

	_, _, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionRefundSeller,
		Resolution:     "provider failed to deliver",
	})
	wantKind(t, err, KindInsufficientBalance)

	reloaded, err := GetDispute(testCtx(), d.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != models.DisputeStatusUnderReview {
		t.Fatalf("status = %s, want under_review", reloaded.Status)
	}
	wantBalance(t, provider.ID, "5.00")
	if n := countLedgerEntries(t); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}
}

func TestResolveDisputeExactlyOnce(t *testing.T) {
	setupTestDB(t)

	mkWallet(t, "seller-1", "seller", "0.00")
	mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	if _, _, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionRefundSeller,
		Resolution:     "provider failed to deliver",
	}); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	_, _, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionRefundSeller,
		Resolution:     "retry",
	})
	wantKind(t, err, KindInvalidState)

	if n := countLedgerEntries(t); n != 1 {
		t.Fatalf("ledger entries = %d, want 1", n)
	}
}

func TestResolveDisputeAuthorization(t *testing.T) {
	setupTestDB(t)

	mkWallet(t, "seller-1", "seller", "0.00")
	mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	_, _, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-2",
		ResolutionType: models.ResolutionNoAction,
	})
	wantKind(t, err, KindForbidden)

	_, _, err = ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: "split_80_20",
	})
	wantKind(t, err, KindValidation)
}

func TestOpenDisputeRequiresParty(t *testing.T) {
	setupTestDB(t)

	_, err := OpenDispute(testCtx(), "stranger", OpenDisputeCmd{
		OrderID:     "order-1",
		OrderAmount: dec(t, "40.00"),
		SellerID:    "seller-1",
		ProviderID:  "provider-1",
	})
	wantKind(t, err, KindForbidden)
}

func TestCloseDispute(t *testing.T) {
	setupTestDB(t)

	mkWallet(t, "seller-1", "seller", "0.00")
	mkWallet(t, "provider-1", "provider", "100.00")
	d := mkReviewedDispute(t, "40.00")

	_, err := CloseDispute(testCtx(), d.ID)
	wantKind(t, err, KindInvalidState)

	if _, _, err := ResolveDispute(testCtx(), ResolveDisputeCmd{
		DisputeID:      d.ID,
		ConciliatorID:  "conciliator-1",
		ResolutionType: models.ResolutionNoAction,
	}); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	closed, err := CloseDispute(testCtx(), d.ID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Status != models.DisputeStatusClosed {
		t.Fatalf("status = %s, want closed", closed.Status)
	}
}
