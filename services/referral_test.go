package services

import (
	"testing"

	"marketpay/database"
	"marketpay/models"
)

func mkPendingAffiliation(t *testing.T, affiliateID, referredID, fee, commission string) *models.Affiliation {
	t.Helper()
	a, err := CreateAffiliation(testCtx(), CreateAffiliationCmd{
		AffiliateID:      affiliateID,
		ReferredUserID:   referredID,
		ApprovalFee:      dec(t, fee),
		CommissionAmount: dec(t, commission),
	})
	if err != nil {
		t.Fatalf("failed to create affiliation: %v", err)
	}
	return a
}

func TestApproveReferral(t *testing.T) {
	setupTestDB(t)

	admin := mkAdminWallet(t, "0.00")
	affWallet := mkWallet(t, "affiliate-1", "affiliate", "100.00")
	a := mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	approved, entry, err := ApproveReferral(testCtx(), a.ID, "affiliate-1")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ApprovalStatus != models.AffiliationStatusApproved {
		t.Fatalf("status = %s, want approved", approved.ApprovalStatus)
	}
	if approved.ApprovedAt == nil {
		t.Fatal("approved_at was not stamped")
	}
	if entry == nil || entry.RelatedEntityType != "affiliation_approval" {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}

	wantBalance(t, affWallet.ID, "90.00")
	wantBalance(t, admin.ID, "10.00")
}

func TestApproveReferralOwnership(t *testing.T) {
	setupTestDB(t)

	mkAdminWallet(t, "0.00")
	mkWallet(t, "affiliate-1", "affiliate", "100.00")
	a := mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	_, _, err := ApproveReferral(testCtx(), a.ID, "affiliate-2")
	wantKind(t, err, KindForbidden)

	_, _, err = ApproveReferral(testCtx(), 9999, "affiliate-1")
	wantKind(t, err, KindNotFound)
}

func TestApproveReferralInsufficientFee(t *testing.T) {
	setupTestDB(t)

	mkAdminWallet(t, "0.00")
	affWallet := mkWallet(t, "affiliate-1", "affiliate", "4.00")
	a := mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	_, _, err := ApproveReferral(testCtx(), a.ID, "affiliate-1")
	wantKind(t, err, KindInsufficientBalance)

	// All-or-nothing: the affiliation stays pending and no money moved.
	reloaded, err := getAffiliation(database.DB, a.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ApprovalStatus != models.AffiliationStatusPending {
		t.Fatalf("status = %s, want pending", reloaded.ApprovalStatus)
	}
	wantBalance(t, affWallet.ID, "4.00")
	if n := countLedgerEntries(t); n != 0 {
		t.Fatalf("ledger entries = %d, want 0", n)
	}
}

func TestApproveReferralTwice(t *testing.T) {
	setupTestDB(t)

	mkAdminWallet(t, "0.00")
	affWallet := mkWallet(t, "affiliate-1", "affiliate", "100.00")
	a := mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	if _, _, err := ApproveReferral(testCtx(), a.ID, "affiliate-1"); err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	_, _, err := ApproveReferral(testCtx(), a.ID, "affiliate-1")
	wantKind(t, err, KindInvalidState)

	wantBalance(t, affWallet.ID, "90.00")
	if n := countLedgerEntries(t); n != 1 {
		t.Fatalf("ledger entries = %d, want 1", n)
	}
}

func TestPayReferralCommission(t *testing.T) {
	setupTestDB(t)

	admin := mkAdminWallet(t, "50.00")
	affWallet := mkWallet(t, "affiliate-1", "affiliate", "100.00")
	a := mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	if _, _, err := ApproveReferral(testCtx(), a.ID, "affiliate-1"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	paid, entry, err := PayReferralCommission(testCtx(), a.ID)
	if err != nil {
		t.Fatalf("commission payout failed: %v", err)
	}
	if !paid.CommissionPaid {
		t.Fatal("commission_paid was not set")
	}
	if entry.RelatedEntityType != "affiliation_commission" {
		t.Fatalf("entry related type = %s", entry.RelatedEntityType)
	}

	// 100 - 10 fee + 5 commission; admin 50 + 10 fee - 5 commission.
	wantBalance(t, affWallet.ID, "95.00")
	wantBalance(t, admin.ID, "55.00")

	_, _, err = PayReferralCommission(testCtx(), a.ID)
	wantKind(t, err, KindInvalidState)
}

func TestCreateAffiliationDuplicateReferred(t *testing.T) {
	setupTestDB(t)

	mkPendingAffiliation(t, "affiliate-1", "user-9", "10.00", "5.00")

	_, err := CreateAffiliation(testCtx(), CreateAffiliationCmd{
		AffiliateID:      "affiliate-2",
		ReferredUserID:   "user-9",
		ApprovalFee:      dec(t, "10.00"),
		CommissionAmount: dec(t, "5.00"),
	})
	wantKind(t, err, KindConflict)
}
