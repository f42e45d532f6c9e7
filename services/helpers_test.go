package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"marketpay/database"
	"marketpay/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package database for a fresh in-memory SQLite
// instance. The shared-cache name keeps the database alive across the
// pool's connections for the duration of the test.
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = prev
	})
}

func mkWallet(t *testing.T, ownerID, role, balance string) *models.Wallet {
	t.Helper()

	w := models.Wallet{
		OwnerID:   ownerID,
		OwnerRole: role,
		Balance:   dec(t, balance),
		Currency:  "USD",
		Status:    models.WalletStatusActive,
	}
	if err := database.DB.Create(&w).Error; err != nil {
		t.Fatalf("failed to create wallet for %s: %v", ownerID, err)
	}
	return &w
}

func mkAdminWallet(t *testing.T, balance string) *models.Wallet {
	t.Helper()
	t.Setenv("ADMIN_ACCOUNT_ID", "admin-account")
	return mkWallet(t, "admin-account", "admin", balance)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func reloadWallet(t *testing.T, id uint) *models.Wallet {
	t.Helper()
	var w models.Wallet
	if err := database.DB.First(&w, id).Error; err != nil {
		t.Fatalf("failed to reload wallet %d: %v", id, err)
	}
	return &w
}

func countLedgerEntries(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := database.DB.Model(&models.LedgerTransaction{}).Count(&n).Error; err != nil {
		t.Fatalf("failed to count ledger entries: %v", err)
	}
	return n
}

func wantBalance(t *testing.T, walletID uint, expected string) {
	t.Helper()
	w := reloadWallet(t, walletID)
	if !w.Balance.Equal(dec(t, expected)) {
		t.Fatalf("wallet %d balance = %s, want %s", walletID, w.Balance, expected)
	}
}

func wantKind(t *testing.T, err error, kind string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if KindOf(err) != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, KindOf(err), err)
	}
}

func testCtx() context.Context {
	return context.Background()
}
