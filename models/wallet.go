package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	WalletStatusActive    = "active"
	WalletStatusSuspended = "suspended"
)

const (
	TrxTypeCredit   = "credit"
	TrxTypeDebit    = "debit"
	TrxTypeTransfer = "transfer"
)

type Wallet struct {
	gorm.Model

	WalletNumber string          `gorm:"uniqueIndex;size:32" json:"wallet_number"`
	OwnerID      string          `gorm:"uniqueIndex;size:64" json:"owner_id"`
	OwnerRole    string          `gorm:"index;size:32" json:"owner_role"`
	Balance      decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"balance"`
	Currency     string          `gorm:"size:8" json:"currency"`
	Status       string          `gorm:"size:16;index;default:active" json:"status"`

	Transactions []LedgerTransaction `gorm:"foreignKey:SourceWalletID" json:"-"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) (err error) {
	if w.WalletNumber == "" {
		w.WalletNumber = "w" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	}
	return nil
}

func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}

// LedgerTransaction is an append-only record of one balance movement.
// Rows are never updated or deleted; the composite unique index on
// (related_entity_type, related_entity_id) guarantees at most one
// settlement per triggering domain event.
type LedgerTransaction struct {
	gorm.Model

	RefID   string `gorm:"size:36;uniqueIndex" json:"ref_id"`
	TrxType string `gorm:"size:16;index" json:"trx_type"`

	SourceWalletID      *uint `gorm:"index" json:"source_wallet_id,omitempty"`
	DestinationWalletID *uint `gorm:"index" json:"destination_wallet_id,omitempty"`

	Amount   decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Currency string          `gorm:"size:8" json:"currency"`

	SourceBalanceBefore      decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"source_balance_before"`
	SourceBalanceAfter       decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"source_balance_after"`
	DestinationBalanceBefore decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"destination_balance_before"`
	DestinationBalanceAfter  decimal.Decimal `gorm:"type:numeric(18,2);default:0" json:"destination_balance_after"`

	RelatedEntityType string `gorm:"size:32;index:idx_related_entity,unique" json:"related_entity_type"`
	RelatedEntityID   string `gorm:"size:64;index:idx_related_entity,unique" json:"related_entity_id"`

	Description string `gorm:"size:255" json:"description"`
}

func (t *LedgerTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.RefID == "" {
		t.RefID = uuid.New().String()
	}
	return nil
}
