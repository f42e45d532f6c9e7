package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RechargeStatusPending   = "pending"
	RechargeStatusValidated = "validated"
)

const (
	FundEntryStatusPending     = "pending"
	FundEntryStatusTransferred = "transferred"
)

const (
	ValidatorTransferStatusPending   = "pending"
	ValidatorTransferStatusApproved  = "approved"
	ValidatorTransferStatusRejected  = "rejected"
	ValidatorTransferStatusCompleted = "completed"
)

// Recharge is an external cash-in confirmed by a country-scoped
// payment validator. The capture proof itself lives upstream; the
// ledger only sees the validated amount.
type Recharge struct {
	gorm.Model

	UserID      string          `gorm:"index;size:64" json:"user_id"`
	ValidatorID string          `gorm:"index;size:64" json:"validator_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Currency    string          `gorm:"size:8" json:"currency"`
	Status      string          `gorm:"size:16;index;default:pending" json:"status"`
	ValidatedAt *time.Time      `json:"validated_at,omitempty"`
}

type ValidatorFundEntry struct {
	gorm.Model

	ValidatorID string          `gorm:"index;size:64" json:"validator_id"`
	RechargeID  uint            `gorm:"uniqueIndex" json:"recharge_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Status      string          `gorm:"size:16;index;default:pending" json:"status"`
	TransferID  *uint           `gorm:"index" json:"transfer_id,omitempty"`
}

type ValidatorAdminTransfer struct {
	gorm.Model

	ValidatorID      string          `gorm:"index;size:64" json:"validator_id"`
	TotalAmount      decimal.Decimal `gorm:"type:numeric(18,2)" json:"total_amount"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(18,2)" json:"commission_amount"`
	TransferAmount   decimal.Decimal `gorm:"type:numeric(18,2)" json:"transfer_amount"`
	PaymentMethod    string          `gorm:"size:32" json:"payment_method"`
	Status           string          `gorm:"size:16;index;default:pending" json:"status"`

	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessedBy     string     `gorm:"size:64" json:"processed_by,omitempty"`
	RejectionReason string     `gorm:"size:255" json:"rejection_reason,omitempty"`

	FundEntries []ValidatorFundEntry `gorm:"foreignKey:TransferID" json:"fund_entries,omitempty"`
}
