package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

type Withdrawal struct {
	gorm.Model

	WalletID      uint            `gorm:"index" json:"wallet_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2)" json:"amount"`
	Currency      string          `gorm:"size:8" json:"currency"`
	PaymentMethod string          `gorm:"size:32" json:"payment_method"`
	Status        string          `gorm:"size:16;index;default:pending" json:"status"`

	RequestedAt time.Time  `json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	ProcessedBy string     `gorm:"size:64" json:"processed_by,omitempty"`

	RejectionReason string `gorm:"size:255" json:"rejection_reason,omitempty"`
	// FailureReason records why a completion attempt bounced the
	// withdrawal back to pending review.
	FailureReason string `gorm:"size:255" json:"failure_reason,omitempty"`

	// PayoutProof is the opaque confirmation attachment from the
	// external payout channel.
	PayoutProof datatypes.JSON `gorm:"type:jsonb" json:"payout_proof,omitempty"`
}
