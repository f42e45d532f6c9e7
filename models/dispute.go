package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusClosed      = "closed"
)

const (
	ResolutionRefundSeller  = "refund_seller"
	ResolutionPartialRefund = "partial_refund"
	ResolutionFavorProvider = "favor_provider"
	ResolutionNoAction      = "no_action"
)

// Effective order status written at resolution time.
const (
	EffectiveStatusRefunded      = "refunded"
	EffectiveStatusPartialRefund = "partial_refund"
	EffectiveStatusCompleted     = "completed"
	EffectiveStatusUnchanged     = "unchanged"
)

type Dispute struct {
	gorm.Model

	OrderID     string          `gorm:"index;size:64" json:"order_id"`
	OrderAmount decimal.Decimal `gorm:"type:numeric(18,2)" json:"order_amount"`
	Currency    string          `gorm:"size:8" json:"currency"`

	SellerID      string `gorm:"index;size:64" json:"seller_id"`
	ProviderID    string `gorm:"index;size:64" json:"provider_id"`
	ConciliatorID string `gorm:"index;size:64" json:"conciliator_id,omitempty"`

	Status          string `gorm:"size:16;index;default:open" json:"status"`
	Reason          string `gorm:"size:255" json:"reason"`
	Resolution      string `gorm:"size:255" json:"resolution,omitempty"`
	ResolutionType  string `gorm:"size:16" json:"resolution_type,omitempty"`
	EffectiveStatus string `gorm:"size:16" json:"effective_status,omitempty"`

	// ResolutionDetail keeps the audit trail of the financial outcome
	// (refund amount, percent applied, ledger ref).
	ResolutionDetail datatypes.JSON `gorm:"type:jsonb" json:"resolution_detail,omitempty"`

	AssignedAt *time.Time `json:"assigned_at,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
