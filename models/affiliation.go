package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AffiliationStatusPending  = "pending"
	AffiliationStatusApproved = "approved"
)

type Affiliation struct {
	gorm.Model

	AffiliateID    string `gorm:"index;size:64" json:"affiliate_id"`
	ReferredUserID string `gorm:"uniqueIndex;size:64" json:"referred_user_id"`

	ApprovalStatus   string          `gorm:"size:16;index;default:pending" json:"approval_status"`
	ApprovalFee      decimal.Decimal `gorm:"type:numeric(18,2)" json:"approval_fee"`
	CommissionAmount decimal.Decimal `gorm:"type:numeric(18,2)" json:"commission_amount"`
	CommissionPaid   bool            `gorm:"default:false" json:"commission_paid"`

	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}
