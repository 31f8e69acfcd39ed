package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Earning statuses. An earning is written as pending and flips to claimed
// exactly once; rows are never deleted.
const (
	EarningStatusPending = "pending"
	EarningStatusClaimed = "claimed"
)

// ReferralEarning is a commission ledger entry: a tier-percentage share of a
// referred user's deposit owed to an ancestor in the referral chain.
type ReferralEarning struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ReferrerID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_referral_earnings_referrer_status" json:"referrer_id"`
	Referrer       User            `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferredUserID uuid.UUID       `gorm:"type:uuid;not null" json:"referred_user_id"`
	ReferredUser   User            `gorm:"foreignKey:ReferredUserID" json:"-"`
	DepositID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"deposit_id"`
	Deposit        Deposit         `gorm:"foreignKey:DepositID" json:"-"`
	Level          int             `gorm:"not null" json:"level"`
	Percentage     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status         string          `gorm:"type:varchar(20);not null;default:'pending';index:idx_referral_earnings_referrer_status" json:"status"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ClaimedAt      *time.Time      `json:"claimed_at,omitempty"`
}

// BeforeCreate assigns a UUID if one wasn't set
func (e *ReferralEarning) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
