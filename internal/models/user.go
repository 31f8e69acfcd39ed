package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a registered referral account. The referral edge is kept
// as a code reference (ReferredByCode), not a user id: a user joins under
// whatever code they were handed, and the edge is immutable after signup.
type User struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Email          string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	ReferralCode   string          `gorm:"type:varchar(6);uniqueIndex;not null" json:"referral_code"`
	ReferredByCode *string         `gorm:"type:varchar(6);index" json:"referred_by_code,omitempty"`
	Balance        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate assigns a UUID if one wasn't set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
