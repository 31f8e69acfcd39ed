package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DepositStatusCompleted is the only status deposits carry today; the column
// exists so commission rows stay anchored to an auditable triggering event.
const DepositStatusCompleted = "completed"

// Deposit records a completed top-up by a user. Immutable after creation.
type Deposit struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User            `gorm:"foreignKey:UserID" json:"-"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Status    string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate assigns a UUID if one wasn't set
func (d *Deposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
