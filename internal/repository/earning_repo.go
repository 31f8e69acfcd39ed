package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierlink/backend/internal/models"
	"gorm.io/gorm"
)

// LevelTotal is an aggregate of earnings grouped by referral level
type LevelTotal struct {
	Level int             `json:"level"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// EarningRepository provides storage access for the commission ledger
type EarningRepository struct {
	db *gorm.DB
}

// NewEarningRepository creates a new earning repository
func NewEarningRepository(db *gorm.DB) *EarningRepository {
	return &EarningRepository{db: db}
}

// CreateBatch persists a set of ledger entries produced by one deposit
func (r *EarningRepository) CreateBatch(earnings []models.ReferralEarning) error {
	if len(earnings) == 0 {
		return nil
	}
	if err := r.db.Create(&earnings).Error; err != nil {
		return fmt.Errorf("error creating earnings: %w", err)
	}
	return nil
}

// SumByStatus returns the total earning amount for a referrer in one status
func (r *EarningRepository) SumByStatus(referrerID uuid.UUID, status string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&models.ReferralEarning{}).
		Where("referrer_id = ? AND status = ?", referrerID, status).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error summing earnings: %w", err)
	}
	return total, nil
}

// TotalsByLevel returns per-level earning aggregates for a referrer across
// all statuses, ordered by level.
func (r *EarningRepository) TotalsByLevel(referrerID uuid.UUID) ([]LevelTotal, error) {
	var totals []LevelTotal
	err := r.db.Model(&models.ReferralEarning{}).
		Select("level, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("referrer_id = ?", referrerID).
		Group("level").
		Order("level ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("error aggregating earnings by level: %w", err)
	}
	return totals, nil
}

// ListRecent returns the referrer's most recent ledger entries, newest first,
// with the counterparty preloaded for display.
func (r *EarningRepository) ListRecent(referrerID uuid.UUID, limit int) ([]models.ReferralEarning, error) {
	var earnings []models.ReferralEarning
	err := r.db.Where("referrer_id = ?", referrerID).
		Preload("ReferredUser").
		Order("created_at DESC").
		Limit(limit).
		Find(&earnings).Error
	if err != nil {
		return nil, fmt.Errorf("error listing earnings: %w", err)
	}
	return earnings, nil
}

// SettlePending claims every pending ledger entry for a referrer in a single
// database transaction: the rows flip to claimed and the referrer's balance
// is incremented by the pending sum, all-or-nothing. The status transition is
// a conditional update, so a row already claimed by a concurrent settle is
// never counted twice. Returns the claimed amount and the new balance.
func (r *EarningRepository) SettlePending(referrerID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var claimed, newBalance decimal.Decimal

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pending []models.ReferralEarning
		if err := tx.Where("referrer_id = ? AND status = ?", referrerID, models.EarningStatusPending).
			Find(&pending).Error; err != nil {
			return fmt.Errorf("error loading pending earnings: %w", err)
		}

		total := decimal.Zero
		for _, e := range pending {
			total = total.Add(e.Amount)
		}
		if !total.IsPositive() {
			return ErrNothingToClaim
		}

		now := time.Now()
		res := tx.Model(&models.ReferralEarning{}).
			Where("referrer_id = ? AND status = ?", referrerID, models.EarningStatusPending).
			Updates(map[string]interface{}{
				"status":     models.EarningStatusClaimed,
				"claimed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("error claiming earnings: %w", res.Error)
		}
		if res.RowsAffected != int64(len(pending)) {
			// Lost a race against another settle; roll back rather than
			// credit an amount that no longer matches the flipped rows.
			return fmt.Errorf("pending earnings changed during settlement")
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", referrerID).
			Update("balance", gorm.Expr("balance + ?", total)).Error; err != nil {
			return fmt.Errorf("error crediting balance: %w", err)
		}

		var user models.User
		if err := tx.Where("id = ?", referrerID).First(&user).Error; err != nil {
			return fmt.Errorf("error reloading user: %w", err)
		}

		claimed = total
		newBalance = user.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return claimed, newBalance, nil
}
