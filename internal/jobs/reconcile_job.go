package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/shopspring/decimal"
	"github.com/tierlink/backend/internal/models"
	"gorm.io/gorm"
)

// ReconcileJob sweeps the commission ledger and checks that every user's
// settled balance equals the sum of their claimed entries. Claim settlement
// runs in a single transaction, so drift here means either out-of-band data
// edits or a bug; the job only reports, it never repairs.
type ReconcileJob struct {
	db *gorm.DB
}

// NewReconcileJob creates a new reconciliation job
func NewReconcileJob(db *gorm.DB) *ReconcileJob {
	return &ReconcileJob{db: db}
}

// Run performs one reconciliation sweep
func (j *ReconcileJob) Run() {
	start := time.Now()
	var checked, drifted int

	var users []models.User
	result := j.db.FindInBatches(&users, 200, func(tx *gorm.DB, batch int) error {
		for _, user := range users {
			var claimed decimal.Decimal
			err := j.db.Model(&models.ReferralEarning{}).
				Where("referrer_id = ? AND status = ?", user.ID, models.EarningStatusClaimed).
				Select("COALESCE(SUM(amount), 0)").
				Row().Scan(&claimed)
			if err != nil {
				log.Printf("reconcile: failed to sum claimed earnings for %s: %v", user.ID, err)
				continue
			}
			checked++
			if !claimed.Equal(user.Balance) {
				drifted++
				log.Printf("reconcile: balance drift for %s: balance=%s claimed=%s",
					user.ID, user.Balance, claimed)
			}
		}
		return nil
	})
	if result.Error != nil {
		log.Printf("reconcile: sweep failed: %v", result.Error)
		return
	}

	log.Printf("reconcile: checked %d users, %d drifted, took %s", checked, drifted, time.Since(start))
}

// ScheduleReconciliation registers the ledger sweep on the scheduler.
// A non-positive interval disables it.
func ScheduleReconciliation(scheduler *gocron.Scheduler, db *gorm.DB, intervalMins int) {
	if intervalMins <= 0 {
		log.Println("ledger reconciliation disabled")
		return
	}
	job := NewReconcileJob(db)
	if _, err := scheduler.Every(intervalMins).Minutes().Do(job.Run); err != nil {
		log.Printf("failed to schedule reconciliation: %v", err)
		return
	}
	log.Printf("ledger reconciliation scheduled every %d minutes", intervalMins)
}
