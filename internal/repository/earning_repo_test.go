package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tierlink/backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Deposit{}, &models.ReferralEarning{}))
	return db
}

// seedLedger creates a referrer, a referred user, one deposit and the given
// ledger entries for it.
func seedLedger(t *testing.T, db *gorm.DB, amounts []string, statuses []string) (*models.User, *models.User) {
	t.Helper()
	require.Equal(t, len(amounts), len(statuses))

	referrer := &models.User{Email: "referrer@example.com", ReferralCode: "111111", Balance: decimal.Zero}
	require.NoError(t, db.Create(referrer).Error)

	code := referrer.ReferralCode
	referred := &models.User{Email: "referred@example.com", ReferralCode: "222222", ReferredByCode: &code, Balance: decimal.Zero}
	require.NoError(t, db.Create(referred).Error)

	deposit := &models.Deposit{UserID: referred.ID, Amount: decimal.NewFromInt(100), Status: models.DepositStatusCompleted}
	require.NoError(t, db.Create(deposit).Error)

	for i, amount := range amounts {
		earning := &models.ReferralEarning{
			ReferrerID:     referrer.ID,
			ReferredUserID: referred.ID,
			DepositID:      deposit.ID,
			Level:          i + 1,
			Percentage:     decimal.NewFromInt(1),
			Amount:         decimal.RequireFromString(amount),
			Status:         statuses[i],
		}
		require.NoError(t, db.Create(earning).Error)
	}
	return referrer, referred
}

func TestSettlePendingClaimsAtomically(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEarningRepository(db)

	referrer, _ := seedLedger(t, db,
		[]string{"16.00", "3.00", "5.00"},
		[]string{models.EarningStatusPending, models.EarningStatusPending, models.EarningStatusClaimed},
	)

	claimed, newBalance, err := repo.SettlePending(referrer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(19).Equal(claimed), "claimed %s", claimed)
	assert.True(t, decimal.NewFromInt(19).Equal(newBalance), "balance %s", newBalance)

	var pendingCount int64
	require.NoError(t, db.Model(&models.ReferralEarning{}).
		Where("referrer_id = ? AND status = ?", referrer.ID, models.EarningStatusPending).
		Count(&pendingCount).Error)
	assert.Zero(t, pendingCount)

	var flipped []models.ReferralEarning
	require.NoError(t, db.Where("referrer_id = ? AND status = ?", referrer.ID, models.EarningStatusClaimed).
		Find(&flipped).Error)
	assert.Len(t, flipped, 3)

	var user models.User
	require.NoError(t, db.Where("id = ?", referrer.ID).First(&user).Error)
	assert.True(t, decimal.NewFromInt(19).Equal(user.Balance), "balance %s", user.Balance)
}

func TestSettlePendingWithNothingToClaim(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEarningRepository(db)

	referrer, _ := seedLedger(t, db,
		[]string{"5.00"},
		[]string{models.EarningStatusClaimed},
	)

	_, _, err := repo.SettlePending(referrer.ID)
	assert.ErrorIs(t, err, ErrNothingToClaim)
}

func TestSumByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEarningRepository(db)

	referrer, _ := seedLedger(t, db,
		[]string{"16.00", "3.00", "5.00"},
		[]string{models.EarningStatusPending, models.EarningStatusPending, models.EarningStatusClaimed},
	)

	pending, err := repo.SumByStatus(referrer.ID, models.EarningStatusPending)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(19).Equal(pending), "pending %s", pending)

	claimed, err := repo.SumByStatus(referrer.ID, models.EarningStatusClaimed)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(claimed), "claimed %s", claimed)
}

func TestTotalsByLevel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEarningRepository(db)

	referrer, _ := seedLedger(t, db,
		[]string{"16.00", "3.00"},
		[]string{models.EarningStatusPending, models.EarningStatusClaimed},
	)

	totals, err := repo.TotalsByLevel(referrer.ID)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, 1, totals[0].Level)
	assert.EqualValues(t, 1, totals[0].Count)
	assert.True(t, decimal.NewFromInt(16).Equal(totals[0].Total), "got %s", totals[0].Total)
	assert.Equal(t, 2, totals[1].Level)
	assert.True(t, decimal.NewFromInt(3).Equal(totals[1].Total), "got %s", totals[1].Total)
}

func TestListRecentReturnsNewestFirstWithCounterparty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEarningRepository(db)

	referrer, referred := seedLedger(t, db,
		[]string{"16.00"},
		[]string{models.EarningStatusPending},
	)

	earnings, err := repo.ListRecent(referrer.ID, 50)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Equal(t, referred.Email, earnings[0].ReferredUser.Email)
}

func TestUserRepositoryNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.FindByEmail("ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.FindByReferralCode("000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
