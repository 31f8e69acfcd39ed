package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tierlink/backend/internal/models"
	"gorm.io/gorm"
)

// DepositRepository provides storage access for deposits
type DepositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// Create persists a new deposit
func (r *DepositRepository) Create(deposit *models.Deposit) error {
	if err := r.db.Create(deposit).Error; err != nil {
		return fmt.Errorf("error creating deposit: %w", err)
	}
	return nil
}

// FindByID finds a deposit by ID
func (r *DepositRepository) FindByID(id uuid.UUID) (*models.Deposit, error) {
	var deposit models.Deposit
	if err := r.db.Where("id = ?", id).First(&deposit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding deposit: %w", err)
	}
	return &deposit, nil
}
