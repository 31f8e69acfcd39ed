package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tierlink/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository provides storage access for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// FindByEmail finds a user by normalized email
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user by id: %w", err)
	}
	return &user, nil
}

// FindByReferralCode finds the user owning a referral code
func (r *UserRepository) FindByReferralCode(code string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding user by referral code: %w", err)
	}
	return &user, nil
}

// ListByReferredCode returns the users who joined under the given code, the
// children-of lookup the team walk is built on. Oldest signups first.
func (r *UserRepository) ListByReferredCode(code string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("referred_by_code = ?", code).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("error listing referred users: %w", err)
	}
	return users, nil
}
