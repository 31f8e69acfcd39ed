package referral

import "errors"

var (
	// ErrUserNotFound is returned when no account exists for an email
	ErrUserNotFound = errors.New("user not found")
	// ErrCodeNotFound is returned when no account owns a referral code
	ErrCodeNotFound = errors.New("referral code not found")
	// ErrInvalidAmount is returned for non-positive deposit amounts
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrNothingToClaim is returned when a user has no pending earnings
	ErrNothingToClaim = errors.New("nothing to claim")
)
