package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")
	// ErrNothingToClaim is returned by SettlePending when the pending sum is zero
	ErrNothingToClaim = errors.New("nothing to claim")
)
