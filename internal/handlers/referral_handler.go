package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tierlink/backend/internal/services/referral"
)

// ReferralHandler handles referral program requests
type ReferralHandler struct {
	service *referral.Service
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(service *referral.Service) *ReferralHandler {
	return &ReferralHandler{service: service}
}

// GetReferral resolves an email to its referral identity, creating the
// account on first sight.
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	user, _, err := h.service.GetOrCreate(email)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"referralCode": user.ReferralCode,
		"referralLink": h.service.ReferralLink(user.ReferralCode),
		"email":        user.Email,
	})
}

// Register creates an account, optionally linked under a referral code
func (h *ReferralHandler) Register(c *gin.Context) {
	var input struct {
		Email        string `json:"email" binding:"required"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	user, isNew, err := h.service.Register(c.Request.Context(), input.Email, input.ReferralCode)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"referralCode": user.ReferralCode,
		"referralLink": h.service.ReferralLink(user.ReferralCode),
		"isNew":        isNew,
	})
}

// GetInviter returns the masked identity behind a referral code
func (h *ReferralHandler) GetInviter(c *gin.Context) {
	code := c.Query("referralCode")
	if code == "" {
		respondError(c, http.StatusBadRequest, "referralCode is required")
		return
	}

	inviter, err := h.service.InviterByCode(code)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, inviter)
}

// GetTeam returns the caller's three-level downline breakdown
func (h *ReferralHandler) GetTeam(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	team, err := h.service.Team(c.Request.Context(), email)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, team)
}

// GetBalance returns the caller's commission position
func (h *ReferralHandler) GetBalance(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	summary, err := h.service.Balance(email)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}

// Claim settles the caller's pending earnings into their balance
func (h *ReferralHandler) Claim(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	result, err := h.service.Claim(input.Email)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"claimedAmount": result.ClaimedAmount,
		"newBalance":    result.NewBalance,
		"message":       "earnings claimed successfully",
	})
}

// Deposit records a deposit and accrues upline commissions
func (h *ReferralHandler) Deposit(c *gin.Context) {
	var input struct {
		Email  string          `json:"email" binding:"required"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "email and amount are required")
		return
	}

	deposit, err := h.service.Deposit(input.Email, input.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"depositId": deposit.ID,
		"amount":    deposit.Amount,
		"message":   "deposit recorded",
	})
}

// GetEarningsHistory returns the caller's recent ledger entries
func (h *ReferralHandler) GetEarningsHistory(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, http.StatusBadRequest, "email is required")
		return
	}

	entries, err := h.service.History(email)
	if err != nil {
		h.fail(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// fail maps service errors onto the response envelope
func (h *ReferralHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, referral.ErrUserNotFound),
		errors.Is(err, referral.ErrCodeNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, referral.ErrInvalidAmount),
		errors.Is(err, referral.ErrNothingToClaim):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("referral handler error: %v", err)
		respondError(c, http.StatusInternalServerError, "something went wrong")
	}
}
