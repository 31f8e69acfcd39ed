package referral

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tierlink/backend/internal/cache"
	"github.com/tierlink/backend/internal/models"
	"github.com/tierlink/backend/internal/repository"
	"github.com/tierlink/backend/internal/utils"
)

// MaxChainDepth bounds both the upward ancestor walk and the downward team
// walk. It is also the only safety net against a referral cycle introduced
// by out-of-band data edits, so it must never be bypassed.
const MaxChainDepth = 3

// historyLimit caps the earnings-history response
const historyLimit = 50

// maxCodeAttempts bounds the salted retries when a generated referral code
// collides with an existing one.
const maxCodeAttempts = 5

// tierRates maps chain level to the commission percentage that level earns
// on a downline deposit.
var tierRates = map[int]decimal.Decimal{
	1: decimal.RequireFromString("16.00"),
	2: decimal.RequireFromString("3.00"),
	3: decimal.RequireFromString("2.00"),
}

var hundred = decimal.NewFromInt(100)

// UserStore is the storage access the service needs for users
type UserStore interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	FindByReferralCode(code string) (*models.User, error)
	ListByReferredCode(code string) ([]models.User, error)
}

// DepositStore is the storage access the service needs for deposits
type DepositStore interface {
	Create(deposit *models.Deposit) error
}

// EarningStore is the storage access the service needs for the ledger
type EarningStore interface {
	CreateBatch(earnings []models.ReferralEarning) error
	SumByStatus(referrerID uuid.UUID, status string) (decimal.Decimal, error)
	TotalsByLevel(referrerID uuid.UUID) ([]repository.LevelTotal, error)
	ListRecent(referrerID uuid.UUID, limit int) ([]models.ReferralEarning, error)
	SettlePending(referrerID uuid.UUID) (decimal.Decimal, decimal.Decimal, error)
}

// ChainEntry is one ancestor in a user's referral chain. Level 1 is the
// direct referrer, increasing with distance.
type ChainEntry struct {
	User  models.User
	Level int
}

// Inviter is the public view of the user owning a referral code
type Inviter struct {
	MaskedEmail  string    `json:"maskedEmail"`
	ReferralCode string    `json:"referralCode"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// ClaimResult reports a successful claim settlement
type ClaimResult struct {
	ClaimedAmount decimal.Decimal `json:"claimedAmount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
}

// LevelBreakdown is the per-level slice of a balance summary
type LevelBreakdown struct {
	Level      int             `json:"level"`
	Percentage decimal.Decimal `json:"percentage"`
	Count      int64           `json:"count"`
	Total      decimal.Decimal `json:"total"`
}

// BalanceSummary aggregates a user's commission position
type BalanceSummary struct {
	PendingBalance decimal.Decimal  `json:"pendingBalance"`
	ClaimedBalance decimal.Decimal  `json:"claimedBalance"`
	TotalBalance   decimal.Decimal  `json:"totalBalance"`
	Balance        decimal.Decimal  `json:"balance"`
	ByLevel        []LevelBreakdown `json:"byLevel"`
}

// HistoryEntry is one row of the earnings history
type HistoryEntry struct {
	Level      int             `json:"level"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	FromEmail  string          `json:"fromEmail"`
	CreatedAt  time.Time       `json:"createdAt"`
	ClaimedAt  *time.Time      `json:"claimedAt,omitempty"`
}

// Service implements the referral program: identity resolution, chain
// traversal, commission accrual and claim settlement.
type Service struct {
	users     UserStore
	deposits  DepositStore
	earnings  EarningStore
	teamCache *cache.TeamCache
	linkBase  string
}

// NewService creates a new referral service. teamCache may be nil, which
// disables team-breakdown caching.
func NewService(users UserStore, deposits DepositStore, earnings EarningStore, teamCache *cache.TeamCache, linkBase string) *Service {
	return &Service{
		users:     users,
		deposits:  deposits,
		earnings:  earnings,
		teamCache: teamCache,
		linkBase:  linkBase,
	}
}

// ReferralLink builds the shareable link for a referral code
func (s *Service) ReferralLink(code string) string {
	return utils.BuildReferralLink(s.linkBase, code)
}

// GetOrCreate resolves an email to its account, creating one without a
// referrer when none exists. The second return reports whether the account
// was created by this call.
func (s *Service) GetOrCreate(email string) (*models.User, bool, error) {
	email = NormalizeEmail(email)

	user, err := s.users.FindByEmail(email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	user, err = s.createUser(email, nil)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// Register resolves or creates an account for email, optionally linking it
// under referralCode. An unknown code is dropped rather than rejected: the
// account is still created, just without a referrer. Registering an existing
// email returns the account unchanged with isNew=false.
func (s *Service) Register(ctx context.Context, email, referralCode string) (*models.User, bool, error) {
	email = NormalizeEmail(email)

	user, err := s.users.FindByEmail(email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	var referredBy *string
	if referralCode != "" {
		referrer, err := s.users.FindByReferralCode(referralCode)
		switch {
		case err == nil:
			referredBy = &referrer.ReferralCode
		case errors.Is(err, repository.ErrNotFound):
			// Invalid codes are not fatal at registration
		default:
			return nil, false, err
		}
	}

	user, err = s.createUser(email, referredBy)
	if err != nil {
		return nil, false, err
	}

	if referredBy != nil {
		s.invalidateAncestorTeams(ctx, user)
	}
	return user, true, nil
}

// createUser persists a new account with a deterministically generated code,
// salting and regenerating on collision.
func (s *Service) createUser(email string, referredBy *string) (*models.User, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := generateCodeSalted(email, attempt)

		_, err := s.users.FindByReferralCode(code)
		if err == nil {
			continue // code taken, salt and regenerate
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}

		user := &models.User{
			Email:          email,
			ReferralCode:   code,
			ReferredByCode: referredBy,
			Balance:        decimal.Zero,
		}
		if err := s.users.Create(user); err != nil {
			// A concurrent signup may have taken the code between the
			// lookup and the insert; try the next salt.
			if attempt+1 < maxCodeAttempts {
				continue
			}
			return nil, err
		}
		return user, nil
	}
	return nil, fmt.Errorf("could not allocate a unique referral code for %s", email)
}

// InviterByCode returns the masked identity of the user owning a code
func (s *Service) InviterByCode(code string) (*Inviter, error) {
	user, err := s.users.FindByReferralCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return &Inviter{
		MaskedEmail:  utils.MaskEmail(user.Email),
		ReferralCode: user.ReferralCode,
		JoinedAt:     user.CreatedAt,
	}, nil
}

// AncestorChain walks the referred-by edges upward from user, at most
// maxLevel steps. The walk stops at the first user without a referrer or
// whose referrer record no longer exists.
func (s *Service) AncestorChain(user *models.User, maxLevel int) ([]ChainEntry, error) {
	var chain []ChainEntry
	current := user
	for level := 1; level <= maxLevel; level++ {
		if current.ReferredByCode == nil {
			break
		}
		ancestor, err := s.users.FindByReferralCode(*current.ReferredByCode)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, ChainEntry{User: *ancestor, Level: level})
		current = ancestor
	}
	return chain, nil
}

// Team returns the three-level downline breakdown for the user behind email.
// The walk is breadth-first and unpaginated: cost is proportional to the
// number of descendants reached, which is why results are cached.
func (s *Service) Team(ctx context.Context, email string) (*models.TeamBreakdown, error) {
	user, err := s.resolve(email)
	if err != nil {
		return nil, err
	}

	if team, ok := s.teamCache.Get(ctx, user.ID); ok {
		return team, nil
	}

	team := &models.TeamBreakdown{}
	frontier := []string{user.ReferralCode}
	for level := 1; level <= MaxChainDepth; level++ {
		var nextFrontier []string
		members := []models.TeamMember{}
		for _, code := range frontier {
			children, err := s.users.ListByReferredCode(code)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				members = append(members, models.TeamMember{
					MaskedEmail:  utils.MaskEmail(child.Email),
					ReferralCode: child.ReferralCode,
					JoinedAt:     child.CreatedAt,
				})
				nextFrontier = append(nextFrontier, child.ReferralCode)
			}
		}
		team.Levels = append(team.Levels, models.TeamLevel{
			Level:      level,
			Count:      len(members),
			Percentage: tierRates[level].StringFixed(2) + "%",
			Members:    members,
		})
		team.TotalTeam += len(members)
		frontier = nextFrontier
	}

	s.teamCache.Set(ctx, user.ID, team)
	return team, nil
}

// Deposit records a completed deposit for the user behind email and accrues
// tiered commissions for up to three ancestors. A user with no referrer
// produces no ledger entries, which is not an error.
func (s *Service) Deposit(email string, amount decimal.Decimal) (*models.Deposit, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	user, err := s.resolve(email)
	if err != nil {
		return nil, err
	}

	deposit := &models.Deposit{
		UserID: user.ID,
		Amount: amount,
		Status: models.DepositStatusCompleted,
	}
	if err := s.deposits.Create(deposit); err != nil {
		return nil, err
	}

	if err := s.accrue(deposit, user); err != nil {
		return nil, err
	}
	return deposit, nil
}

// accrue writes one pending ledger entry per ancestor, applying the tier
// rate for that ancestor's level to the deposit amount.
func (s *Service) accrue(deposit *models.Deposit, user *models.User) error {
	chain, err := s.AncestorChain(user, MaxChainDepth)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		return nil
	}

	earnings := make([]models.ReferralEarning, 0, len(chain))
	for _, entry := range chain {
		rate := tierRates[entry.Level]
		earnings = append(earnings, models.ReferralEarning{
			ReferrerID:     entry.User.ID,
			ReferredUserID: user.ID,
			DepositID:      deposit.ID,
			Level:          entry.Level,
			Percentage:     rate,
			Amount:         deposit.Amount.Mul(rate).Div(hundred).Round(2),
			Status:         models.EarningStatusPending,
		})
	}
	return s.earnings.CreateBatch(earnings)
}

// Claim settles every pending earning for the user behind email into their
// spendable balance. The settlement is atomic in the store.
func (s *Service) Claim(email string) (*ClaimResult, error) {
	user, err := s.resolve(email)
	if err != nil {
		return nil, err
	}

	claimed, newBalance, err := s.earnings.SettlePending(user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNothingToClaim) {
			return nil, ErrNothingToClaim
		}
		return nil, err
	}
	log.Printf("claimed %s for %s, new balance %s", claimed, user.Email, newBalance)
	return &ClaimResult{ClaimedAmount: claimed, NewBalance: newBalance}, nil
}

// Balance returns the commission position for the user behind email
func (s *Service) Balance(email string) (*BalanceSummary, error) {
	user, err := s.resolve(email)
	if err != nil {
		return nil, err
	}

	pending, err := s.earnings.SumByStatus(user.ID, models.EarningStatusPending)
	if err != nil {
		return nil, err
	}
	claimed, err := s.earnings.SumByStatus(user.ID, models.EarningStatusClaimed)
	if err != nil {
		return nil, err
	}
	totals, err := s.earnings.TotalsByLevel(user.ID)
	if err != nil {
		return nil, err
	}

	byLevel := make([]LevelBreakdown, 0, len(totals))
	for _, t := range totals {
		byLevel = append(byLevel, LevelBreakdown{
			Level:      t.Level,
			Percentage: tierRates[t.Level],
			Count:      t.Count,
			Total:      t.Total,
		})
	}

	return &BalanceSummary{
		PendingBalance: pending,
		ClaimedBalance: claimed,
		TotalBalance:   pending.Add(claimed),
		Balance:        user.Balance,
		ByLevel:        byLevel,
	}, nil
}

// History returns the user's most recent ledger entries, newest first,
// with counterparty emails masked.
func (s *Service) History(email string) ([]HistoryEntry, error) {
	user, err := s.resolve(email)
	if err != nil {
		return nil, err
	}

	earnings, err := s.earnings.ListRecent(user.ID, historyLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(earnings))
	for _, e := range earnings {
		entries = append(entries, HistoryEntry{
			Level:      e.Level,
			Percentage: e.Percentage,
			Amount:     e.Amount,
			Status:     e.Status,
			FromEmail:  utils.MaskEmail(e.ReferredUser.Email),
			CreatedAt:  e.CreatedAt,
			ClaimedAt:  e.ClaimedAt,
		})
	}
	return entries, nil
}

// resolve maps an email to its account, translating missing rows into the
// service's not-found error.
func (s *Service) resolve(email string) (*models.User, error) {
	user, err := s.users.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// invalidateAncestorTeams drops cached team breakdowns for every ancestor a
// new signup just became visible to.
func (s *Service) invalidateAncestorTeams(ctx context.Context, user *models.User) {
	chain, err := s.AncestorChain(user, MaxChainDepth)
	if err != nil {
		log.Printf("could not walk chain for cache invalidation: %v", err)
		return
	}
	for _, entry := range chain {
		s.teamCache.Invalidate(ctx, entry.User.ID)
	}
}
