package models

import "time"

// TeamMember is a single downline user as exposed to the referrer. Emails are
// always masked before they leave the service layer.
type TeamMember struct {
	MaskedEmail  string    `json:"maskedEmail"`
	ReferralCode string    `json:"referralCode"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// TeamLevel groups the downline members found at one depth of the referral
// tree together with the commission rate that depth earns.
type TeamLevel struct {
	Level      int          `json:"level"`
	Count      int          `json:"count"`
	Percentage string       `json:"percentage"`
	Members    []TeamMember `json:"members"`
}

// TeamBreakdown is the full three-level downline view for one user. It is
// cached as-is, so it carries no database associations.
type TeamBreakdown struct {
	Levels    []TeamLevel `json:"levels"`
	TotalTeam int         `json:"totalTeam"`
}
