package models

import (
	"fmt"
	"time"
)

// TrialDuration is the length of the free trial.
const TrialDuration = 7 * 24 * time.Hour

// TrialDays is TrialDuration in whole days.
const TrialDays = 7

type Plan string

const (
	PlanWeekly   Plan = "cocoa_calm_weekly"
	PlanMonthly  Plan = "cocoa_calm_monthly"
	PlanAnnual   Plan = "cocoa_calm_annual"
	PlanLifetime Plan = "cocoa_calm_lifetime"
)

type planInfo struct {
	displayName string
	price       string
	priceCents  int
	savings     string
}

var plans = map[Plan]planInfo{
	PlanWeekly:   {"Weekly", "$4.99", 499, ""},
	PlanMonthly:  {"Monthly", "$12.99", 1299, "Save 38%"},
	PlanAnnual:   {"Annual", "$79.99", 7999, "Save 74%"},
	PlanLifetime: {"Lifetime", "$199.99", 19999, "Best Value"},
}

// AllPlans lists the recognized plans, cheapest first.
func AllPlans() []Plan {
	return []Plan{PlanWeekly, PlanMonthly, PlanAnnual, PlanLifetime}
}

// ProductIDs returns the platform product identifiers of every recognized plan.
func ProductIDs() []string {
	ids := make([]string, 0, len(plans))
	for _, p := range AllPlans() {
		ids = append(ids, string(p))
	}
	return ids
}

// PlanFromProductID maps a platform product identifier to a plan. Only the
// recognized plan identifiers are accepted.
func PlanFromProductID(id string) (Plan, bool) {
	p := Plan(id)
	_, ok := plans[p]
	return p, ok
}

// ParsePlan accepts a product identifier or a short name such as "monthly".
func ParsePlan(s string) (Plan, bool) {
	if p, ok := PlanFromProductID(s); ok {
		return p, true
	}
	return PlanFromProductID("cocoa_calm_" + s)
}

func (p Plan) DisplayName() string { return plans[p].displayName }
func (p Plan) Price() string       { return plans[p].price }
func (p Plan) PriceCents() int     { return plans[p].priceCents }
func (p Plan) Savings() string     { return plans[p].savings }
func (p Plan) ProductID() string   { return string(p) }

// Period returns the renewal period of a recurring plan. Lifetime reports
// false.
func (p Plan) Period() (years, months, days int, recurring bool) {
	switch p {
	case PlanWeekly:
		return 0, 0, 7, true
	case PlanMonthly:
		return 0, 1, 0, true
	case PlanAnnual:
		return 1, 0, 0, true
	default:
		return 0, 0, 0, false
	}
}

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

func (t Tier) DisplayName() string {
	if t == TierPremium {
		return "Premium"
	}
	return "Free"
}

// Status is the entitlement state machine position.
type Status string

const (
	StatusFree       Status = "free"
	StatusTrialing   Status = "trialing"
	StatusSubscribed Status = "subscribed"
	StatusLifetime   Status = "lifetime"
)

type EntitlementState struct {
	IsSubscribed           bool       `json:"is_subscribed"`
	CurrentPlan            *Plan      `json:"current_plan,omitempty"`
	IsInTrialPeriod        bool       `json:"is_in_trial_period"`
	TrialDaysRemaining     int        `json:"trial_days_remaining"`
	SubscriptionExpiryDate *time.Time `json:"subscription_expiry_date,omitempty"`
	HasLifetimePurchase    bool       `json:"has_lifetime_purchase"`
}

func (s EntitlementState) CanAccessPremium() bool {
	return s.IsSubscribed || s.HasLifetimePurchase || (s.IsInTrialPeriod && s.TrialDaysRemaining > 0)
}

func (s EntitlementState) Status() Status {
	switch {
	case s.HasLifetimePurchase:
		return StatusLifetime
	case s.IsSubscribed:
		return StatusSubscribed
	case s.IsInTrialPeriod && s.TrialDaysRemaining > 0:
		return StatusTrialing
	default:
		return StatusFree
	}
}

func (s EntitlementState) Tier() Tier {
	if s.CanAccessPremium() {
		return TierPremium
	}
	return TierFree
}

// StatusText renders the state for display.
func (s EntitlementState) StatusText() string {
	switch s.Status() {
	case StatusLifetime:
		return "Lifetime Access"
	case StatusSubscribed:
		if s.SubscriptionExpiryDate != nil {
			return fmt.Sprintf("Active until %s", s.SubscriptionExpiryDate.Format("Jan 2, 2006"))
		}
		return "Active Subscription"
	case StatusTrialing:
		return fmt.Sprintf("%d days left in trial", s.TrialDaysRemaining)
	default:
		return "Free Plan"
	}
}

// Cache returns the display cache persisted between launches.
func (s EntitlementState) Cache() StatusCache {
	return StatusCache{
		IsSubscribed:       s.IsSubscribed,
		Tier:               s.Tier(),
		IsInTrial:          s.IsInTrialPeriod,
		TrialDaysRemaining: s.TrialDaysRemaining,
	}
}

type StatusCache struct {
	IsSubscribed       bool `json:"is_subscribed"`
	Tier               Tier `json:"tier"`
	IsInTrial          bool `json:"is_in_trial"`
	TrialDaysRemaining int  `json:"trial_days_remaining"`
}

// State restores the cached fields. The cache never carries a plan or expiry.
func (c StatusCache) State() EntitlementState {
	return EntitlementState{
		IsSubscribed:       c.IsSubscribed,
		IsInTrialPeriod:    c.IsInTrial && !c.IsSubscribed,
		TrialDaysRemaining: c.TrialDaysRemaining,
	}
}

// Transaction is a verified platform purchase record.
type Transaction struct {
	TransactionID         string     `json:"transaction_id"`
	OriginalTransactionID string     `json:"original_transaction_id"`
	ProductID             string     `json:"product_id"`
	PurchaseDate          time.Time  `json:"purchase_date"`
	ExpiresDate           *time.Time `json:"expires_date,omitempty"`
	RevocationDate        *time.Time `json:"revocation_date,omitempty"`
}

// ActiveAt reports whether the transaction grants access at t.
func (t Transaction) ActiveAt(now time.Time) bool {
	if t.RevocationDate != nil && !t.RevocationDate.After(now) {
		return false
	}
	if t.ExpiresDate != nil && !now.Before(*t.ExpiresDate) {
		return false
	}
	return true
}
