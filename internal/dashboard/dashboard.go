// Package dashboard reduces a user's policies to the counters and renewal list
// shown on the landing view.
package dashboard

import (
	"time"

	"policyvault/internal/format"
	"policyvault/internal/model"
)

const (
	DefaultRenewalWindowDays = 30
	upcomingLimit            = 5
)

type Summary struct {
	TotalPolicies        int            `json:"total_policies"`
	MotorPolicies        int            `json:"motor_policies"`
	HealthPolicies       int            `json:"health_policies"`
	ActivePolicies       int            `json:"active_policies"`
	ExpiredPolicies      int            `json:"expired_policies"`
	UpcomingRenewalCount int            `json:"upcoming_renewal_count"`
	UpcomingRenewals     []model.Policy `json:"upcoming_renewals"`
	TotalPremium         float64        `json:"total_premium"`
	TotalPremiumDisplay  string         `json:"total_premium_display"`
}

// Summarize counts policies by type and by status and picks the active
// policies expiring within windowDays of now, endpoints included.
//
// Type counts ignore status while the active count and premium total only see
// active policies. The renewal list keeps the input order.
func Summarize(policies []model.Policy, now time.Time, windowDays int) Summary {
	if windowDays <= 0 {
		windowDays = DefaultRenewalWindowDays
	}
	today := format.CalendarDay(now)
	windowEnd := today.AddDate(0, 0, windowDays)

	s := Summary{
		TotalPolicies:    len(policies),
		UpcomingRenewals: []model.Policy{},
	}
	for _, p := range policies {
		switch p.Type() {
		case model.PolicyTypeMotor:
			s.MotorPolicies++
		case model.PolicyTypeHealth:
			s.HealthPolicies++
		}

		switch p.Status {
		case model.PolicyStatusExpired:
			s.ExpiredPolicies++
			continue
		case model.PolicyStatusActive:
			s.ActivePolicies++
			s.TotalPremium += p.PremiumAmount
		default:
			continue
		}

		expiry := format.CalendarDay(p.ExpiryDate)
		if expiry.Before(today) || expiry.After(windowEnd) {
			continue
		}
		s.UpcomingRenewalCount++
		if len(s.UpcomingRenewals) < upcomingLimit {
			s.UpcomingRenewals = append(s.UpcomingRenewals, p)
		}
	}
	s.TotalPremiumDisplay = format.CompactINR(s.TotalPremium)
	return s
}
