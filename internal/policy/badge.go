package policy

import (
	"math"
	"time"

	"policyvault/internal/model"
)

type Badge string

const (
	BadgeActive      Badge = "active"
	BadgeRenewalDue  Badge = "renewal_due"
	BadgeExpiresSoon Badge = "expires_soon"
	BadgeExpired     Badge = "expired"
)

// BadgeFor derives the expiry badge from the stored status and the days left
// until expiry, rounded up.
func BadgeFor(status model.PolicyStatus, expiry, now time.Time) Badge {
	if status == model.PolicyStatusExpired {
		return BadgeExpired
	}
	daysUntil := math.Ceil(expiry.Sub(now).Hours() / 24)
	switch {
	case daysUntil <= 7:
		return BadgeExpiresSoon
	case daysUntil <= 30:
		return BadgeRenewalDue
	}
	return BadgeActive
}

// View is a policy with its badge attached, as returned by the list and detail routes.
type View struct {
	Policy model.Policy `json:"policy"`
	Badge  Badge        `json:"badge"`
}

func NewView(p model.Policy, now time.Time) View {
	return View{Policy: p, Badge: BadgeFor(p.Status, p.ExpiryDate, now)}
}
