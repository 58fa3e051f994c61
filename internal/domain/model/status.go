package model

import "time"

// Membership durations. A paid subscription entry covers one calendar month
// from its creation; the legacy event membership runs six calendar months from
// its anchor date.
const (
	SubscriptionMonths   = 1
	EventMembershipMonths = 6
)

// SubscriptionStatus is the view the eligibility calculator returns. Absence
// of a subscription is a normal status (Activate=false), never an error.
type SubscriptionStatus struct {
	Subscription *Purchase  `json:"subscription"`
	Activate     bool       `json:"activate"`
	LeftDays     int        `json:"leftDays"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	Msg          string     `json:"msg"`
}

// RefundEligibility is the fail-closed answer to "may this user refund".
type RefundEligibility struct {
	IsRefundable bool   `json:"isRefundable"`
	Msg          string `json:"msg"`
}

// RefundResult reports a completed refund.
type RefundResult struct {
	RefundSuccess bool   `json:"refundSuccess"`
	Msg           string `json:"msg"`
}

// TruncateToMidnight drops the time-of-day component in t's location. All
// expiration math is done on day boundaries so a subscription bought at 23:59
// and one bought at 00:01 expire at the same instant.
func TruncateToMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MembershipExpiry returns when a membership anchored at `anchor` lapses:
// midnight of the anchor day plus the given number of calendar months.
// AddDate normalizes overflow (Jan 31 + 1 month lands in early March), which
// matches how the mobile clients compute the same date.
func MembershipExpiry(anchor time.Time, months int) time.Time {
	return TruncateToMidnight(anchor).AddDate(0, months, 0)
}

// DaysLeft is the number of whole or partial days from `now` until `expiry`,
// rounded up, never negative. A positive result means the membership is still
// active today.
func DaysLeft(expiry, now time.Time) int {
	diff := expiry.Sub(TruncateToMidnight(now))
	if diff <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	days := int(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}
