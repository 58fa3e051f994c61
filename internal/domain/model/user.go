package model

import (
	"time"

	"pickforme-subscription/internal/domain"

	"github.com/google/uuid"
)

// Baseline balances a user holds with no active subscription bonus. Expiring a
// subscription resets balances to these values, and refund eligibility is
// judged against them.
const (
	DefaultPoint   = 100
	DefaultAiPoint = 1000
)

// User is a domain entity representing an app account. Point balances are the
// entitlements this service grants and revokes: Point covers manager requests,
// AiPoint covers AI questions.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Point     int64  `json:"point"`
	AiPoint   int64  `json:"aiPoint"`
	// Event marks a legacy grandfathered membership cohort; 1 enables the
	// event-membership override in status computation.
	Event int `json:"event"`
	// MembershipAt anchors event-based membership and records the current
	// membership start. LastMembershipAt audits the most recent grant.
	MembershipAt     *time.Time `json:"membershipAt"`
	LastMembershipAt *time.Time `json:"lastMembershipAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func NewUser(id, email string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// AtBaseline reports whether the user still holds at least the baseline
// balances, i.e. has not consumed any of the subscription-granted allowance.
func (u *User) AtBaseline() bool {
	return u.Point >= DefaultPoint && u.AiPoint >= DefaultAiPoint
}
