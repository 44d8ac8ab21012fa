package types

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionTier determines a user's resource limits.
type SubscriptionTier string

// Subscription tiers in ascending order of capability.
const (
	TierFree       SubscriptionTier = "free"
	TierStarter    SubscriptionTier = "starter"
	TierCreator    SubscriptionTier = "creator"
	TierCreatorPro SubscriptionTier = "creator_pro"
	TierEnterprise SubscriptionTier = "enterprise"
)

// Valid reports whether t is a known tier.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierStarter, TierCreator, TierCreatorPro, TierEnterprise:
		return true
	}
	return false
}

// User represents an authenticated caller for API responses and ownership
// checks (password hash never leaves the db package).
type User struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
	IsAdmin          bool             `json:"is_admin"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
