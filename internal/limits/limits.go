// Package limits implements subscription-tier admission control for jobs
// and configurations.
package limits

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/trendcast/internal/types"
)

// Limits holds the resource bounds for a single user.
type Limits struct {
	MaxConcurrentJobs int                    `json:"max_concurrent_jobs"`
	MaxConfigurations int                    `json:"max_configurations"`
	SourcesAvailable  []types.SourceType     `json:"sources_available"`
	SubscriptionTier  types.SubscriptionTier `json:"subscription_tier"`
}

// Admin override regardless of tier.
const (
	adminMaxConcurrentJobs = 100
	adminMaxConfigurations = 1000
)

// tierTable is the fixed per-tier policy. Unknown tiers fall back to free.
var tierTable = map[types.SubscriptionTier]Limits{
	types.TierFree: {
		MaxConcurrentJobs: 1,
		MaxConfigurations: 5,
		SourcesAvailable:  []types.SourceType{types.SourceReddit, types.SourceHackerNews},
	},
	types.TierStarter: {
		MaxConcurrentJobs: 3,
		MaxConfigurations: 10,
		SourcesAvailable:  []types.SourceType{types.SourceReddit, types.SourceHackerNews, types.SourceGitHub},
	},
	types.TierCreator: {
		MaxConcurrentJobs: 5,
		MaxConfigurations: 25,
		SourcesAvailable:  allSources(),
	},
	types.TierCreatorPro: {
		MaxConcurrentJobs: 10,
		MaxConfigurations: 50,
		SourcesAvailable:  allSources(),
	},
	types.TierEnterprise: {
		MaxConcurrentJobs: 50,
		MaxConfigurations: 200,
		SourcesAvailable:  allSources(),
	},
}

func allSources() []types.SourceType {
	return []types.SourceType{
		types.SourceReddit, types.SourceHackerNews, types.SourceGitHub,
		types.SourceGoogleTrends, types.SourceVideo,
	}
}

// ForUser returns the limits for a user. Pure function of the user's tier
// and admin flag; never fails.
func ForUser(user *types.User) Limits {
	l, ok := tierTable[user.SubscriptionTier]
	if !ok {
		l = tierTable[types.TierFree]
	}
	l.SubscriptionTier = user.SubscriptionTier
	if user.IsAdmin {
		l.MaxConcurrentJobs = adminMaxConcurrentJobs
		l.MaxConfigurations = adminMaxConfigurations
		l.SourcesAvailable = allSources()
	}
	return l
}

// SourceAllowed reports whether the user's tier may target the given source.
func SourceAllowed(user *types.User, source types.SourceType) bool {
	for _, s := range ForUser(user).SourcesAvailable {
		if s == source {
			return true
		}
	}
	return false
}

// QuotaExceededError indicates the admission gate rejected a request. The
// caller may wait for running jobs to finish, cancel queued ones, or
// upgrade; nothing is retried automatically.
type QuotaExceededError struct {
	Resource string
	Limit    int
	Current  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s limit is %d, currently at %d", e.Resource, e.Limit, e.Current)
}

// ActiveJobCounter reports how many of a user's jobs are queued or running.
type ActiveJobCounter interface {
	CountActiveJobs(ctx context.Context, userID uuid.UUID) (int, error)
}

// CheckAdmission is the hard gate called synchronously before any job row is
// created. It admits intended additional jobs only if the user's active
// count stays within the tier bound. Admins always pass.
func CheckAdmission(ctx context.Context, counter ActiveJobCounter, user *types.User, intended int) error {
	if user.IsAdmin {
		return nil
	}

	l := ForUser(user)
	current, err := counter.CountActiveJobs(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count active jobs: %w", err)
	}
	if current+intended > l.MaxConcurrentJobs {
		return &QuotaExceededError{Resource: "concurrent jobs", Limit: l.MaxConcurrentJobs, Current: current}
	}
	return nil
}

// ConfigurationCounter reports how many active configurations a user owns.
type ConfigurationCounter interface {
	CountActiveConfigurations(ctx context.Context, userID uuid.UUID) (int, error)
}

// CheckConfigurationQuota gates configuration creation the same way
// CheckAdmission gates job creation.
func CheckConfigurationQuota(ctx context.Context, counter ConfigurationCounter, user *types.User) error {
	if user.IsAdmin {
		return nil
	}

	l := ForUser(user)
	current, err := counter.CountActiveConfigurations(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count configurations: %w", err)
	}
	if current >= l.MaxConfigurations {
		return &QuotaExceededError{Resource: "configurations", Limit: l.MaxConfigurations, Current: current}
	}
	return nil
}
