package limits

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/trendcast/internal/types"
)

type fakeCounter struct {
	active int
	err    error
}

func (f *fakeCounter) CountActiveJobs(_ context.Context, _ uuid.UUID) (int, error) {
	return f.active, f.err
}

func (f *fakeCounter) CountActiveConfigurations(_ context.Context, _ uuid.UUID) (int, error) {
	return f.active, f.err
}

func userWithTier(tier types.SubscriptionTier) *types.User {
	return &types.User{ID: uuid.New(), SubscriptionTier: tier}
}

func TestForUser_TierTable(t *testing.T) {
	tests := []struct {
		tier       types.SubscriptionTier
		maxJobs    int
		maxConfigs int
	}{
		{types.TierFree, 1, 5},
		{types.TierStarter, 3, 10},
		{types.TierCreator, 5, 25},
		{types.TierCreatorPro, 10, 50},
		{types.TierEnterprise, 50, 200},
	}

	for _, tt := range tests {
		l := ForUser(userWithTier(tt.tier))
		assert.Equal(t, tt.maxJobs, l.MaxConcurrentJobs, "tier %s", tt.tier)
		assert.Equal(t, tt.maxConfigs, l.MaxConfigurations, "tier %s", tt.tier)
	}
}

func TestForUser_UnknownTierFallsBackToFree(t *testing.T) {
	l := ForUser(userWithTier("platinum"))
	assert.Equal(t, 1, l.MaxConcurrentJobs)
	assert.Equal(t, 5, l.MaxConfigurations)
}

func TestForUser_AdminOverride(t *testing.T) {
	user := userWithTier(types.TierFree)
	user.IsAdmin = true

	l := ForUser(user)
	assert.Equal(t, 100, l.MaxConcurrentJobs)
	assert.Equal(t, 1000, l.MaxConfigurations)
	assert.Contains(t, l.SourcesAvailable, types.SourceVideo)
}

func TestSourceAllowed(t *testing.T) {
	free := userWithTier(types.TierFree)
	assert.True(t, SourceAllowed(free, types.SourceReddit))
	assert.True(t, SourceAllowed(free, types.SourceHackerNews))
	assert.False(t, SourceAllowed(free, types.SourceGitHub))
	assert.False(t, SourceAllowed(free, types.SourceVideo))

	starter := userWithTier(types.TierStarter)
	assert.True(t, SourceAllowed(starter, types.SourceGitHub))
	assert.False(t, SourceAllowed(starter, types.SourceGoogleTrends))

	creator := userWithTier(types.TierCreator)
	assert.True(t, SourceAllowed(creator, types.SourceVideo))
}

func TestCheckAdmission_AtLimit(t *testing.T) {
	user := userWithTier(types.TierFree)

	// Free tier allows 1 concurrent job; 1 active means no admission.
	err := CheckAdmission(context.Background(), &fakeCounter{active: 1}, user, 1)
	require.Error(t, err)

	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 1, quotaErr.Limit)
	assert.Equal(t, 1, quotaErr.Current)
}

func TestCheckAdmission_UnderLimit(t *testing.T) {
	user := userWithTier(types.TierStarter)
	err := CheckAdmission(context.Background(), &fakeCounter{active: 2}, user, 1)
	assert.NoError(t, err)
}

func TestCheckAdmission_AdminBypasses(t *testing.T) {
	user := userWithTier(types.TierFree)
	user.IsAdmin = true

	err := CheckAdmission(context.Background(), &fakeCounter{active: 500}, user, 1)
	assert.NoError(t, err)
}

func TestCheckConfigurationQuota(t *testing.T) {
	user := userWithTier(types.TierFree)

	assert.NoError(t, CheckConfigurationQuota(context.Background(), &fakeCounter{active: 4}, user))

	err := CheckConfigurationQuota(context.Background(), &fakeCounter{active: 5}, user)
	var quotaErr *QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "configurations", quotaErr.Resource)
}
