package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusRunning.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.True(t, JobStatusCancelled.Terminal())
}

func TestJobStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusQueued, JobStatusRunning, true},
		{JobStatusQueued, JobStatusCancelled, true},
		{JobStatusQueued, JobStatusCompleted, false},
		{JobStatusQueued, JobStatusFailed, false},
		{JobStatusRunning, JobStatusCompleted, true},
		{JobStatusRunning, JobStatusFailed, true},
		{JobStatusRunning, JobStatusCancelled, false},
		{JobStatusRunning, JobStatusQueued, false},
		{JobStatusCompleted, JobStatusRunning, false},
		{JobStatusFailed, JobStatusQueued, false},
		{JobStatusCancelled, JobStatusRunning, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestJobType_Valid(t *testing.T) {
	assert.True(t, JobTypeRaw.Valid())
	assert.True(t, JobTypeAnalyze.Valid())
	assert.True(t, JobTypePipeline.Valid())
	assert.False(t, JobType("export").Valid())
	assert.False(t, JobType("").Valid())
}

func TestSourceType_Valid(t *testing.T) {
	assert.True(t, SourceReddit.Valid())
	assert.True(t, SourceVideo.Valid())
	assert.False(t, SourceType("myspace").Valid())
}

func TestWorkflowStatus_Terminal(t *testing.T) {
	assert.True(t, WorkflowCompleted.Terminal())
	assert.True(t, WorkflowFailed.Terminal())
	assert.True(t, WorkflowCancelled.Terminal())
	assert.False(t, WorkflowAwaitingApproval.Terminal())
	assert.False(t, WorkflowResearching.Terminal())
	assert.False(t, WorkflowPending.Terminal())
}

func TestRawData_ItemCount(t *testing.T) {
	raw := &RawData{SourceType: SourceReddit, RedditPosts: []RedditPost{{Title: "a"}, {Title: "b"}}}
	assert.Equal(t, 2, raw.ItemCount())

	// Variant slices outside the discriminant are ignored
	raw = &RawData{SourceType: SourceGitHub, RedditPosts: []RedditPost{{Title: "a"}}}
	assert.Equal(t, 0, raw.ItemCount())

	raw = &RawData{SourceType: SourceGoogleTrends, Trends: []TrendEntry{{Title: "x"}}}
	assert.Equal(t, 1, raw.ItemCount())
}
