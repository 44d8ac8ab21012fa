package observability

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/trendcast/internal/types"
)

func TestPrintJob(t *testing.T) {
	var buf bytes.Buffer
	started := time.Now()
	completed := started.Add(1500 * time.Millisecond)
	errMsg := "upstream down"

	NewPrinter(&buf).PrintJob(&types.Job{
		ID:           uuid.New(),
		JobType:      types.JobTypeRaw,
		SourceType:   types.SourceReddit,
		Status:       types.JobStatusFailed,
		ErrorMessage: &errMsg,
		StartedAt:    &started,
		CompletedAt:  &completed,
	})

	out := buf.String()
	assert.Contains(t, out, "Type: raw (reddit)")
	assert.Contains(t, out, "Status: failed")
	assert.Contains(t, out, "Error: upstream down")
	assert.Contains(t, out, "Duration: 1.5s")
}

func TestPrintRawData_TruncatesList(t *testing.T) {
	var buf bytes.Buffer
	raw := &types.RawData{SourceType: types.SourceHackerNews}
	for i := 0; i < 8; i++ {
		raw.Stories = append(raw.Stories, types.HNStory{Title: fmt.Sprintf("story %d", i)})
	}

	NewPrinter(&buf).PrintRawData(raw)

	out := buf.String()
	assert.Contains(t, out, "Items: 8")
	assert.Contains(t, out, "story 4")
	assert.NotContains(t, out, "story 5")
	assert.Contains(t, out, "... and 3 more")
}

func TestPrintInsights(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintInsights(&types.AnalyzedData{
		SourceType: types.SourceGitHub,
		Summary:    "Tooling repos dominate",
		Insights: []types.Insight{
			{Title: "fast linter", Engagement: 92},
			{Title: "tiny router", Engagement: 75},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Tooling repos dominate")
	assert.Contains(t, out, "1. fast linter (92)")
	assert.Contains(t, out, "2. tiny router (75)")
}

func TestPrintWorkflow(t *testing.T) {
	var buf bytes.Buffer
	videoRef := "https://cdn.example/v.mp4"

	NewPrinter(&buf).PrintWorkflow(&types.WorkflowExecution{
		ID:               uuid.New(),
		Status:           types.WorkflowCompleted,
		ApprovalStatus:   types.ApprovalApproved,
		ResearchInsights: []types.Insight{{Title: "x"}},
		VideoRef:         &videoRef,
		PublishedRefs:    []string{"tiktok:111"},
	})

	out := buf.String()
	assert.Contains(t, out, "Status: completed")
	assert.Contains(t, out, "Approval: approved")
	assert.Contains(t, out, "Published: tiktok:111")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "12345678", shortID("123456789abc"))
	assert.Equal(t, "abc", shortID("abc"))
}
