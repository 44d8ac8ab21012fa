// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/trendcast/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJob outputs a human-readable summary of a job's state.
func (p *Printer) PrintJob(job *types.Job) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type: %s (%s)\n", job.JobType, job.SourceType))
	sb.WriteString(fmt.Sprintf("Status: %s", job.Status))
	if job.ErrorMessage != nil {
		sb.WriteString(fmt.Sprintf("\nError: %s", *job.ErrorMessage))
	}
	if job.StartedAt != nil && job.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("\nDuration: %s", job.CompletedAt.Sub(*job.StartedAt).Round(10*time.Millisecond)))
	}
	p.printBox(fmt.Sprintf("Job %s", shortID(job.ID.String())), sb.String())
}

// PrintRawData outputs a summary of a collection result.
func (p *Printer) PrintRawData(raw *types.RawData) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Items: %d\n", raw.ItemCount()))

	titles := itemTitles(raw)
	shown := len(titles)
	if shown > maxItemsToShow {
		shown = maxItemsToShow
	}
	for _, title := range titles[:shown] {
		sb.WriteString("- " + title + "\n")
	}
	if len(titles) > shown {
		sb.WriteString(fmt.Sprintf("... and %d more", len(titles)-shown))
	}
	p.printBox(fmt.Sprintf("Collected: %s", raw.SourceType), strings.TrimRight(sb.String(), "\n"))
}

// PrintInsights outputs the strongest insights of an analysis result.
func (p *Printer) PrintInsights(analyzed *types.AnalyzedData) {
	var sb strings.Builder
	if analyzed.Summary != "" {
		sb.WriteString(analyzed.Summary + "\n\n")
	}
	shown := len(analyzed.Insights)
	if shown > maxItemsToShow {
		shown = maxItemsToShow
	}
	for i, in := range analyzed.Insights[:shown] {
		sb.WriteString(fmt.Sprintf("%d. %s (%.0f)\n", i+1, in.Title, in.Engagement))
	}
	if len(analyzed.Insights) > shown {
		sb.WriteString(fmt.Sprintf("... and %d more", len(analyzed.Insights)-shown))
	}
	p.printBox(fmt.Sprintf("Insights: %s", analyzed.SourceType), strings.TrimRight(sb.String(), "\n"))
}

// PrintWorkflow outputs a summary of a workflow execution.
func (p *Printer) PrintWorkflow(w *types.WorkflowExecution) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Status: %s\n", w.Status))
	sb.WriteString(fmt.Sprintf("Approval: %s\n", w.ApprovalStatus))
	sb.WriteString(fmt.Sprintf("Insights: %d", len(w.ResearchInsights)))
	if w.VideoRef != nil {
		sb.WriteString(fmt.Sprintf("\nVideo: %s", *w.VideoRef))
	}
	if len(w.PublishedRefs) > 0 {
		sb.WriteString(fmt.Sprintf("\nPublished: %s", strings.Join(w.PublishedRefs, ", ")))
	}
	if w.ErrorMessage != nil {
		sb.WriteString(fmt.Sprintf("\nError: %s", *w.ErrorMessage))
	}
	p.printBox(fmt.Sprintf("Workflow %s", shortID(w.ID.String())), sb.String())
}

// itemTitles flattens whichever variant is populated into display titles.
func itemTitles(raw *types.RawData) []string {
	var titles []string
	switch raw.SourceType {
	case types.SourceReddit:
		for _, item := range raw.RedditPosts {
			titles = append(titles, item.Title)
		}
	case types.SourceGitHub:
		for _, item := range raw.Repos {
			titles = append(titles, item.FullName)
		}
	case types.SourceHackerNews:
		for _, item := range raw.Stories {
			titles = append(titles, item.Title)
		}
	case types.SourceGoogleTrends:
		for _, item := range raw.Trends {
			titles = append(titles, item.Title)
		}
	}
	return titles
}

// shortID abbreviates a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
