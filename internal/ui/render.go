package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/history"
)

// RenderMergeRequestList renders merge requests as a table
func RenderMergeRequestList(mrs []gitlab.MergeRequest, now time.Time) string {
	if len(mrs) == 0 {
		return Dim("No merge requests match")
	}

	titleWidth := max(20, GetTerminalWidth()-70)
	t := NewSimpleTable().Headers("MR", "STATE", "TITLE", "BRANCH", "AUTHOR", "UPDATED")
	for _, mr := range mrs {
		t.Row(
			Link(mr.WebURL, "!"+strconv.Itoa(mr.IID)),
			MergeRequestStatus(mr.State, mr.Draft).Render(),
			Truncate(mr.Title, titleWidth),
			Truncate(mr.SourceBranch, 30),
			"@"+mr.Author.Username,
			FormatRelativeTime(mr.UpdatedAt, now),
		)
	}
	return t.String()
}

// RenderMergeRequestDetails renders a single merge request
func RenderMergeRequestDetails(mr *gitlab.MergeRequest) string {
	pipeline := Dim("none")
	if mr.HeadPipeline != nil {
		pipeline = fmt.Sprintf("%s %s", GetStatus(mr.HeadPipeline.Status).Render(),
			Link(mr.HeadPipeline.WebURL, "#"+strconv.Itoa(mr.HeadPipeline.ID)))
	}

	mergeStatus := mr.DetailedMergeStatus
	if mergeStatus == "" {
		mergeStatus = mr.MergeStatus
	}
	if mr.HasConflicts {
		mergeStatus += WarningStyle.Render(" (conflicts)")
	}
	if mr.MergeWhenPipeline {
		mergeStatus += InfoStyle.Render(" (auto-merge set)")
	}

	labels := Dim("none")
	if len(mr.Labels) > 0 {
		labels = strings.Join(mr.Labels, ", ")
	}

	keys := []string{"State", "Branch", "Author", "Pipeline", "Merge status", "Labels", "URL"}
	pairs := map[string]string{
		"State":        MergeRequestStatus(mr.State, mr.Draft).Render(),
		"Branch":       fmt.Sprintf("%s → %s", mr.SourceBranch, mr.TargetBranch),
		"Author":       "@" + mr.Author.Username,
		"Pipeline":     pipeline,
		"Merge status": mergeStatus,
		"Labels":       labels,
		"URL":          Link(mr.WebURL, mr.WebURL),
	}

	content := RenderKeyValueList(pairs, keys)
	if desc := strings.TrimSpace(mr.Description); desc != "" {
		content += "\n\n" + desc
	}
	return RenderBox(fmt.Sprintf("!%d %s", mr.IID, mr.Title), content)
}

// RenderIssueList renders issues as a table
func RenderIssueList(issues []gitlab.Issue, now time.Time) string {
	if len(issues) == 0 {
		return Dim("No issues match")
	}

	titleWidth := max(20, GetTerminalWidth()-70)
	t := NewSimpleTable().Headers("ISSUE", "STATE", "TITLE", "LABELS", "ASSIGNEES", "UPDATED")
	for _, issue := range issues {
		assignees := make([]string, 0, len(issue.Assignees))
		for _, a := range issue.Assignees {
			assignees = append(assignees, "@"+a.Username)
		}
		t.Row(
			Link(issue.WebURL, "#"+strconv.Itoa(issue.IID)),
			GetStatus(issue.State).Render(),
			Truncate(issue.Title, titleWidth),
			Truncate(strings.Join(issue.Labels, ","), 24),
			strings.Join(assignees, " "),
			FormatRelativeTime(issue.UpdatedAt, now),
		)
	}
	return t.String()
}

// RenderHistory renders recorded automerge runs, newest first
func RenderHistory(runs []history.RunRecord, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No automerge runs recorded")
	}

	t := NewTable().Headers("STARTED", "PROJECT", "MR", "OUTCOME", "PIPELINE", "POLLS", "DURATION", "ERROR")
	for _, r := range runs {
		t.Row(
			FormatRelativeTime(r.StartedAt, now),
			r.Project,
			"!"+strconv.Itoa(r.IID),
			OutcomeStyle(r.Outcome).Render(r.Outcome),
			GetStatus(r.PipelineState).Render(),
			strconv.Itoa(r.Polls),
			FormatDuration(r.Duration()),
			Truncate(r.Error, 40),
		)
	}
	return t.String()
}

// OutcomeStyle colors an automerge outcome label
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case automerge.OutcomeMerged.String():
		return SuccessStyle
	case automerge.OutcomeCanceled.String(), automerge.OutcomeTimedOut.String():
		return WarningStyle
	default:
		return ErrorStyle
	}
}

// RenderOutcome renders the single status line printed when an automerge run ends
func RenderOutcome(r automerge.Result) string {
	label := fmt.Sprintf("!%d %s", r.Target.IID, r.Outcome)
	detail := fmt.Sprintf("pipeline %s, %d polls, %s", r.Pipeline, r.Polls, FormatDuration(r.Duration()))
	if r.MergeAttempts > 1 {
		detail += fmt.Sprintf(", %d merge attempts", r.MergeAttempts)
	}

	var icon string
	switch r.Outcome {
	case automerge.OutcomeMerged:
		icon = "✓ "
	case automerge.OutcomeCanceled, automerge.OutcomeTimedOut:
		icon = "⚠ "
	default:
		icon = "✗ "
	}

	line := OutcomeStyle(r.Outcome.String()).Render(icon+label) + " " + Dim("("+detail+")")
	if r.Err != nil && r.Outcome != automerge.OutcomeMerged {
		line += "\n  " + r.Err.Error()
	}
	return line
}
