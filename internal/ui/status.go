package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Status icons
const (
	IconOpen     = "●"
	IconDraft    = "◐"
	IconMerged   = "◆"
	IconClosed   = "○"
	IconSuccess  = "✓"
	IconFailed   = "✗"
	IconRunning  = "◷"
	IconPending  = "◌"
	IconCanceled = "⊘"
	IconSkipped  = "»"
	IconUnknown  = "?"
)

// Status is a merge request, issue or pipeline state with rendering helpers
type Status struct {
	Icon  string
	Label string
	State string
	Style lipgloss.Style
}

// GetStatus returns the Status for a merge request/issue state ("opened",
// "draft", "merged", "closed", "locked") or a pipeline/job status
func GetStatus(state string) Status {
	switch state {
	case "opened":
		return Status{Icon: IconOpen, Label: "Open", State: state, Style: StateOpenStyle}
	case "draft":
		return Status{Icon: IconDraft, Label: "Draft", State: state, Style: StateDraftStyle}
	case "merged":
		return Status{Icon: IconMerged, Label: "Merged", State: state, Style: StateMergedStyle}
	case "closed", "locked":
		return Status{Icon: IconClosed, Label: "Closed", State: state, Style: StateClosedStyle}
	case "success":
		return Status{Icon: IconSuccess, Label: "Passed", State: state, Style: SuccessStyle}
	case "failed":
		return Status{Icon: IconFailed, Label: "Failed", State: state, Style: StateFailedStyle}
	case "running":
		return Status{Icon: IconRunning, Label: "Running", State: state, Style: StateRunningStyle}
	case "pending", "created", "waiting_for_resource", "preparing", "scheduled", "manual":
		return Status{Icon: IconPending, Label: "Pending", State: state, Style: WarningStyle}
	case "canceled", "canceling":
		return Status{Icon: IconCanceled, Label: "Canceled", State: state, Style: StateClosedStyle}
	case "skipped":
		return Status{Icon: IconSkipped, Label: "Skipped", State: state, Style: StateClosedStyle}
	default:
		return Status{Icon: IconUnknown, Label: "Unknown", State: "unknown", Style: StateUnknownStyle}
	}
}

// MergeRequestStatus shows drafts separately from other open merge requests
func MergeRequestStatus(state string, draft bool) Status {
	if draft && state == "opened" {
		return GetStatus("draft")
	}
	return GetStatus(state)
}

// Render returns the full status with icon and label (e.g., "● Open")
func (s Status) Render() string {
	return s.Style.Render(s.Icon + " " + s.Label)
}

// RenderCompact returns just the styled icon
func (s Status) RenderCompact() string {
	return s.Style.Render(s.Icon)
}
