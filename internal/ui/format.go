package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

// Truncate truncates text to maxLen with an ellipsis if needed
// Uses lipgloss for proper ANSI-aware width handling
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	width := lipgloss.Width(text)
	if width <= maxLen {
		return text
	}

	if maxLen <= 3 {
		return lipgloss.NewStyle().MaxWidth(maxLen).Render(text)
	}
	return lipgloss.NewStyle().MaxWidth(maxLen-3).Render(text) + "..."
}

func Pad(text string, width int, align lipgloss.Position) string {
	return lipgloss.PlaceHorizontal(width, align, text)
}

func RenderBox(title string, content string) string {
	style := BoxStyle
	if title != "" {
		style = style.BorderForeground(ColorPrimary)
		combined := lipgloss.JoinVertical(lipgloss.Left, HighlightStyle.Render(title), "", content)
		return style.Render(combined)
	}
	return style.Render(content)
}

func RenderKeyValue(key string, value string) string {
	return fmt.Sprintf("%s %s", DimStyle.Render(key+":"), value)
}

// RenderKeyValueList renders aligned "key: value" lines in the order of keys
func RenderKeyValueList(pairs map[string]string, keys []string) string {
	maxKeyLen := 0
	for _, key := range keys {
		maxKeyLen = max(maxKeyLen, lipgloss.Width(key))
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		paddedKey := Pad(key+":", maxKeyLen+1, lipgloss.Left)
		lines = append(lines, fmt.Sprintf("%s %s", DimStyle.Render(paddedKey), pairs[key]))
	}
	return strings.Join(lines, "\n")
}

// FormatRelativeTime renders t relative to now, e.g. "3h ago"
func FormatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Format("2006-01-02")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// FormatDuration renders d rounded to the second, e.g. "2m30s"
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return d.Round(time.Second).String()
}

// FormatMergeRequestFinderLine formats a merge request for the fuzzy finder.
// The finder does not render ANSI codes, so this is plain text.
func FormatMergeRequestFinderLine(mr gitlab.MergeRequest) string {
	status := MergeRequestStatus(mr.State, mr.Draft)
	return fmt.Sprintf("!%-5d %s %s  [%s → %s]  @%s",
		mr.IID, status.Icon, mr.Title, mr.SourceBranch, mr.TargetBranch, mr.Author.Username)
}

// FormatMergeRequestPreview formats a merge request for the finder preview window
func FormatMergeRequestPreview(mr gitlab.MergeRequest) string {
	pipeline := "none"
	if mr.HeadPipeline != nil {
		pipeline = GetStatus(mr.HeadPipeline.Status).Render()
	}

	lines := []string{
		RenderKeyValue("MR", fmt.Sprintf("!%d %s", mr.IID, Bold(mr.Title))),
		RenderKeyValue("State", MergeRequestStatus(mr.State, mr.Draft).Render()),
		RenderKeyValue("Branch", fmt.Sprintf("%s → %s", mr.SourceBranch, mr.TargetBranch)),
		RenderKeyValue("Author", "@"+mr.Author.Username),
		RenderKeyValue("Pipeline", pipeline),
	}
	if mr.HasConflicts {
		lines = append(lines, WarningStyle.Render("⚠ has conflicts"))
	}
	if mr.Description != "" {
		lines = append(lines, "", Bold("Description:"), mr.Description)
	}
	return strings.Join(lines, "\n")
}
