package ui

import (
	"errors"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

func init() {
	// Force lipgloss to initialize and detect terminal before fuzzy finder starts
	// This prevents ANSI escape sequences from leaking into the finder input
	_ = lipgloss.NewStyle().Render("")
	_ = lipgloss.HasDarkBackground()
}

// SelectMergeRequest presents a fuzzy finder over mrs.
// Returns the selected merge request, or nil if the user cancelled.
func SelectMergeRequest(mrs []gitlab.MergeRequest) (*gitlab.MergeRequest, error) {
	// Flush stdout/stderr before starting fuzzy finder to clear any ANSI sequences
	os.Stdout.Sync()
	os.Stderr.Sync()

	idx, err := fuzzyfinder.Find(
		mrs,
		func(i int) string {
			return FormatMergeRequestFinderLine(mrs[i])
		},
		fuzzyfinder.WithPromptString("merge request> "),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return FormatMergeRequestPreview(mrs[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, err
	}

	return &mrs[idx], nil
}
