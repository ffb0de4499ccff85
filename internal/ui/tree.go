package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

// RenderPipelineTree renders a pipeline with its jobs grouped by stage, in
// the order the stages first appear
// Example output:
//
//	● #4821 main (a1b2c3d)
//	├─ build
//	│  ╰─ ✓ compile 1m12s
//	╰─ test
//	   ├─ ✓ unit 2m3s
//	   ╰─ ✗ lint 14s
func RenderPipelineTree(p *gitlab.Pipeline, jobs []gitlab.Job) string {
	sha := p.SHA
	if len(sha) > 7 {
		sha = sha[:7]
	}
	root := fmt.Sprintf("%s %s %s %s",
		GetStatus(p.Status).Render(),
		TreeRootStyle.Render(Link(p.WebURL, "#"+strconv.Itoa(p.ID))),
		p.Ref,
		Dim("("+sha+")"))

	if len(jobs) == 0 {
		return root + "\n" + Dim("  No jobs")
	}

	t := tree.Root(root)
	stages := map[string]*tree.Tree{}
	for _, job := range jobs {
		stage, ok := stages[job.Stage]
		if !ok {
			stage = tree.Root(Bold(job.Stage))
			stages[job.Stage] = stage
			t.Child(stage)
		}
		stage.Child(formatJobForTree(job))
	}

	t.Enumerator(roundedEnumerator).
		EnumeratorStyle(TreeEnumeratorStyle).
		Indenter(treeIndenter)
	return t.String()
}

func formatJobForTree(job gitlab.Job) string {
	label := fmt.Sprintf("%s %s", GetStatus(job.Status).RenderCompact(), Link(job.WebURL, job.Name))
	if job.Duration > 0 {
		label += " " + Dim(FormatDuration(time.Duration(job.Duration*float64(time.Second))))
	}
	if job.AllowFailure && job.Status == "failed" {
		label += " " + WarningStyle.Render("(allowed to fail)")
	}
	return label
}

func roundedEnumerator(children tree.Children, i int) string {
	if i == children.Length()-1 {
		return "╰─ "
	}
	return "├─ "
}

func treeIndenter(children tree.Children, i int) string {
	if i == children.Length()-1 {
		return "   "
	}
	return "│  "
}
