package ui

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
)

type progressStatusMsg string

type progressDoneMsg struct{}

type progressModel struct {
	spinner spinner.Model
	title   string
	status  string
	done    bool
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressStatusMsg:
		m.status = string(msg)
		return m, nil
	case progressDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.title, Dim(m.status))
}

// Progress shows a spinner with a status line on stderr while a long
// operation runs. On a non-terminal it prints a line only when the state or
// the pipeline status changes; polls and retries stay in the debug log.
type Progress struct {
	program *tea.Program
	done    chan struct{}

	mu       sync.Mutex
	last     string
	pipeline gitlab.PipelineState
	stop     sync.Once
}

func StartProgress(title string) *Progress {
	p := &Progress{}
	if !IsTerminal(os.Stderr) {
		fmt.Fprintln(Err, title)
		return p
	}

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(HighlightStyle),
	)
	p.program = tea.NewProgram(
		progressModel{spinner: s, title: title},
		tea.WithOutput(os.Stderr),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
	return p
}

// Update replaces the status line
func (p *Progress) Update(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status == p.last {
		return
	}
	p.last = status

	if p.program == nil {
		fmt.Fprintln(Err, Dim("  "+status))
		return
	}
	p.program.Send(progressStatusMsg(status))
}

// Stop clears the spinner and waits for it to release the terminal
func (p *Progress) Stop() {
	p.stop.Do(func() {
		if p.program == nil {
			return
		}
		p.program.Send(progressDoneMsg{})
		<-p.done
	})
}

// Observer adapts the progress display to automerge events
func (p *Progress) Observer() automerge.Observer {
	return func(e automerge.Event) {
		if p.program != nil {
			p.Update(DescribeEvent(e))
			return
		}
		if !p.changed(e) {
			return
		}
		if e.Kind == automerge.EventPoll {
			p.Update("pipeline " + string(e.Pipeline))
			return
		}
		p.Update(DescribeEvent(e))
	}
}

// changed reports whether e is worth a line of plain output
func (p *Progress) changed(e automerge.Event) bool {
	switch e.Kind {
	case automerge.EventTransition:
		return true
	case automerge.EventPoll:
		p.mu.Lock()
		defer p.mu.Unlock()
		if e.Pipeline == p.pipeline {
			return false
		}
		p.pipeline = e.Pipeline
		return true
	default:
		return false
	}
}

// DescribeEvent renders an automerge event as a one-line status
func DescribeEvent(e automerge.Event) string {
	switch e.Kind {
	case automerge.EventRetry:
		return fmt.Sprintf("retry %d after error: %v", e.Attempt, e.Err)
	case automerge.EventPoll:
		return fmt.Sprintf("pipeline %s (poll %d)", e.Pipeline, e.Polls)
	default:
		switch e.State {
		case automerge.StatePolling:
			return "waiting for pipeline"
		case automerge.StateMerging:
			return "pipeline passed, merging"
		default:
			return e.State.String()
		}
	}
}
