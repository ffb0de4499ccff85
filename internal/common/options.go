package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/bjulian5/gitlab-cli/internal/auth"
	"github.com/bjulian5/gitlab-cli/internal/automerge"
	"github.com/bjulian5/gitlab-cli/internal/config"
	"github.com/bjulian5/gitlab-cli/internal/gitlab"
	"github.com/bjulian5/gitlab-cli/internal/ui"
)

// ExitCodeAuth is the process status for any authentication failure
const ExitCodeAuth = 5

// GlobalOptions holds the persistent root flags and the loaded config.
// The root command fills it in before any subcommand runs.
type GlobalOptions struct {
	Project string
	Verbose bool
	JSON    bool

	Config *config.Config
}

// Client authenticates and builds the GitLab client
func (o *GlobalOptions) Client(ctx context.Context) (*gitlab.Client, error) {
	return InitClients(ctx, o.Config)
}

// ResolveProject resolves the target project from the working directory
func (o *GlobalOptions) ResolveProject(ctx context.Context) (string, error) {
	return ResolveProject(ctx, o.Project, o.Config, ".")
}

// Render prints v as JSON when --json is set, and render() otherwise
func (o *GlobalOptions) Render(v any, render func() string) error {
	if o.JSON {
		return ui.PrintJSON(v)
	}
	ui.Print(render())
	return nil
}

// ExitError carries a specific process exit status up to Execute
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// OutcomeError converts a finished automerge run into the error the command
// returns: nil when merged, otherwise an ExitError with the outcome's code.
// The status line has already been printed, so the error is silent.
func OutcomeError(r automerge.Result) error {
	if r.Outcome == automerge.OutcomeMerged {
		return nil
	}
	return SilentExit(r.Outcome.ExitCode())
}

// errSilent marks an ExitError whose message was already shown to the user
var errSilent = errors.New("")

// SilentExit exits with code without printing anything further
func SilentExit(code int) error {
	return &ExitError{Code: code, Err: errSilent}
}

// ExitCode maps err to a process exit status and reports whether the error
// still needs to be printed
func ExitCode(err error) (code int, print bool) {
	if err == nil {
		return 0, false
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, !errors.Is(exitErr.Err, errSilent)
	}

	var authErr *auth.AuthError
	if errors.As(err, &authErr) || gitlab.IsUnauthorized(err) {
		return ExitCodeAuth, true
	}

	if errors.Is(err, context.Canceled) {
		return automerge.OutcomeCanceled.ExitCode(), false
	}
	return 1, true
}

// Report prints what the user still needs to see about err and returns the
// exit status. A cancellation that interrupted no automerge run gets a single
// "canceled" line, since nothing else reported it.
func Report(err error) int {
	code, print := ExitCode(err)
	switch {
	case print:
		ui.Error(err.Error())
	case errors.Is(err, context.Canceled):
		ui.Warning("canceled")
	}
	return code
}

// Setup resolves the project and builds an authenticated client. Project
// resolution comes first so a missing project fails before any device flow.
func (o *GlobalOptions) Setup(ctx context.Context) (*gitlab.Client, string, error) {
	project, err := o.ResolveProject(ctx)
	if err != nil {
		return nil, "", err
	}
	client, err := o.Client(ctx)
	if err != nil {
		return nil, "", err
	}
	return client, project, nil
}
