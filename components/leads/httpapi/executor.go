package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
	"github.com/goliatone/go-leadboard/components/leads/commands"
)

// ErrCommandNotConfigured is returned when an executor slot is empty.
var ErrCommandNotConfigured = errors.New("httpapi: command not configured")

// Executor is the mutation surface transports call into.
type Executor interface {
	UpdateFilter(ctx context.Context, input commands.UpdateFilterInput) error
	ToggleSelection(ctx context.Context, input commands.ToggleSelectionInput) error
	SelectVisible(ctx context.Context, input commands.SelectVisibleInput) error
	ClearSelection(ctx context.Context, input commands.ClearSelectionInput) error
	BulkAction(ctx context.Context, input commands.BulkActionInput) error
	Retry(ctx context.Context, input commands.RetryFetchInput) error
	SimulateError(ctx context.Context, input commands.SimulateErrorInput) error
	DismissError(ctx context.Context, input commands.DismissErrorInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	FilterCommander         gocommand.Commander[commands.UpdateFilterInput]
	ToggleCommander         gocommand.Commander[commands.ToggleSelectionInput]
	SelectVisibleCommander  gocommand.Commander[commands.SelectVisibleInput]
	ClearSelectionCommander gocommand.Commander[commands.ClearSelectionInput]
	BulkCommander           gocommand.Commander[commands.BulkActionInput]
	RetryCommander          gocommand.Commander[commands.RetryFetchInput]
	SimulateErrorCommander  gocommand.Commander[commands.SimulateErrorInput]
	DismissErrorCommander   gocommand.Commander[commands.DismissErrorInput]
}

var _ Executor = (*CommandExecutor)(nil)

// CommandSource is the service surface NewCommandExecutor wires commands to.
// *leads.Service satisfies it.
type CommandSource interface {
	UpdateFilter(ctx context.Context, sessionID string, criteria leads.FilterCriteria) error
	ToggleSelection(ctx context.Context, sessionID, leadID string) error
	SelectVisible(ctx context.Context, sessionID string) (int, error)
	ClearSelection(ctx context.Context, sessionID string) error
	BulkAction(ctx context.Context, sessionID string, action leads.BulkAction) (leads.Notice, error)
	Retry(ctx context.Context, sessionID string) (uint64, error)
	SimulateError(ctx context.Context, sessionID string) (uint64, error)
	DismissError(ctx context.Context, sessionID string) error
}

var _ CommandSource = (*leads.Service)(nil)

// NewCommandExecutor builds every command against service.
func NewCommandExecutor(service CommandSource, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		FilterCommander:         commands.NewUpdateFilterCommand(service, telemetry),
		ToggleCommander:         commands.NewToggleSelectionCommand(service, telemetry),
		SelectVisibleCommander:  commands.NewSelectVisibleCommand(service, telemetry),
		ClearSelectionCommander: commands.NewClearSelectionCommand(service, telemetry),
		BulkCommander:           commands.NewBulkActionCommand(service, telemetry),
		RetryCommander:          commands.NewRetryFetchCommand(service, telemetry),
		SimulateErrorCommander:  commands.NewSimulateErrorCommand(service, telemetry),
		DismissErrorCommander:   commands.NewDismissErrorCommand(service, telemetry),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return ErrCommandNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) UpdateFilter(ctx context.Context, input commands.UpdateFilterInput) error {
	return execute(ctx, e.FilterCommander, input)
}

func (e *CommandExecutor) ToggleSelection(ctx context.Context, input commands.ToggleSelectionInput) error {
	return execute(ctx, e.ToggleCommander, input)
}

func (e *CommandExecutor) SelectVisible(ctx context.Context, input commands.SelectVisibleInput) error {
	return execute(ctx, e.SelectVisibleCommander, input)
}

func (e *CommandExecutor) ClearSelection(ctx context.Context, input commands.ClearSelectionInput) error {
	return execute(ctx, e.ClearSelectionCommander, input)
}

func (e *CommandExecutor) BulkAction(ctx context.Context, input commands.BulkActionInput) error {
	return execute(ctx, e.BulkCommander, input)
}

func (e *CommandExecutor) Retry(ctx context.Context, input commands.RetryFetchInput) error {
	return execute(ctx, e.RetryCommander, input)
}

func (e *CommandExecutor) SimulateError(ctx context.Context, input commands.SimulateErrorInput) error {
	return execute(ctx, e.SimulateErrorCommander, input)
}

func (e *CommandExecutor) DismissError(ctx context.Context, input commands.DismissErrorInput) error {
	return execute(ctx, e.DismissErrorCommander, input)
}
