package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RetryFetchInput refetches the session's leads without a pending error.
type RetryFetchInput struct {
	SessionID string `json:"session_id"`
}

// SimulateErrorInput makes the session's next fetch fail.
type SimulateErrorInput struct {
	SessionID string `json:"session_id"`
}

// DismissErrorInput hides the session's current fetch error.
type DismissErrorInput struct {
	SessionID string `json:"session_id"`
}

type fetchService interface {
	Retry(ctx context.Context, sessionID string) (uint64, error)
	SimulateError(ctx context.Context, sessionID string) (uint64, error)
	DismissError(ctx context.Context, sessionID string) error
}

// RetryFetchCommand restarts the fetch after a failure.
type RetryFetchCommand struct {
	service   fetchService
	telemetry Telemetry
}

// NewRetryFetchCommand creates the command.
func NewRetryFetchCommand(service fetchService, telemetry Telemetry) *RetryFetchCommand {
	return &RetryFetchCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RetryFetchInput] = (*RetryFetchCommand)(nil)

// Execute starts a clean fetch.
func (c *RetryFetchCommand) Execute(ctx context.Context, msg RetryFetchInput) error {
	if c.service == nil {
		return errors.New("retry command requires service")
	}
	gen, err := c.service.Retry(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.retry", map[string]any{
		"session_id": msg.SessionID,
		"generation": gen,
	})
	return nil
}

// SimulateErrorCommand arms a one-shot failure and refetches.
type SimulateErrorCommand struct {
	service   fetchService
	telemetry Telemetry
}

// NewSimulateErrorCommand creates the command.
func NewSimulateErrorCommand(service fetchService, telemetry Telemetry) *SimulateErrorCommand {
	return &SimulateErrorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SimulateErrorInput] = (*SimulateErrorCommand)(nil)

// Execute arms the failure.
func (c *SimulateErrorCommand) Execute(ctx context.Context, msg SimulateErrorInput) error {
	if c.service == nil {
		return errors.New("simulate error command requires service")
	}
	gen, err := c.service.SimulateError(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.simulate_error", map[string]any{
		"session_id": msg.SessionID,
		"generation": gen,
	})
	return nil
}

// DismissErrorCommand hides the error alert.
type DismissErrorCommand struct {
	service   fetchService
	telemetry Telemetry
}

// NewDismissErrorCommand creates the command.
func NewDismissErrorCommand(service fetchService, telemetry Telemetry) *DismissErrorCommand {
	return &DismissErrorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DismissErrorInput] = (*DismissErrorCommand)(nil)

// Execute dismisses the alert.
func (c *DismissErrorCommand) Execute(ctx context.Context, msg DismissErrorInput) error {
	if c.service == nil {
		return errors.New("dismiss error command requires service")
	}
	if err := c.service.DismissError(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.dismiss_error", map[string]any{
		"session_id": msg.SessionID,
	})
	return nil
}
