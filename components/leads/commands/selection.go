package commands

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// ToggleSelectionInput flips one lead in the session selection.
type ToggleSelectionInput struct {
	SessionID string `json:"session_id"`
	LeadID    string `json:"id"`
}

// SelectVisibleInput selects every lead matching the session filter.
type SelectVisibleInput struct {
	SessionID string `json:"session_id"`
}

// ClearSelectionInput empties the session selection.
type ClearSelectionInput struct {
	SessionID string `json:"session_id"`
}

type selectionService interface {
	ToggleSelection(ctx context.Context, sessionID, leadID string) error
	SelectVisible(ctx context.Context, sessionID string) (int, error)
	ClearSelection(ctx context.Context, sessionID string) error
}

// ToggleSelectionCommand adds or removes a lead from the selection.
type ToggleSelectionCommand struct {
	service   selectionService
	telemetry Telemetry
}

// NewToggleSelectionCommand creates the command.
func NewToggleSelectionCommand(service selectionService, telemetry Telemetry) *ToggleSelectionCommand {
	return &ToggleSelectionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ToggleSelectionInput] = (*ToggleSelectionCommand)(nil)

// Execute toggles the lead.
func (c *ToggleSelectionCommand) Execute(ctx context.Context, msg ToggleSelectionInput) error {
	if c.service == nil {
		return errors.New("toggle selection command requires service")
	}
	leadID := strings.TrimSpace(msg.LeadID)
	if leadID == "" {
		return errors.New("toggle selection command requires lead id")
	}
	if err := c.service.ToggleSelection(ctx, msg.SessionID, leadID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.selection.toggle", map[string]any{
		"session_id": msg.SessionID,
		"lead_id":    leadID,
	})
	return nil
}

// SelectVisibleCommand selects all visible leads.
type SelectVisibleCommand struct {
	service   selectionService
	telemetry Telemetry
}

// NewSelectVisibleCommand creates the command.
func NewSelectVisibleCommand(service selectionService, telemetry Telemetry) *SelectVisibleCommand {
	return &SelectVisibleCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectVisibleInput] = (*SelectVisibleCommand)(nil)

// Execute replaces the selection with the visible leads.
func (c *SelectVisibleCommand) Execute(ctx context.Context, msg SelectVisibleInput) error {
	if c.service == nil {
		return errors.New("select visible command requires service")
	}
	count, err := c.service.SelectVisible(ctx, msg.SessionID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.selection.visible", map[string]any{
		"session_id": msg.SessionID,
		"count":      count,
	})
	return nil
}

// ClearSelectionCommand empties the selection.
type ClearSelectionCommand struct {
	service   selectionService
	telemetry Telemetry
}

// NewClearSelectionCommand creates the command.
func NewClearSelectionCommand(service selectionService, telemetry Telemetry) *ClearSelectionCommand {
	return &ClearSelectionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearSelectionInput] = (*ClearSelectionCommand)(nil)

// Execute clears the selection.
func (c *ClearSelectionCommand) Execute(ctx context.Context, msg ClearSelectionInput) error {
	if c.service == nil {
		return errors.New("clear selection command requires service")
	}
	if err := c.service.ClearSelection(ctx, msg.SessionID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.selection.clear", map[string]any{
		"session_id": msg.SessionID,
	})
	return nil
}
