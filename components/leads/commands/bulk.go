package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
)

// BulkActionInput applies Action to the session's selected leads.
type BulkActionInput struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
}

type bulkService interface {
	BulkAction(ctx context.Context, sessionID string, action leads.BulkAction) (leads.Notice, error)
}

// BulkActionCommand runs a bulk action. The resulting notice is queued on
// the session and shown on the next render.
type BulkActionCommand struct {
	service   bulkService
	telemetry Telemetry
}

// NewBulkActionCommand creates the command.
func NewBulkActionCommand(service bulkService, telemetry Telemetry) *BulkActionCommand {
	return &BulkActionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[BulkActionInput] = (*BulkActionCommand)(nil)

// Execute validates the action and delegates to the service.
func (c *BulkActionCommand) Execute(ctx context.Context, msg BulkActionInput) error {
	if c.service == nil {
		return errors.New("bulk action command requires service")
	}
	action, err := leads.ParseBulkAction(msg.Action)
	if err != nil {
		return err
	}
	notice, err := c.service.BulkAction(ctx, msg.SessionID, action)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.bulk", map[string]any{
		"session_id": msg.SessionID,
		"action":     string(action),
		"level":      string(notice.Level),
	})
	return nil
}
