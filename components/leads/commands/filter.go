package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
)

// UpdateFilterInput replaces the filter criteria of a session.
type UpdateFilterInput struct {
	SessionID  string `json:"session_id"`
	SearchText string `json:"search_text"`
	Status     string `json:"status"`
}

type filterService interface {
	UpdateFilter(ctx context.Context, sessionID string, criteria leads.FilterCriteria) error
}

// UpdateFilterCommand applies search text and status filters.
type UpdateFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewUpdateFilterCommand creates the command.
func NewUpdateFilterCommand(service filterService, telemetry Telemetry) *UpdateFilterCommand {
	return &UpdateFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateFilterInput] = (*UpdateFilterCommand)(nil)

// Execute delegates to the lead service.
func (c *UpdateFilterCommand) Execute(ctx context.Context, msg UpdateFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires service")
	}
	criteria := leads.FilterCriteria{SearchText: msg.SearchText, Status: msg.Status}
	if err := c.service.UpdateFilter(ctx, msg.SessionID, criteria); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "leads.command.filter", map[string]any{
		"session_id": msg.SessionID,
		"status":     criteria.StatusFilter(),
	})
	return nil
}
