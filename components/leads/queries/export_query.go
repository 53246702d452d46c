package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
)

// ExportInput identifies the session whose filtered leads are exported.
type ExportInput struct {
	SessionID string
}

type exportService interface {
	Export(ctx context.Context, sessionID string) (leads.ExportResult, error)
}

// ExportQuery serializes the visible leads to CSV.
type ExportQuery struct {
	service exportService
}

// NewExportQuery builds the query.
func NewExportQuery(service exportService) *ExportQuery {
	return &ExportQuery{service: service}
}

var _ gocommand.Querier[ExportInput, leads.ExportResult] = (*ExportQuery)(nil)

// Query runs the export.
func (q *ExportQuery) Query(ctx context.Context, input ExportInput) (leads.ExportResult, error) {
	return q.service.Export(ctx, input.SessionID)
}
