package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
)

// DashboardInput identifies the session and table order to resolve.
type DashboardInput struct {
	SessionID string
	Sort      leads.SortOrder
}

type viewService interface {
	View(ctx context.Context, sessionID string, order leads.SortOrder) (leads.DashboardView, error)
}

// DashboardQuery executes read-only view resolution.
type DashboardQuery struct {
	service viewService
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service viewService) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[DashboardInput, leads.DashboardView] = (*DashboardQuery)(nil)

// Query derives the dashboard view for the session.
func (q *DashboardQuery) Query(ctx context.Context, input DashboardInput) (leads.DashboardView, error) {
	return q.service.View(ctx, input.SessionID, input.Sort)
}
