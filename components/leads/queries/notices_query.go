package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-leadboard/components/leads"
)

// NoticesInput identifies the session whose notices are drained.
type NoticesInput struct {
	SessionID string
}

type noticeService interface {
	DrainNotices(ctx context.Context, sessionID string) ([]leads.Notice, error)
}

// NoticesQuery returns queued notices once.
type NoticesQuery struct {
	service noticeService
}

// NewNoticesQuery builds the query.
func NewNoticesQuery(service noticeService) *NoticesQuery {
	return &NoticesQuery{service: service}
}

var _ gocommand.Querier[NoticesInput, []leads.Notice] = (*NoticesQuery)(nil)

// Query drains the session's notices.
func (q *NoticesQuery) Query(ctx context.Context, input NoticesInput) ([]leads.Notice, error) {
	notices, err := q.service.DrainNotices(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if notices == nil {
		notices = []leads.Notice{}
	}
	return notices, nil
}
