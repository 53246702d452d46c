package leads

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the pipeline stage of a lead.
type Status string

const (
	StatusNew       Status = "New"
	StatusContacted Status = "Contacted"
	StatusQualified Status = "Qualified"
	StatusLost      Status = "Lost"

	// StatusAll is the filter wildcard; it never appears on a record.
	StatusAll = "All"
)

// KnownStatuses lists the pipeline stages in display order.
var KnownStatuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusLost}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	raw = strings.TrimSpace(raw)
	for _, status := range KnownStatuses {
		if strings.EqualFold(raw, string(status)) {
			return status, true
		}
	}
	return "", false
}

// Lead is a single prospective customer record.
type Lead struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Email         string    `json:"email" yaml:"email"`
	Status        Status    `json:"status" yaml:"status"`
	AssignedAgent string    `json:"assigned_agent" yaml:"assigned_agent"`
	Value         float64   `json:"value" yaml:"value"`
	LastActivity  time.Time `json:"last_activity" yaml:"last_activity"`
}

// FilterCriteria narrows the working set shown to a viewer.
type FilterCriteria struct {
	SearchText string `json:"search_text" yaml:"search_text"`
	Status     string `json:"status" yaml:"status"`
}

// StatusFilter returns the normalized status filter, defaulting to All.
func (c FilterCriteria) StatusFilter() string {
	status := strings.TrimSpace(c.Status)
	if status == "" || strings.EqualFold(status, StatusAll) {
		return StatusAll
	}
	if known, ok := ParseStatus(status); ok {
		return string(known)
	}
	return status
}

// Validate rejects a status filter that is neither a known status nor All.
func (c FilterCriteria) Validate() error {
	status := c.StatusFilter()
	if _, ok := ParseStatus(status); !ok && status != StatusAll {
		return fmt.Errorf("%w: %q", ErrInvalidFilter, c.Status)
	}
	return nil
}

// FetchStatus tracks the lifecycle of the simulated fetch.
type FetchStatus string

const (
	FetchIdle    FetchStatus = "idle"
	FetchLoading FetchStatus = "loading"
	FetchLoaded  FetchStatus = "loaded"
	FetchFailed  FetchStatus = "failed"
)

// FetchState is a snapshot of the fetch simulator.
type FetchState struct {
	Status       FetchStatus `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Records      []Lead      `json:"-"`
	Generation   uint64      `json:"generation"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Loading reports whether a fetch is in flight.
func (s FetchState) Loading() bool { return s.Status == FetchLoading }

// StatusDatum is one slice of the pipeline donut.
type StatusDatum struct {
	Status string `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
	Color  string `json:"color" yaml:"color"`
}

// AgentDatum is the total portfolio value managed by an agent.
type AgentDatum struct {
	Agent      string  `json:"agent" yaml:"agent"`
	TotalValue float64 `json:"total_value" yaml:"total_value"`
	Color      string  `json:"color" yaml:"color"`
}

// ActivityDatum counts leads whose last activity fell on Day (YYYY-MM-DD).
type ActivityDatum struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

// KPISummary backs the header cards.
type KPISummary struct {
	TotalLeads     int     `json:"total_leads" yaml:"total_leads"`
	NewLeads       int     `json:"new_leads" yaml:"new_leads"`
	QualifiedLeads int     `json:"qualified_leads" yaml:"qualified_leads"`
	PortfolioValue float64 `json:"portfolio_value" yaml:"portfolio_value"`
}

// NoticeLevel mirrors the severity of a user-facing message.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message produced by an action.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// RecordSource supplies the full lead collection to the fetch simulator.
type RecordSource interface {
	Records(ctx context.Context) ([]Lead, error)
}

// FetchEvent describes a fetch state transition for a session.
type FetchEvent struct {
	SessionID    string      `json:"session_id"`
	Status       FetchStatus `json:"status"`
	Generation   uint64      `json:"generation"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Records      int         `json:"records"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

// RefreshHook receives fetch events so transports can push updates.
type RefreshHook interface {
	FetchUpdated(ctx context.Context, event FetchEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) FetchUpdated(context.Context, FetchEvent) error { return nil }
