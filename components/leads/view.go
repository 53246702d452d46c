package leads

import "fmt"

// DashboardView is everything the dashboard page renders for a session.
type DashboardView struct {
	SessionID        string          `json:"session_id"`
	Fetch            FetchState      `json:"fetch"`
	ShowError        bool            `json:"show_error"`
	ErrorTitle       string          `json:"error_title,omitempty"`
	Criteria         FilterCriteria  `json:"criteria"`
	Sort             SortOrder       `json:"sort"`
	Rows             []Lead          `json:"rows"`
	ResultLabel      string          `json:"result_label"`
	Summary          KPISummary      `json:"summary"`
	StatusBreakdown  []StatusDatum   `json:"status_breakdown"`
	AgentPerformance []AgentDatum    `json:"agent_performance"`
	ActivityTimeline []ActivityDatum `json:"activity_timeline"`
	Selected         []string        `json:"selected"`
	SelectionLabel   string          `json:"selection_label,omitempty"`
}

// ViewInput is the state a DashboardView is derived from.
type ViewInput struct {
	SessionID         string
	Fetch             FetchState
	Criteria          FilterCriteria
	Selected          []string
	DismissedErrorGen uint64
	Sort              SortOrder
}

// BuildView derives the dashboard view. Identical inputs give identical views.
func BuildView(in ViewInput) DashboardView {
	if in.Sort.Field == "" {
		in.Sort = DefaultSortOrder
	}
	visible := ApplyFilter(in.Fetch.Records, in.Criteria)
	view := DashboardView{
		SessionID:        in.SessionID,
		Fetch:            in.Fetch,
		Criteria:         FilterCriteria{SearchText: in.Criteria.SearchText, Status: in.Criteria.StatusFilter()},
		Sort:             in.Sort,
		Rows:             SortLeads(visible, in.Sort),
		ResultLabel:      fmt.Sprintf("%d lead(s) found", len(visible)),
		Summary:          Summarize(visible),
		StatusBreakdown:  GroupByStatus(visible),
		AgentPerformance: SumValueByAgent(visible),
		ActivityTimeline: BucketActivityByDay(visible),
		Selected:         append([]string{}, in.Selected...),
	}
	if in.Fetch.Status == FetchFailed && in.Fetch.Generation != in.DismissedErrorGen {
		view.ShowError = true
		view.ErrorTitle = FetchErrorTitle
	}
	if n := len(in.Selected); n > 0 {
		view.SelectionLabel = fmt.Sprintf("%d lead(s) selected", n)
	}
	return view
}
