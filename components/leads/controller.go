package leads

import (
	"context"
	"errors"
	"io"
)

const (
	defaultTemplate = "dashboard.html"

	PageTitle    = "Agent & Lead Command"
	PageSubtitle = "Zenith Realty Partners — Internal Lead Management"
)

var errMissingRenderer = errors.New("leads: template renderer not configured")

type viewService interface {
	View(ctx context.Context, sessionID string, order SortOrder) (DashboardView, error)
	DrainNotices(ctx context.Context, sessionID string) ([]Notice, error)
}

// ControllerOptions wires the controller.
type ControllerOptions struct {
	Service  viewService
	Renderer Renderer
	Charts   *ChartRenderer
	Template string
	BasePath string
}

// Controller turns dashboard views into page payloads and HTML.
type Controller struct {
	service  viewService
	renderer Renderer
	charts   *ChartRenderer
	template string
	basePath string
}

// NewController builds a controller with defaults.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultTemplate
	}
	if opts.Charts == nil {
		opts.Charts = NewChartRenderer()
	}
	if opts.BasePath == "" {
		opts.BasePath = "/admin/leads"
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		charts:   opts.Charts,
		template: opts.Template,
		basePath: opts.BasePath,
	}
}

// View resolves the dashboard view without consuming notices.
func (c *Controller) View(ctx context.Context, sessionID string, order SortOrder) (DashboardView, error) {
	if c.service == nil {
		return DashboardView{}, nil
	}
	return c.service.View(ctx, sessionID, order)
}

// RenderTemplate renders the dashboard page to out. Queued notices are
// consumed and shown once.
func (c *Controller) RenderTemplate(ctx context.Context, sessionID string, order SortOrder, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	view, err := c.View(ctx, sessionID, order)
	if err != nil {
		return err
	}
	var notices []Notice
	if c.service != nil {
		if notices, err = c.service.DrainNotices(ctx, sessionID); err != nil {
			return err
		}
	}
	rendered, err := c.charts.RenderAll(view)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render(c.template, c.pagePayload(view, rendered, notices), out)
	return err
}

func (c *Controller) pagePayload(view DashboardView, rendered RenderedCharts, notices []Notice) map[string]any {
	selected := make(map[string]bool, len(view.Selected))
	for _, id := range view.Selected {
		selected[id] = true
	}
	rows := make([]map[string]any, len(view.Rows))
	for i, lead := range view.Rows {
		rows[i] = map[string]any{
			"id":            lead.ID,
			"name":          lead.Name,
			"initials":      Initials(lead.Name),
			"email":         lead.Email,
			"status":        string(lead.Status),
			"status_color":  StatusColor(string(lead.Status)),
			"agent":         lead.AssignedAgent,
			"agent_color":   AgentColor(lead.AssignedAgent),
			"value":         FormatCurrency(lead.Value),
			"last_activity": FormatDate(lead.LastActivity),
			"selected":      selected[lead.ID],
		}
	}
	statuses := make([]string, 0, len(KnownStatuses)+1)
	statuses = append(statuses, StatusAll)
	for _, status := range KnownStatuses {
		statuses = append(statuses, string(status))
	}
	noticeMaps := make([]map[string]any, len(notices))
	for i, n := range notices {
		noticeMaps[i] = map[string]any{"level": string(n.Level), "message": n.Message}
	}
	return map[string]any{
		"title":           PageTitle,
		"subtitle":        PageSubtitle,
		"base_path":       c.basePath,
		"session_id":      view.SessionID,
		"loading":         view.Fetch.Loading(),
		"fetch_status":    string(view.Fetch.Status),
		"show_error":      view.ShowError,
		"error_title":     view.ErrorTitle,
		"error_message":   view.Fetch.ErrorMessage,
		"search_text":     view.Criteria.SearchText,
		"status_filter":   view.Criteria.Status,
		"statuses":        statuses,
		"sort_field":      string(view.Sort.Field),
		"sort_desc":       view.Sort.Descending,
		"rows":            rows,
		"result_label":    view.ResultLabel,
		"selected_count":  len(view.Selected),
		"selection_label": view.SelectionLabel,
		"notices":         noticeMaps,
		"kpis": map[string]any{
			"total":           view.Summary.TotalLeads,
			"new":             view.Summary.NewLeads,
			"qualified":       view.Summary.QualifiedLeads,
			"portfolio_value": FormatCurrency(view.Summary.PortfolioValue),
		},
		"charts": map[string]any{
			"pipeline_health":   rendered.PipelineHealth,
			"agent_performance": rendered.AgentPerformance,
			"lead_velocity":     rendered.LeadVelocity,
		},
		"bulk_actions": []map[string]any{
			{"code": string(BulkMarkContacted), "label": BulkMarkContacted.Label()},
			{"code": string(BulkDeactivate), "label": BulkDeactivate.Label()},
		},
		"export_filename": ExportFilename,
	}
}
