package gorouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-leadboard/components/leads"
	"github.com/goliatone/go-leadboard/components/leads/httpapi"
	"github.com/goliatone/go-leadboard/components/leads/queries"
	"github.com/goliatone/go-leadboard/pkg/activity"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/pipeline"})
	if routes.HTML != "/pipeline" {
		t.Fatalf("expected override to be kept, got %s", routes.HTML)
	}
	if routes.Export != "/leads/export.csv" || routes.WebSocket != "/leads/ws" {
		t.Fatalf("unexpected defaults %+v", routes)
	}
}

func TestResolveSessionOrder(t *testing.T) {
	if got := resolveSession("hdr", "query", "local"); got != "hdr" {
		t.Fatalf("expected header to win, got %s", got)
	}
	if got := resolveSession(" ", "query", "local"); got != "query" {
		t.Fatalf("expected query fallback, got %s", got)
	}
	if got := resolveSession("", "", "local"); got != "local" {
		t.Fatalf("expected locals fallback, got %s", got)
	}
	if got := resolveSession("", "", ""); got != leads.DefaultSessionID {
		t.Fatalf("expected default session, got %s", got)
	}
}

func TestEndpointsHTML(t *testing.T) {
	e, _ := newEndpoints(t)
	res := e.html(newRequest("s-1", ""))
	if res.raw == nil {
		t.Fatalf("expected HTML body, got %+v", res)
	}
	if res.headers["Content-Type"] != "text/html; charset=utf-8" {
		t.Fatalf("unexpected headers %+v", res.headers)
	}
}

func TestEndpointsFilterAndView(t *testing.T) {
	e, _ := newEndpoints(t)

	res := e.updateFilter(newRequest("s-1", `{"search_text":"liam"}`))
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", res.status, res.json)
	}
	res = e.view(newRequest("s-1", ""))
	view, ok := res.json.(leads.DashboardView)
	if !ok {
		t.Fatalf("expected DashboardView, got %T", res.json)
	}
	if len(view.Rows) != 1 || view.Rows[0].ID != "LD-2" {
		t.Fatalf("expected filtered rows, got %+v", view.Rows)
	}

	res = e.updateFilter(newRequest("s-1", `{"status":"Archived"}`))
	if res.status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.status)
	}
	res = e.updateFilter(newRequest("s-1", `{`))
	if res.status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", res.status)
	}
}

func TestEndpointsSelectionAndBulk(t *testing.T) {
	e, recorder := newEndpoints(t)

	if res := e.toggleSelection(newRequest("s-1", `{}`)); res.status != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", res.status)
	}
	if res := e.toggleSelection(newRequest("s-1", `{"id":"LD-404"}`)); res.status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown lead, got %d", res.status)
	}
	if res := e.selectVisible(newRequest("s-1", "")); res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	if res := e.bulkAction(newRequest("s-1", `{"action":"Mark Contacted"}`)); res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", res.status, res.json)
	}
	if recorder.count != 2 {
		t.Fatalf("expected one activity event per lead, got %d", recorder.count)
	}
	if res := e.clearSelection(newRequest("s-1", "")); res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}

	res := e.drainNotices(newRequest("s-1", ""))
	body, _ := json.Marshal(res.json)
	if !strings.Contains(string(body), "Marked 2 lead(s) as Contacted") {
		t.Fatalf("expected bulk notice, got %s", body)
	}
}

func TestEndpointsExport(t *testing.T) {
	e, _ := newEndpoints(t)

	res := e.exportCSV(newRequest("s-1", ""))
	if !strings.HasPrefix(string(res.raw), "ID,Name,Email") {
		t.Fatalf("expected CSV body, got %q", res.raw)
	}
	if res.headers["Content-Disposition"] != `attachment; filename="zenith-leads-report.csv"` {
		t.Fatalf("unexpected headers %+v", res.headers)
	}

	e.updateFilter(newRequest("s-1", `{"search_text":"nobody"}`))
	res = e.exportCSV(newRequest("s-1", ""))
	if res.raw != nil || res.status != http.StatusOK {
		t.Fatalf("expected JSON notice for empty export, got %+v", res)
	}
}

func TestEndpointsFetchLifecycle(t *testing.T) {
	e, _ := newEndpoints(t)

	if res := e.simulateError(newRequest("s-1", "")); res.status != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.status)
	}
	view := waitView(t, e, "s-1")
	if !view.ShowError || view.Fetch.Status != leads.FetchFailed {
		t.Fatalf("expected failed fetch, got %+v", view.Fetch)
	}
	if res := e.dismissError(newRequest("s-1", "")); res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	if res := e.retry(newRequest("s-1", "")); res.status != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.status)
	}
	view = waitView(t, e, "s-1")
	if view.Fetch.Status != leads.FetchLoaded || view.ShowError {
		t.Fatalf("expected loaded fetch, got %+v", view.Fetch)
	}
}

func TestEndpointsNewSession(t *testing.T) {
	e, _ := newEndpoints(t)
	res := e.newSession(newRequest("", ""))
	if res.status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", res.status)
	}
	body := res.json.(map[string]string)
	if body["session_id"] == "" {
		t.Fatalf("expected session id")
	}

	e.sessions = failingStarter{}
	if res := e.newSession(newRequest("", "")); res.status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.status)
	}
}

func TestEndpointsCloseSession(t *testing.T) {
	e, _ := newEndpoints(t)
	if res := e.toggleSelection(newRequest("s-1", `{"id":"LD-1"}`)); res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}

	res := e.closeSession(newRequest("s-1", ""))
	if res.status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.status)
	}
	view := e.view(newRequest("s-1", "")).json.(leads.DashboardView)
	if len(view.Selected) != 0 {
		t.Fatalf("expected a fresh session, got selection %v", view.Selected)
	}

	e.sessions = failingStarter{}
	if res := e.closeSession(newRequest("s-1", "")); res.status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.status)
	}
}

// --- Test helpers ---

func newRequest(sessionID, body string) request {
	return request{
		ctx:       context.Background(),
		sessionID: sessionID,
		body:      []byte(body),
		query:     func(string) string { return "" },
	}
}

func newEndpoints(t *testing.T) (endpoints, *countingActivity) {
	t.Helper()
	recorder := &countingActivity{}
	svc := leads.NewService(leads.Options{
		Source: leads.NewRecordStore([]leads.Lead{
			{ID: "LD-1", Name: "Olivia Bennett", Email: "olivia@example.com", Status: leads.StatusNew, AssignedAgent: "Sarah Jenkins", Value: 300000, LastActivity: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)},
			{ID: "LD-2", Name: "Liam Carter", Email: "liam@example.com", Status: leads.StatusQualified, AssignedAgent: "Mike Ross", Value: 500000, LastActivity: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
		}),
		Fetch:    leads.FetchOptions{Delay: -1},
		Activity: recorder,
	})
	waitFetch(t, svc, "s-1")
	controller := leads.NewController(leads.ControllerOptions{
		Service:  svc,
		Renderer: &stubRenderer{},
		Charts:   leads.NewChartRenderer(leads.WithChartCache(nil)),
	})
	return endpoints{
		controller: controller,
		api:        httpapi.NewCommandExecutor(svc, nil),
		export:     queries.NewExportQuery(svc),
		notices:    queries.NewNoticesQuery(svc),
		sessions:   svc,
	}, recorder
}

func waitFetch(t *testing.T, svc *leads.Service, sessionID string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := svc.WaitForFetch(ctx, sessionID); err != nil {
		t.Fatalf("wait for fetch: %v", err)
	}
}

func waitView(t *testing.T, e endpoints, sessionID string) leads.DashboardView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		view := e.view(newRequest(sessionID, "")).json.(leads.DashboardView)
		if !view.Fetch.Loading() || time.Now().After(deadline) {
			return view
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

type countingActivity struct {
	count int
}

func (c *countingActivity) Emit(context.Context, activity.Event) error {
	c.count++
	return nil
}

type failingStarter struct{}

func (failingStarter) NewSession(context.Context) (string, error) {
	return "", errors.New("store offline")
}

func (failingStarter) CloseSession(context.Context, string) error {
	return errors.New("store offline")
}
