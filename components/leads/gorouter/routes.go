package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-leadboard/components/leads"
	"github.com/goliatone/go-leadboard/components/leads/commands"
	"github.com/goliatone/go-leadboard/components/leads/httpapi"
	"github.com/goliatone/go-leadboard/components/leads/queries"
)

// SessionResolver extracts the dashboard session id from a request.
type SessionResolver func(router.Context) string

// SessionStarter mints and closes dashboard sessions.
type SessionStarter interface {
	NewSession(ctx context.Context) (string, error)
	CloseSession(ctx context.Context, id string) error
}

// Config wires go-router with the lead controller, APIs, and hooks.
type Config[T any] struct {
	Router          router.Router[T]
	Controller      *leads.Controller
	API             httpapi.Executor
	Export          gocommand.Querier[queries.ExportInput, leads.ExportResult]
	Notices         gocommand.Querier[queries.NoticesInput, []leads.Notice]
	Sessions        SessionStarter
	Broadcast       *leads.BroadcastHook
	SessionResolver SessionResolver
	BasePath        string
	Routes          RouteConfig
}

// RouteConfig customizes the relative paths used for lead endpoints.
type RouteConfig struct {
	HTML          string
	View          string
	Sessions      string
	Filter        string
	Toggle        string
	SelectVisible string
	Selection     string
	Bulk          string
	Retry         string
	SimulateError string
	DismissError  string
	Export        string
	Notices       string
	WebSocket     string
}

// Register mounts lead routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	resolver := cfg.SessionResolver
	if resolver == nil {
		resolver = defaultSessionResolver
	}
	e := endpoints{
		controller: cfg.Controller,
		api:        cfg.API,
		export:     cfg.Export,
		notices:    cfg.Notices,
		sessions:   cfg.Sessions,
	}

	group := cfg.Router.Group(base)
	group.Get(routes.HTML, wrap(resolver, e.html))
	group.Get(routes.View, wrap(resolver, e.view))

	if cfg.Sessions != nil {
		group.Post(routes.Sessions, wrap(resolver, e.newSession))
		group.Delete(routes.Sessions, wrap(resolver, e.closeSession))
	}
	if cfg.Export != nil {
		group.Get(routes.Export, wrap(resolver, e.exportCSV))
	}
	if cfg.Notices != nil {
		group.Get(routes.Notices, wrap(resolver, e.drainNotices))
	}
	if cfg.API != nil {
		group.Post(routes.Filter, wrap(resolver, e.updateFilter))
		group.Post(routes.Toggle, wrap(resolver, e.toggleSelection))
		group.Post(routes.SelectVisible, wrap(resolver, e.selectVisible))
		group.Delete(routes.Selection, wrap(resolver, e.clearSelection))
		group.Post(routes.Bulk, wrap(resolver, e.bulkAction))
		group.Post(routes.Retry, wrap(resolver, e.retry))
		group.Post(routes.SimulateError, wrap(resolver, e.simulateError))
		group.Post(routes.DismissError, wrap(resolver, e.dismissError))
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

// request is the transport-neutral view of an incoming call.
type request struct {
	ctx       context.Context
	sessionID string
	body      []byte
	query     func(string) string
}

// response is written back through router.Context. Raw bodies are always
// sent with status 200.
type response struct {
	status  int
	headers map[string]string
	raw     []byte
	json    any
}

type endpoint func(request) response

func wrap(resolver SessionResolver, fn endpoint) router.HandlerFunc {
	return router.WrapHandler(func(ctx router.Context) error {
		res := fn(request{
			ctx:       ctx.Context(),
			sessionID: resolver(ctx),
			body:      ctx.Body(),
			query:     func(key string) string { return ctx.Query(key) },
		})
		for k, v := range res.headers {
			ctx.SetHeader(k, v)
		}
		if res.raw != nil {
			return ctx.Send(res.raw)
		}
		return ctx.JSON(res.status, res.json)
	})
}

type endpoints struct {
	controller *leads.Controller
	api        httpapi.Executor
	export     gocommand.Querier[queries.ExportInput, leads.ExportResult]
	notices    gocommand.Querier[queries.NoticesInput, []leads.Notice]
	sessions   SessionStarter
}

func (e endpoints) html(req request) response {
	var buf bytes.Buffer
	order := leads.ParseSortOrder(req.query("sort"), req.query("desc"))
	if err := e.controller.RenderTemplate(req.ctx, req.sessionID, order, &buf); err != nil {
		return errorResponse(httpapi.StatusForError(err), err)
	}
	return response{
		headers: map[string]string{"Content-Type": "text/html; charset=utf-8"},
		raw:     buf.Bytes(),
	}
}

func (e endpoints) view(req request) response {
	order := leads.ParseSortOrder(req.query("sort"), req.query("desc"))
	view, err := e.controller.View(req.ctx, req.sessionID, order)
	if err != nil {
		return errorResponse(httpapi.StatusForError(err), err)
	}
	return jsonResponse(http.StatusOK, view)
}

func (e endpoints) newSession(req request) response {
	id, err := e.sessions.NewSession(req.ctx)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}
	return jsonResponse(http.StatusCreated, map[string]string{"session_id": id})
}

func (e endpoints) closeSession(req request) response {
	if err := e.sessions.CloseSession(req.ctx, req.sessionID); err != nil {
		return errorResponse(http.StatusInternalServerError, err)
	}
	return jsonResponse(http.StatusOK, map[string]string{"status": "closed"})
}

func (e endpoints) exportCSV(req request) response {
	result, err := e.export.Query(req.ctx, queries.ExportInput{SessionID: req.sessionID})
	if err != nil {
		return errorResponse(httpapi.StatusForError(err), err)
	}
	if result.Empty() {
		return jsonResponse(http.StatusOK, map[string]any{"notice": result.Notice})
	}
	return response{headers: httpapi.CSVHeaders(result), raw: result.Content}
}

func (e endpoints) drainNotices(req request) response {
	notices, err := e.notices.Query(req.ctx, queries.NoticesInput{SessionID: req.sessionID})
	if err != nil {
		return errorResponse(httpapi.StatusForError(err), err)
	}
	return jsonResponse(http.StatusOK, map[string]any{"notices": notices})
}

func (e endpoints) updateFilter(req request) response {
	var payload commands.UpdateFilterInput
	if err := decode(req.body, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	payload.SessionID = req.sessionID
	return result(e.api.UpdateFilter(req.ctx, payload), http.StatusOK, "updated")
}

func (e endpoints) toggleSelection(req request) response {
	var payload commands.ToggleSelectionInput
	if err := decode(req.body, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	if strings.TrimSpace(payload.LeadID) == "" {
		return errorResponse(http.StatusBadRequest, errors.New("lead id is required"))
	}
	payload.SessionID = req.sessionID
	return result(e.api.ToggleSelection(req.ctx, payload), http.StatusOK, "toggled")
}

func (e endpoints) selectVisible(req request) response {
	err := e.api.SelectVisible(req.ctx, commands.SelectVisibleInput{SessionID: req.sessionID})
	return result(err, http.StatusOK, "selected")
}

func (e endpoints) clearSelection(req request) response {
	err := e.api.ClearSelection(req.ctx, commands.ClearSelectionInput{SessionID: req.sessionID})
	return result(err, http.StatusOK, "cleared")
}

func (e endpoints) bulkAction(req request) response {
	var payload commands.BulkActionInput
	if err := decode(req.body, &payload); err != nil {
		return errorResponse(http.StatusBadRequest, err)
	}
	payload.SessionID = req.sessionID
	return result(e.api.BulkAction(req.ctx, payload), http.StatusOK, "applied")
}

func (e endpoints) retry(req request) response {
	err := e.api.Retry(req.ctx, commands.RetryFetchInput{SessionID: req.sessionID})
	return result(err, http.StatusAccepted, "loading")
}

func (e endpoints) simulateError(req request) response {
	err := e.api.SimulateError(req.ctx, commands.SimulateErrorInput{SessionID: req.sessionID})
	return result(err, http.StatusAccepted, "loading")
}

func (e endpoints) dismissError(req request) response {
	err := e.api.DismissError(req.ctx, commands.DismissErrorInput{SessionID: req.sessionID})
	return result(err, http.StatusOK, "dismissed")
}

func registerWebSocket[T any](r router.Router[T], hook *leads.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		// Clients filter on session_id.
		events, cancel := hook.Subscribe("")
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultSessionResolver(ctx router.Context) string {
	var local string
	if v, ok := ctx.Locals("session_id").(string); ok {
		local = v
	}
	return resolveSession(ctx.Header(httpapi.SessionHeader), ctx.Query("session"), local)
}

// resolveSession picks the first non-blank candidate, falling back to
// leads.DefaultSessionID.
func resolveSession(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return leads.DefaultSessionID
}

func decode(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func result(err error, status int, label string) response {
	if err != nil {
		return errorResponse(httpapi.StatusForError(err), err)
	}
	return jsonResponse(status, map[string]string{"status": label})
}

func jsonResponse(status int, v any) response {
	return response{status: status, json: v}
}

func errorResponse(status int, err error) response {
	return jsonResponse(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/leads"
	}
	if routes.View == "" {
		routes.View = "/leads/_view"
	}
	if routes.Sessions == "" {
		routes.Sessions = "/leads/sessions"
	}
	if routes.Filter == "" {
		routes.Filter = "/leads/filter"
	}
	if routes.Toggle == "" {
		routes.Toggle = "/leads/selection/toggle"
	}
	if routes.SelectVisible == "" {
		routes.SelectVisible = "/leads/selection/visible"
	}
	if routes.Selection == "" {
		routes.Selection = "/leads/selection"
	}
	if routes.Bulk == "" {
		routes.Bulk = "/leads/bulk"
	}
	if routes.Retry == "" {
		routes.Retry = "/leads/retry"
	}
	if routes.SimulateError == "" {
		routes.SimulateError = "/leads/simulate-error"
	}
	if routes.DismissError == "" {
		routes.DismissError = "/leads/error/dismiss"
	}
	if routes.Export == "" {
		routes.Export = "/leads/export.csv"
	}
	if routes.Notices == "" {
		routes.Notices = "/leads/notices"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/leads/ws"
	}
	return routes
}
