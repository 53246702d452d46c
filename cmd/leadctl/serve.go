package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-leadboard/components/leads"
	"github.com/goliatone/go-leadboard/components/leads/gorouter"
	"github.com/goliatone/go-leadboard/components/leads/httpapi"
	"github.com/goliatone/go-leadboard/components/leads/queries"
	"github.com/goliatone/go-leadboard/pkg/activity"
	"github.com/goliatone/go-leadboard/pkg/goadmin"
	"github.com/goliatone/go-leadboard/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr        string `help:"Listen address overriding server.addr."`
	MetricsAddr string `help:"Metrics listen address overriding server.metrics_addr."`
}

// app holds the wired dashboard components.
type app struct {
	dataset    *leads.Dataset
	source     *leads.RecordStore
	service    *leads.Service
	controller *leads.Controller
	executor   *httpapi.CommandExecutor
	dashboard  *queries.DashboardQuery
	export     *queries.ExportQuery
	notices    *queries.NoticesQuery
	broadcast  *leads.BroadcastHook
	registry   *prometheus.Registry
	admin      *goadmin.Admin
}

func wire(cfg Config, logger *slog.Logger) (*app, error) {
	if logger == nil {
		logger = slog.Default()
	}
	doc, err := cfg.Dataset.Load()
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	promTelemetry, err := metrics.New(registry)
	if err != nil {
		return nil, err
	}
	telemetry := leads.MultiTelemetry{promTelemetry, leads.LoggerTelemetry{Logger: logger}}

	emitter := activity.NewEmitter(
		activity.Hooks{activity.LoggerHook{Logger: logger, Level: slog.LevelInfo}},
		activity.Config{Enabled: cfg.Activity.Enabled, Channel: cfg.Activity.Channel},
	)
	broadcast := leads.NewBroadcastHook()
	source := leads.NewRecordStore(doc.Leads)

	service := leads.NewService(leads.Options{
		Source:      source,
		Sessions:    leads.NewInMemorySessionStore(cfg.Sessions.StoreOptions()),
		Fetch:       cfg.Fetch.FetchOptions(),
		RefreshHook: broadcast,
		Telemetry:   telemetry,
		Activity:    emitter,
		Logger:      logger,
	})

	renderer, err := leads.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("leadctl: template renderer: %w", err)
	}
	charts := leads.NewChartRenderer(
		leads.WithChartTheme(cfg.Charts.Theme),
		leads.WithChartAssetsHost(cfg.Charts.AssetsHost),
		leads.WithChartCache(leads.NewChartCache(cfg.Charts.CacheTTL)),
		leads.WithChartHeight(cfg.Charts.Height),
	)
	controller := leads.NewController(leads.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Charts:   charts,
		BasePath: strings.TrimRight(cfg.Server.BasePath, "/") + "/leads",
	})

	admin, err := goadmin.New(goadmin.Config{
		EnableLeads: true,
		Service:     service,
		MenuBuilder: logMenuBuilder{logger: logger},
		DefaultMenuItem: goadmin.MenuItem{
			Route: strings.TrimRight(cfg.Server.BasePath, "/") + "/leads",
		},
	})
	if err != nil {
		return nil, err
	}

	return &app{
		dataset:    doc,
		source:     source,
		service:    service,
		controller: controller,
		executor:   httpapi.NewCommandExecutor(service, telemetry),
		dashboard:  queries.NewDashboardQuery(service),
		export:     queries.NewExportQuery(service),
		notices:    queries.NewNoticesQuery(service),
		broadcast:  broadcast,
		registry:   registry,
		admin:      admin,
	}, nil
}

func (c *serveCmd) Run(rt *runtime) error {
	cfg := rt.cfg
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.MetricsAddr != "" {
		cfg.Server.MetricsAddr = c.MetricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := rt.logger
	a, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	if err := a.admin.Bootstrap(rt.ctx); err != nil {
		return fmt.Errorf("leadctl: bootstrap admin menu: %w", err)
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: a.controller,
		API:        a.executor,
		Export:     a.export,
		Notices:    a.notices,
		Sessions:   a.service,
		Broadcast:  a.broadcast,
		BasePath:   cfg.Server.BasePath,
	}); err != nil {
		return fmt.Errorf("leadctl: register routes: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(a.registry))
		metricsServer = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(cfg.Server.Addr)
	}()
	logger.Info("lead dashboard ready",
		slog.String("addr", cfg.Server.Addr),
		slog.String("path", a.admin.MenuItem().Route),
		slog.String("dataset", a.dataset.Source),
		slog.Int("leads", a.source.Len()),
	)

	select {
	case err := <-errCh:
		return err
	case <-rt.ctx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(ctx)
	}
	return server.Shutdown(ctx)
}

type logMenuBuilder struct {
	logger *slog.Logger
}

func (b logMenuBuilder) EnsureMenuItem(ctx context.Context, menuCode string, item goadmin.MenuItem) error {
	b.logger.InfoContext(ctx, "admin menu item",
		slog.String("menu", menuCode),
		slog.String("label", item.Label),
		slog.String("route", item.Route),
	)
	return nil
}
