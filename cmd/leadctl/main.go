package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type cli struct {
	Config  string     `type:"path" env:"LEADCTL_CONFIG" help:"Path to the YAML config file."`
	Serve   serveCmd   `cmd:"" help:"Serve the lead dashboard over HTTP."`
	Export  exportCmd  `cmd:"" help:"Write the filtered leads to a CSV file."`
	Summary summaryCmd `cmd:"" help:"Print KPIs and chart datasets for the filtered leads."`
}

// runtime is bound into every command's Run method.
type runtime struct {
	ctx    context.Context
	cfg    Config
	out    io.Writer
	logger *slog.Logger
}

func main() {
	var app cli
	kctx := kong.Parse(&app,
		kong.Name("leadctl"),
		kong.Description("Lead management dashboard server and reporting tool."),
		kong.UsageOnError(),
	)
	cfg, err := LoadConfig(app.Config)
	kctx.FatalIfErrorf(err)
	handler, err := cfg.Log.Handler(os.Stderr)
	kctx.FatalIfErrorf(err)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = kctx.Run(&runtime{ctx: ctx, cfg: cfg, out: os.Stdout, logger: logger})
	kctx.FatalIfErrorf(err)
}
