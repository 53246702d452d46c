package goadmin

import (
	"context"
	"errors"

	activitypkg "github.com/goliatone/go-leadboard/pkg/activity"
	"github.com/goliatone/go-leadboard/pkg/leadboard"
)

// MenuBuilder ensures lead dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the lead service and feature flags into an admin shell.
// When Service is nil and leads are enabled, New builds one from Options.
type Config struct {
	EnableLeads     bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *leadboard.Service
	Options         leadboard.Options
	DefaultMenuItem MenuItem
	ActivityHooks   activitypkg.Hooks
	ActivityConfig  activitypkg.Config
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed lead menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableLeads && cfg.Service == nil {
		if cfg.Options.Source == nil {
			return nil, errors.New("goadmin: lead service or record source is required when enabled")
		}
		opts := cfg.Options
		if opts.Activity == nil && len(cfg.ActivityHooks) > 0 {
			opts.Activity = activitypkg.NewEmitter(cfg.ActivityHooks, cfg.ActivityConfig)
		}
		cfg.Service = leadboard.NewService(opts)
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Leads"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.leads"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "users"
	}
	return &Admin{cfg: cfg}, nil
}

// Leads exposes the configured lead service when enabled.
func (a *Admin) Leads() *leadboard.Service {
	if !a.cfg.EnableLeads {
		return nil
	}
	return a.cfg.Service
}

// MenuItem returns the navigation entry Bootstrap seeds.
func (a *Admin) MenuItem() MenuItem {
	return a.cfg.DefaultMenuItem
}

// Bootstrap seeds menu entries when lead support is enabled.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableLeads || a.cfg.MenuBuilder == nil {
		return nil
	}
	return a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, a.cfg.DefaultMenuItem)
}
