package goadmin_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-leadboard/components/leads"
	activitypkg "github.com/goliatone/go-leadboard/pkg/activity"
	"github.com/goliatone/go-leadboard/pkg/goadmin"
	"github.com/goliatone/go-leadboard/pkg/leadboard"
)

type stubMenuBuilder struct {
	calls int
	item  goadmin.MenuItem
	code  string
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, code string, item goadmin.MenuItem) error {
	s.calls++
	s.code = code
	s.item = item
	return nil
}

func TestAdminBootstrapSeedsMenu(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := leadboard.NewService(leadboard.Options{Source: leads.NewRecordStore(nil)})
	admin, err := goadmin.New(goadmin.Config{
		EnableLeads: true,
		Service:     service,
		MenuBuilder: builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 1 {
		t.Fatalf("expected 1 call, got %d", builder.calls)
	}
	if builder.code != "admin.main" || builder.item.Label != "Leads" || builder.item.Route != "admin.leads" {
		t.Fatalf("unexpected menu item %s %+v", builder.code, builder.item)
	}
	if admin.Leads() != service {
		t.Fatalf("expected configured lead service")
	}
}

func TestAdminDisabledSkipsBootstrap(t *testing.T) {
	builder := &stubMenuBuilder{}
	admin, err := goadmin.New(goadmin.Config{
		EnableLeads: false,
		MenuBuilder: builder,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if builder.calls != 0 {
		t.Fatalf("expected 0 calls, got %d", builder.calls)
	}
	if admin.Leads() != nil {
		t.Fatalf("expected nil service when disabled")
	}
}

func TestAdminRequiresSourceWhenEnabled(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{EnableLeads: true}); err == nil {
		t.Fatalf("expected error without service or source")
	}
}

func TestAdminBuildsServiceWithActivityHooks(t *testing.T) {
	var events []activitypkg.Event
	hook := activitypkg.HookFunc(func(_ context.Context, evt activitypkg.Event) error {
		events = append(events, evt)
		return nil
	})
	admin, err := goadmin.New(goadmin.Config{
		EnableLeads: true,
		Options: leadboard.Options{
			Source: leads.NewRecordStore([]leads.Lead{
				{ID: "LD-1", Name: "Olivia Bennett", Email: "olivia@example.com", Status: leads.StatusNew, Value: 1000, LastActivity: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
			}),
			Fetch: leads.FetchOptions{Delay: -1},
		},
		ActivityHooks:  activitypkg.Hooks{hook},
		ActivityConfig: activitypkg.Config{Enabled: true, Channel: "crm"},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	svc := admin.Leads()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := svc.Session(ctx, "s-1"); err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := svc.WaitForFetch(ctx, "s-1"); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if err := svc.ToggleSelection(ctx, "s-1", "LD-1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := svc.BulkAction(ctx, "s-1", leads.BulkDeactivate); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(events) != 1 || events[0].Channel != "crm" || events[0].ObjectID != "LD-1" {
		t.Fatalf("unexpected activity events %+v", events)
	}
}
