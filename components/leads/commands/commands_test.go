package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-leadboard/components/leads"
)

func TestUpdateFilterCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewUpdateFilterCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), UpdateFilterInput{SessionID: "s-1", SearchText: "olivia", Status: "qualified"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.criteria.SearchText != "olivia" || service.criteria.Status != "qualified" {
		t.Fatalf("unexpected criteria %+v", service.criteria)
	}
	if service.session != "s-1" {
		t.Fatalf("expected session propagation, got %q", service.session)
	}
	if telemetry.last != "leads.command.filter" {
		t.Fatalf("expected filter telemetry, got %q", telemetry.last)
	}
}

func TestUpdateFilterCommandPropagatesError(t *testing.T) {
	service := &stubService{err: leads.ErrInvalidFilter}
	telemetry := &stubTelemetry{}
	cmd := NewUpdateFilterCommand(service, telemetry)
	err := cmd.Execute(context.Background(), UpdateFilterInput{Status: "Archived"})
	if !errors.Is(err, leads.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
	if telemetry.calls != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	checks := map[string]error{
		"filter":  NewUpdateFilterCommand(nil, nil).Execute(ctx, UpdateFilterInput{}),
		"toggle":  NewToggleSelectionCommand(nil, nil).Execute(ctx, ToggleSelectionInput{LeadID: "LD-1"}),
		"visible": NewSelectVisibleCommand(nil, nil).Execute(ctx, SelectVisibleInput{}),
		"clear":   NewClearSelectionCommand(nil, nil).Execute(ctx, ClearSelectionInput{}),
		"bulk":    NewBulkActionCommand(nil, nil).Execute(ctx, BulkActionInput{Action: "deactivate"}),
		"retry":   NewRetryFetchCommand(nil, nil).Execute(ctx, RetryFetchInput{}),
		"error":   NewSimulateErrorCommand(nil, nil).Execute(ctx, SimulateErrorInput{}),
		"dismiss": NewDismissErrorCommand(nil, nil).Execute(ctx, DismissErrorInput{}),
	}
	for name, err := range checks {
		if err == nil {
			t.Fatalf("%s: expected error without service", name)
		}
	}
}

func TestToggleSelectionCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewToggleSelectionCommand(service, nil)
	if err := cmd.Execute(context.Background(), ToggleSelectionInput{SessionID: "s-1", LeadID: " LD-1007 "}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.toggled != "LD-1007" {
		t.Fatalf("expected trimmed lead id, got %q", service.toggled)
	}
	if err := cmd.Execute(context.Background(), ToggleSelectionInput{}); err == nil {
		t.Fatalf("expected error for empty lead id")
	}
}

func TestSelectVisibleAndClearCommands(t *testing.T) {
	service := &stubService{visible: 4}
	telemetry := &stubTelemetry{}
	if err := NewSelectVisibleCommand(service, telemetry).Execute(context.Background(), SelectVisibleInput{SessionID: "s-1"}); err != nil {
		t.Fatalf("select visible returned error: %v", err)
	}
	if telemetry.payload["count"] != 4 {
		t.Fatalf("expected visible count in telemetry, got %v", telemetry.payload["count"])
	}
	if err := NewClearSelectionCommand(service, nil).Execute(context.Background(), ClearSelectionInput{SessionID: "s-1"}); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	if service.clearCalls != 1 {
		t.Fatalf("expected clear call")
	}
}

func TestBulkActionCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewBulkActionCommand(service, nil)
	if err := cmd.Execute(context.Background(), BulkActionInput{SessionID: "s-1", Action: "mark-contacted"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.action != leads.BulkMarkContacted {
		t.Fatalf("expected normalized action, got %q", service.action)
	}

	err := cmd.Execute(context.Background(), BulkActionInput{Action: "archive"})
	if !errors.Is(err, leads.ErrUnknownBulkAction) {
		t.Fatalf("expected ErrUnknownBulkAction, got %v", err)
	}
	if service.bulkCalls != 1 {
		t.Fatalf("unknown action must not reach the service")
	}
}

func TestFetchCommands(t *testing.T) {
	service := &stubService{}
	ctx := context.Background()
	if err := NewSimulateErrorCommand(service, nil).Execute(ctx, SimulateErrorInput{SessionID: "s-1"}); err != nil {
		t.Fatalf("simulate returned error: %v", err)
	}
	if err := NewRetryFetchCommand(service, nil).Execute(ctx, RetryFetchInput{SessionID: "s-1"}); err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if err := NewDismissErrorCommand(service, nil).Execute(ctx, DismissErrorInput{SessionID: "s-1"}); err != nil {
		t.Fatalf("dismiss returned error: %v", err)
	}
	if service.simulateCalls != 1 || service.retryCalls != 1 || service.dismissCalls != 1 {
		t.Fatalf("unexpected calls %+v", service)
	}
}

func TestCommandsAgainstService(t *testing.T) {
	ctx := context.Background()
	svc := leads.NewService(leads.Options{
		Source: leads.NewRecordStore([]leads.Lead{{ID: "LD-1", Name: "Olivia", Email: "o@example.com", Status: leads.StatusNew}}),
		Fetch:  leads.FetchOptions{Delay: -1},
	})
	if _, err := svc.Session(ctx, "s-1"); err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := svc.WaitForFetch(ctx, "s-1"); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if err := NewToggleSelectionCommand(svc, nil).Execute(ctx, ToggleSelectionInput{SessionID: "s-1", LeadID: "LD-1"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := NewBulkActionCommand(svc, nil).Execute(ctx, BulkActionInput{SessionID: "s-1", Action: "deactivate"}); err != nil {
		t.Fatalf("bulk: %v", err)
	}
	notices, err := svc.DrainNotices(ctx, "s-1")
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(notices) != 1 || notices[0].Message != "Deactivated 1 lead(s). Check the activity log for IDs." {
		t.Fatalf("unexpected notices %+v", notices)
	}
}

type stubService struct {
	err error

	session  string
	criteria leads.FilterCriteria
	toggled  string
	visible  int
	action   leads.BulkAction

	clearCalls    int
	bulkCalls     int
	retryCalls    int
	simulateCalls int
	dismissCalls  int
}

func (s *stubService) UpdateFilter(_ context.Context, sessionID string, criteria leads.FilterCriteria) error {
	s.session = sessionID
	s.criteria = criteria
	return s.err
}

func (s *stubService) ToggleSelection(_ context.Context, _ string, leadID string) error {
	s.toggled = leadID
	return s.err
}

func (s *stubService) SelectVisible(context.Context, string) (int, error) {
	return s.visible, s.err
}

func (s *stubService) ClearSelection(context.Context, string) error {
	s.clearCalls++
	return s.err
}

func (s *stubService) BulkAction(_ context.Context, _ string, action leads.BulkAction) (leads.Notice, error) {
	s.bulkCalls++
	s.action = action
	return leads.Notice{Level: leads.NoticeSuccess}, s.err
}

func (s *stubService) Retry(context.Context, string) (uint64, error) {
	s.retryCalls++
	return 2, s.err
}

func (s *stubService) SimulateError(context.Context, string) (uint64, error) {
	s.simulateCalls++
	return 1, s.err
}

func (s *stubService) DismissError(context.Context, string) error {
	s.dismissCalls++
	return s.err
}

type stubTelemetry struct {
	calls   int
	last    string
	payload map[string]any
}

func (s *stubTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	s.calls++
	s.last = event
	s.payload = payload
}
