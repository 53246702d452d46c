package leads

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-leadboard/pkg/activity"
)

var errMissingSource = errors.New("leads: record source not configured")

var (
	// ErrUnknownLead is returned when selecting a lead that is not visible.
	ErrUnknownLead = errors.New("leads: lead is not visible")
	// ErrInvalidFilter is returned for a status filter that is neither a
	// known status nor All.
	ErrInvalidFilter = errors.New("leads: invalid status filter")
	// ErrUnknownBulkAction is returned by ParseBulkAction.
	ErrUnknownBulkAction = errors.New("leads: unknown bulk action")
)

const (
	noticeNoSelection  = "No leads selected."
	noticeEmptyExport  = "No leads to export with current filters."
	noticeExportFormat = "Exported %d leads to CSV."
)

// ActivityEmitter receives bulk-action activity events.
type ActivityEmitter interface {
	Emit(ctx context.Context, evt activity.Event) error
}

type noopActivity struct{}

func (noopActivity) Emit(context.Context, activity.Event) error { return nil }

// Options configures the lead Service. Collaborators are interfaces so
// applications can swap implementations.
type Options struct {
	Source      RecordSource
	Sessions    SessionStore
	Fetch       FetchOptions
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Activity    ActivityEmitter
	Logger      *slog.Logger
	Now         func() time.Time
	NewID       func() string
}

// Service orchestrates per-session lead dashboard state.
type Service struct {
	opts Options
	mu   sync.Mutex
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Sessions == nil {
		opts.Sessions = NewInMemorySessionStore(SessionStoreOptions{})
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Activity == nil {
		opts.Activity = noopActivity{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// ExportResult is the outcome of a CSV export.
type ExportResult struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	Count    int    `json:"count"`
	Notice   Notice `json:"notice"`
}

// Empty reports whether nothing was exported.
func (r ExportResult) Empty() bool { return r.Count == 0 }

// NewSession creates a session with a fresh id and starts its first fetch.
func (s *Service) NewSession(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx, s.opts.NewID())
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Session returns the session for id, creating it and starting the initial
// fetch on first use. An empty id selects DefaultSessionID.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	if s.opts.Source == nil {
		return nil, errMissingSource
	}
	if id == "" {
		id = DefaultSessionID
	}
	sess, initial, err := s.loadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}
	if initial != nil {
		// Outside s.mu: observers may re-enter the service.
		sess.fetch.run(ctx, *initial)
	}
	return sess, nil
}

// loadOrCreate returns the stored session or creates one already in the
// Loading state. The pending load is non-nil only for the creating caller.
func (s *Service) loadOrCreate(ctx context.Context, id string) (*Session, *pendingLoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok, err := s.opts.Sessions.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("leads: load session %s: %w", id, err)
	}
	if ok {
		return sess, nil, nil
	}
	fetchOpts := s.opts.Fetch
	observer := fetchOpts.OnChange
	fetchOpts.OnChange = func(ctx context.Context, state FetchState) {
		s.fetchChanged(ctx, id, state)
		if observer != nil {
			observer(ctx, state)
		}
	}
	sess = newSession(id, NewFetchSimulator(s.opts.Source, fetchOpts), s.opts.Now())
	if err := s.opts.Sessions.Save(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("leads: save session %s: %w", id, err)
	}
	s.opts.Logger.InfoContext(ctx, "lead session created", slog.String("session_id", id))
	initial := sess.fetch.begin(keepArmed)
	return sess, &initial, nil
}

// CloseSession forgets a session and cancels its fetch. Closing an unknown
// session is a no-op.
func (s *Service) CloseSession(ctx context.Context, id string) error {
	if id == "" {
		id = DefaultSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok, err := s.opts.Sessions.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("leads: load session %s: %w", id, err)
	}
	if !ok {
		return nil
	}
	sess.fetch.Stop()
	if err := s.opts.Sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("leads: delete session %s: %w", id, err)
	}
	s.opts.Logger.InfoContext(ctx, "lead session closed", slog.String("session_id", id))
	return nil
}

// View derives the dashboard for a session.
func (s *Service) View(ctx context.Context, sessionID string, order SortOrder) (DashboardView, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return DashboardView{}, err
	}
	state := sess.fetch.State()
	sess.mu.Lock()
	in := ViewInput{
		SessionID:         sess.ID,
		Fetch:             state,
		Criteria:          sess.criteria,
		Selected:          sess.selection.Values(),
		DismissedErrorGen: sess.dismissedGen,
		Sort:              order,
	}
	sess.mu.Unlock()
	s.recordTelemetry(ctx, "leads.view.resolve", map[string]any{
		"session_id": sess.ID,
		"status":     string(state.Status),
	})
	return BuildView(in), nil
}

// UpdateFilter replaces the session's filter criteria.
func (s *Service) UpdateFilter(ctx context.Context, sessionID string, criteria FilterCriteria) error {
	if err := criteria.Validate(); err != nil {
		return err
	}
	status := criteria.StatusFilter()
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	criteria.Status = status
	sess.mu.Lock()
	sess.criteria = criteria
	sess.mu.Unlock()
	s.recordTelemetry(ctx, "leads.filter.update", map[string]any{
		"session_id": sess.ID,
		"status":     status,
		"search":     criteria.SearchText != "",
	})
	return nil
}

// ToggleSelection flips a lead in the selection. A lead can only be added
// while it is visible; a selected lead can always be removed.
func (s *Service) ToggleSelection(ctx context.Context, sessionID, leadID string) error {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	state := sess.fetch.State()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.selection.Contains(leadID) &&
		!slices.Contains(LeadIDs(ApplyFilter(state.Records, sess.criteria)), leadID) {
		return fmt.Errorf("%w: %s", ErrUnknownLead, leadID)
	}
	sess.selection.Toggle(leadID)
	return nil
}

// SelectVisible selects exactly the leads matching the current filter and
// returns how many were selected.
func (s *Service) SelectVisible(ctx context.Context, sessionID string) (int, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	state := sess.fetch.State()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.selection.SetAll(LeadIDs(ApplyFilter(state.Records, sess.criteria)))
	return sess.selection.Size(), nil
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection(ctx context.Context, sessionID string) error {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.selection.Clear()
	sess.mu.Unlock()
	return nil
}

// BulkAction applies action to every selected lead, including selected
// leads hidden by the filter, then clears the selection. Each affected id
// is emitted as an activity event.
func (s *Service) BulkAction(ctx context.Context, sessionID string, action BulkAction) (Notice, error) {
	action, err := ParseBulkAction(string(action))
	if err != nil {
		return Notice{}, err
	}
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return Notice{}, err
	}
	sess.mu.Lock()
	ids := sess.selection.Values()
	sess.selection.Clear()
	sess.mu.Unlock()

	if len(ids) == 0 {
		notice := Notice{Level: NoticeWarning, Message: noticeNoSelection}
		sess.pushNotice(notice)
		return notice, nil
	}

	notice := action.notice(len(ids))
	sess.pushNotice(notice)
	s.emitBulk(ctx, sess.ID, action, ids)
	s.opts.Logger.InfoContext(ctx, "bulk action applied",
		slog.String("session_id", sess.ID),
		slog.String("action", string(action)),
		slog.Int("count", len(ids)),
		slog.Any("lead_ids", ids),
	)
	s.recordTelemetry(ctx, "leads.bulk."+string(action), map[string]any{
		"session_id": sess.ID,
		"count":      len(ids),
	})
	return notice, nil
}

func (s *Service) emitBulk(ctx context.Context, sessionID string, action BulkAction, ids []string) {
	meta := activityContextFrom(ctx)
	batchID := s.opts.NewID()
	now := s.opts.Now()
	for _, id := range ids {
		err := s.opts.Activity.Emit(ctx, activity.Event{
			Verb:       action.Verb(),
			ActorID:    meta.ActorID,
			UserID:     meta.UserID,
			TenantID:   meta.TenantID,
			ObjectType: "lead",
			ObjectID:   id,
			Metadata: map[string]any{
				"session_id": sessionID,
				"batch_id":   batchID,
				"batch_size": len(ids),
			},
			OccurredAt: now,
		})
		if err != nil {
			s.opts.Logger.WarnContext(ctx, "activity emit failed",
				slog.String("lead_id", id),
				slog.Any("error", err),
			)
		}
	}
}

// Export serializes the filtered leads. With nothing to export it returns a
// warning notice and no content.
func (s *Service) Export(ctx context.Context, sessionID string) (ExportResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return ExportResult{}, err
	}
	state := sess.fetch.State()
	sess.mu.Lock()
	visible := ApplyFilter(state.Records, sess.criteria)
	sess.mu.Unlock()

	result, err := ExportLeads(visible)
	if err != nil {
		return ExportResult{}, err
	}
	sess.pushNotice(result.Notice)
	s.recordTelemetry(ctx, "leads.export", map[string]any{
		"session_id": sess.ID,
		"count":      result.Count,
	})
	return result, nil
}

// ExportLeads builds an ExportResult for records.
func ExportLeads(records []Lead) (ExportResult, error) {
	if len(records) == 0 {
		return ExportResult{
			Filename: ExportFilename,
			Notice:   Notice{Level: NoticeWarning, Message: noticeEmptyExport},
		}, nil
	}
	content, err := ToCSV(records)
	if err != nil {
		return ExportResult{}, err
	}
	return ExportResult{
		Filename: ExportFilename,
		Content:  content,
		Count:    len(records),
		Notice:   Notice{Level: NoticeSuccess, Message: fmt.Sprintf(noticeExportFormat, len(records))},
	}, nil
}

// Retry disarms any pending failure and refetches.
func (s *Service) Retry(ctx context.Context, sessionID string) (uint64, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	gen := sess.fetch.Refetch(ctx)
	s.recordTelemetry(ctx, "leads.fetch.retry", map[string]any{
		"session_id": sess.ID,
		"generation": gen,
	})
	return gen, nil
}

// SimulateError arms a failure and starts a fetch that will report it.
func (s *Service) SimulateError(ctx context.Context, sessionID string) (uint64, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	gen := sess.fetch.ArmAndLoad(ctx)
	s.recordTelemetry(ctx, "leads.fetch.simulate_error", map[string]any{
		"session_id": sess.ID,
		"generation": gen,
	})
	return gen, nil
}

// DismissError hides the current fetch error until the next fetch fails.
func (s *Service) DismissError(ctx context.Context, sessionID string) error {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	state := sess.fetch.State()
	if state.Status != FetchFailed {
		return nil
	}
	sess.mu.Lock()
	sess.dismissedGen = state.Generation
	sess.mu.Unlock()
	return nil
}

// DrainNotices returns and forgets the session's queued notices.
func (s *Service) DrainNotices(ctx context.Context, sessionID string) ([]Notice, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.drainNotices(), nil
}

// WaitForFetch blocks until the session's current fetch settles.
func (s *Service) WaitForFetch(ctx context.Context, sessionID string) (FetchState, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return FetchState{}, err
	}
	return sess.fetch.Wait(ctx, sess.fetch.State().Generation)
}

func (s *Service) fetchChanged(ctx context.Context, sessionID string, state FetchState) {
	event := FetchEvent{
		SessionID:    sessionID,
		Status:       state.Status,
		Generation:   state.Generation,
		ErrorMessage: state.ErrorMessage,
		Records:      len(state.Records),
		OccurredAt:   state.UpdatedAt,
	}
	if err := s.opts.RefreshHook.FetchUpdated(ctx, event); err != nil {
		s.opts.Logger.WarnContext(ctx, "refresh hook failed",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
	}
	if state.Status == FetchFailed {
		s.opts.Logger.WarnContext(ctx, "lead fetch failed",
			slog.String("session_id", sessionID),
			slog.Uint64("generation", state.Generation),
			slog.String("error", state.ErrorMessage),
		)
	}
	s.recordTelemetry(ctx, "leads.fetch."+string(state.Status), map[string]any{
		"session_id": sessionID,
		"generation": state.Generation,
		"records":    len(state.Records),
	})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
