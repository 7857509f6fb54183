// Package daemon provides the long-running background ledger poller.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	logx "github.com/gagyelog/gagyelog/internal/log"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
)

// Event types.
const (
	EventSnapshot       = "snapshot"
	EventLedgerDelta    = "ledger_delta"
	EventBudgetExceeded = "budget_exceeded"
)

// Config controls the daemon runtime behavior.
type Config struct {
	API          pipeline.DashboardAPI
	Session      model.Session
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *slog.Logger

	// Now returns the as-of instant for each poll. Its location is the
	// local zone for date parsing. Defaults to time.Now.
	Now func() time.Time
}

// Snapshot is a compact ledger state for status/event payloads.
type Snapshot struct {
	At                time.Time `json:"at"`
	Period            string    `json:"period"`
	Records           int       `json:"records"`
	Malformed         int       `json:"malformed"`
	WeekExpenses      int64     `json:"week_expenses"`
	WeekIncome        int64     `json:"week_income"`
	MonthExpenses     int64     `json:"month_expenses"`
	MonthIncome       int64     `json:"month_income"`
	Budget            int64     `json:"budget"`
	SavingsRate       float64   `json:"savings_rate"`
	AvailableToday    int64     `json:"available_today"`
	ExhaustionDate    string    `json:"exhaustion_date"`
	BudgetUsedPercent float64   `json:"budget_used_percent"`
	OverBudget        bool      `json:"over_budget"`
	ActiveChallenges  int       `json:"active_challenges"`
	Badges            int       `json:"badges"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Records       int   `json:"records"`
	WeekExpenses  int64 `json:"week_expenses"`
	MonthExpenses int64 `json:"month_expenses"`
	MonthIncome   int64 `json:"month_income"`
	Budget        int64 `json:"budget"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.WeekExpenses == 0 &&
		d.MonthExpenses == 0 &&
		d.MonthIncome == 0 &&
		d.Budget == 0
}

// Event is emitted whenever the ledger snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	UserID          int64     `json:"user_id"`
	BaseURL         string    `json:"base_url"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Discard()
	}

	return &Service{
		cfg:       cfg,
		log:       logx.WithComponent(logger, logx.ComponentDaemon),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the daemon's HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info("daemon started",
		slog.String("addr", s.cfg.Addr),
		slog.Duration("interval", s.cfg.Interval),
		slog.Int64(logx.FieldUserID, s.cfg.Session.UserID),
	)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info("daemon stopping")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	now := s.cfg.Now()

	d := pipeline.LoadDashboard(ctx, s.cfg.API, s.cfg.Session, now.Year(), now.Month(), nil)
	if d.LedgerErr != nil {
		s.mu.Lock()
		s.lastError = d.LedgerErr.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", slog.Any(logx.FieldError, d.LedgerErr))
		return
	}

	snap := snapshotFromDashboard(d, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if err := d.Err(); err != nil {
		s.lastError = err.Error()
	}

	switch {
	case !prevExists:
		ev = s.newEventLocked(EventSnapshot, now, snap, Delta{})
		publish = true
	case prev.Period != snap.Period:
		// Month rolled over; totals restart.
		ev = s.newEventLocked(EventSnapshot, now, snap, Delta{})
		publish = true
	default:
		delta := diffSnapshots(prev, snap)
		if !prev.OverBudget && snap.OverBudget {
			ev = s.newEventLocked(EventBudgetExceeded, now, snap, delta)
			publish = true
		} else if !delta.isZero() {
			ev = s.newEventLocked(EventLedgerDelta, now, snap, delta)
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	s.log.Debug("poll complete",
		slog.String(logx.FieldPeriod, snap.Period),
		slog.Int(logx.FieldCount, snap.Records),
		slog.Int64(logx.FieldDuration, time.Since(start).Milliseconds()),
		slog.Bool("published", publish),
	)
}

func (s *Service) newEventLocked(typ string, at time.Time, snap Snapshot, delta Delta) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: at,
		Snapshot:  snap,
		Delta:     delta,
	}
}

func snapshotFromDashboard(d *pipeline.Dashboard, at time.Time) Snapshot {
	summary := pipeline.Summarize(d.Ledger, at)
	stats := pipeline.ComputeBudgetStats(d.Budget, summary.MonthExpenses, at)

	active := 0
	for _, c := range d.Challenges {
		if !c.Evaluated {
			active++
		}
	}

	return Snapshot{
		At:                at,
		Period:            fmt.Sprintf("%04d-%02d", d.Year, int(d.Month)),
		Records:           len(d.Ledger),
		Malformed:         d.Malformed + summary.Malformed,
		WeekExpenses:      summary.WeekExpenses,
		WeekIncome:        summary.WeekIncome,
		MonthExpenses:     summary.MonthExpenses,
		MonthIncome:       summary.MonthIncome,
		Budget:            d.Budget,
		SavingsRate:       stats.SavingsRate,
		AvailableToday:    stats.AvailableToday,
		ExhaustionDate:    stats.Exhaustion.String(),
		BudgetUsedPercent: stats.BudgetUsedPercent,
		OverBudget:        stats.OverBudget,
		ActiveChallenges:  active,
		Badges:            len(d.Badges),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Records:       curr.Records - prev.Records,
		WeekExpenses:  curr.WeekExpenses - prev.WeekExpenses,
		MonthExpenses: curr.MonthExpenses - prev.MonthExpenses,
		MonthIncome:   curr.MonthIncome - prev.MonthIncome,
		Budget:        curr.Budget - prev.Budget,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		UserID:          s.cfg.Session.UserID,
		BaseURL:         s.cfg.Session.BaseURL,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
