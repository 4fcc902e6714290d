package coursewatch

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"coursewatch-backend/lib/mailer"
	"coursewatch-backend/lib/scrapers/banner"
	"coursewatch-backend/lib/snapstore"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("services/coursewatch")
var meter = otel.Meter("services/coursewatch")

// ErrInvalidInput is returned when a start request is missing a required
// field. Never retried.
var ErrInvalidInput = fmt.Errorf("missing required field")

// ErrNotFound is returned for operations on unknown monitor ids.
var ErrNotFound = fmt.Errorf("monitor not found")

type MonitorStatus string

const (
	StatusActive  MonitorStatus = "active"
	StatusStopped MonitorStatus = "stopped"
	// the borrowed session went stale, a human has to log in again and
	// start a fresh monitor with new cookies
	StatusSessionExpired MonitorStatus = "session_expired"
)

// CourseClient is what a monitor needs from the registration backend:
// a session heartbeat and one-shot availability polls.
type CourseClient interface {
	KeepAlive(ctx context.Context) banner.SessionStatus
	Poll(ctx context.Context, crn string) (banner.Snapshot, error)
}

type Options struct {
	// registration backend base url, e.g. https://ban9ssb-prod.mtroyal.ca
	BaseUrl string
	// academic term code, e.g. "202601"
	Term   string
	Format banner.ResponseFormat

	// defaults to 10 seconds
	CheckInterval time.Duration
	// a keep-alive heartbeat runs every Kth cycle, defaults to 3
	KeepAliveEvery int
	// consecutive failures before the polling cadence degrades, defaults to 3
	BackoffAfter int
	// interval multiplier applied while degraded, defaults to 5
	BackoffMultiplier int
	// settle time between a heartbeat and the poll that follows,
	// defaults to 1 second
	KeepAlivePause time.Duration

	// overrides how monitors talk to the backend, tests use this to
	// avoid the network. defaults to a banner client per monitor.
	NewClient func(creds banner.Credentials) (CourseClient, error)
}

func (o Options) withDefaults() Options {
	if o.CheckInterval == 0 {
		o.CheckInterval = time.Second * 10
	}
	if o.KeepAliveEvery == 0 {
		o.KeepAliveEvery = 3
	}
	if o.BackoffAfter == 0 {
		o.BackoffAfter = 3
	}
	if o.BackoffMultiplier == 0 {
		o.BackoffMultiplier = 5
	}
	if o.KeepAlivePause == 0 {
		o.KeepAlivePause = time.Second
	}
	return o
}

// Monitor is one active watch: one student, one course, one set of borrowed
// session cookies. Credentials are immutable for the monitor's lifetime,
// rotating them means stopping and starting a fresh monitor.
type Monitor struct {
	Id        string
	Name      string
	Email     string
	CRN       string
	StartTime time.Time

	client CourseClient
	gate   *notificationGate
	cancel context.CancelFunc

	mu        sync.Mutex
	status    MonitorStatus
	checks    int
	lastSeats int
}

func (m *Monitor) setStatus(status MonitorStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

func (m *Monitor) recordCheck(seats int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	m.lastSeats = seats
}

type Service struct {
	ctx     context.Context
	store   snapstore.Store
	mailer  mailer.Mailer
	options Options

	mu       sync.RWMutex
	monitors map[string]*Monitor

	startTime    time.Time
	checkCounter metric.Int64Counter
	sentCounter  metric.Int64Counter
}

// NewService owns the monitor registry and every monitor's lifecycle. The
// given context bounds the whole engine: when it ends, all monitors stop.
func NewService(ctx context.Context, database *sql.DB, m mailer.Mailer, options Options) (*Service, error) {
	options = options.withDefaults()
	if options.NewClient == nil {
		options.NewClient = func(creds banner.Credentials) (CourseClient, error) {
			return banner.NewClient(banner.ClientOptions{
				BaseUrl:     options.BaseUrl,
				Term:        options.Term,
				Credentials: creds,
				Format:      options.Format,
			})
		}
	}

	checkCounter, err := meter.Int64Counter(
		"coursewatch_checks_total",
		metric.WithDescription("The total amount of availability checks performed."),
	)
	if err != nil {
		return nil, err
	}
	sentCounter, err := meter.Int64Counter(
		"coursewatch_notifications_sent_total",
		metric.WithDescription("The total amount of seat notifications delivered."),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		ctx:          ctx,
		store:        snapstore.NewStore(database),
		mailer:       m,
		options:      options,
		monitors:     map[string]*Monitor{},
		startTime:    time.Now(),
		checkCounter: checkCounter,
		sentCounter:  sentCounter,
	}, nil
}

type StartMonitorRequest struct {
	Name        string
	Email       string
	CRN         string
	Credentials banner.Credentials
}

// StartMonitor registers a new watch and begins polling immediately.
// Duplicate watches for the same course and student are not coalesced,
// each request gets an independent monitor with its own timer.
func (s *Service) StartMonitor(ctx context.Context, req StartMonitorRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "StartMonitor")
	defer span.End()

	if req.Name == "" || req.Email == "" || req.CRN == "" || len(req.Credentials) == 0 {
		return "", ErrInvalidInput
	}

	client, err := s.options.NewClient(req.Credentials)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	monitorCtx, cancel := context.WithCancel(s.ctx)
	monitor := &Monitor{
		Id:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CRN:       req.CRN,
		StartTime: time.Now(),
		client:    client,
		gate:      &notificationGate{},
		cancel:    cancel,
		status:    StatusActive,
	}

	s.mu.Lock()
	s.monitors[monitor.Id] = monitor
	s.mu.Unlock()

	go s.run(monitorCtx, monitor)

	return monitor.Id, nil
}

// StopMonitor cancels the monitor's timer and removes it from the registry.
// A cycle already in flight finishes but its result is discarded. Stopping
// an id twice reports ErrNotFound the second time, removal is removal.
func (s *Service) StopMonitor(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "StopMonitor")
	defer span.End()

	s.mu.Lock()
	monitor, ok := s.monitors[id]
	if ok {
		delete(s.monitors, id)
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	monitor.setStatus(StatusStopped)
	monitor.cancel()
	return nil
}

type MonitorInfo struct {
	Id               string        `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	CRN              string        `json:"crn"`
	Active           bool          `json:"active"`
	Status           MonitorStatus `json:"status"`
	NotificationSent bool          `json:"notificationSent"`
	StartTime        time.Time     `json:"startTime"`
	Checks           int           `json:"checks"`
	LastSeats        int           `json:"lastSeats"`
}

// ListMonitors reports a consistent point-in-time view of the registry.
func (s *Service) ListMonitors(ctx context.Context) []MonitorInfo {
	s.mu.RLock()
	monitors := make([]*Monitor, 0, len(s.monitors))
	for _, m := range s.monitors {
		monitors = append(monitors, m)
	}
	s.mu.RUnlock()

	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		m.mu.Lock()
		infos[i] = MonitorInfo{
			Id:               m.Id,
			Name:             m.Name,
			Email:            m.Email,
			CRN:              m.CRN,
			Active:           m.status == StatusActive,
			Status:           m.status,
			NotificationSent: m.gate.NotificationSent(),
			StartTime:        m.StartTime,
			Checks:           m.checks,
			LastSeats:        m.lastSeats,
		}
		m.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StartTime.Before(infos[j].StartTime)
	})
	return infos
}

// GetLatestSnapshot reads the most recent stored availability for a course.
func (s *Service) GetLatestSnapshot(ctx context.Context, crn string) (banner.Snapshot, error) {
	return s.store.Get(ctx, crn)
}

type Health struct {
	EmailCapabilityReady bool          `json:"emailCapabilityReady"`
	ActiveMonitorCount   int           `json:"activeMonitorCount"`
	Uptime               time.Duration `json:"uptime"`
}

func (s *Service) HealthCheck(ctx context.Context) Health {
	s.mu.RLock()
	active := 0
	for _, m := range s.monitors {
		m.mu.Lock()
		if m.status == StatusActive {
			active++
		}
		m.mu.Unlock()
	}
	s.mu.RUnlock()

	return Health{
		EmailCapabilityReady: s.mailer.Ready(),
		ActiveMonitorCount:   active,
		Uptime:               time.Since(s.startTime),
	}
}
