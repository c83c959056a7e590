package health

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/healthylinkx/chatbot/pkg/icron"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const defaultProbeTimeout = 5 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the result of the latest probe.
type Status struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
	NextCheck time.Time `json:"next_check,omitempty"`
}

// Monitor probes the directory database on a cron schedule and keeps the
// latest result for the health endpoint.
type Monitor struct {
	target   Pinger
	cronExpr string
	timeout  time.Duration
	now      func() time.Time

	cron  *cron.Cron
	entry cron.EntryID

	mu   sync.RWMutex
	last Status
}

type Option func(*Monitor)

func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

func NewMonitor(target Pinger, cronExpr string, opts ...Option) (*Monitor, error) {
	if _, err := icron.Parse(cronExpr); err != nil {
		return nil, err
	}
	m := &Monitor{
		target:   target,
		cronExpr: cronExpr,
		timeout:  defaultProbeTimeout,
		now:      time.Now,
		cron:     cron.New(cron.WithParser(icron.Parser)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start runs one probe immediately and then schedules the rest.
func (m *Monitor) Start(ctx context.Context) error {
	m.Check(ctx)
	id, err := m.cron.AddFunc(m.cronExpr, func() { m.Check(ctx) })
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entry = id
	m.mu.Unlock()
	m.cron.Start()
	log.Info("Health monitor scheduled with %q", m.cronExpr)
	return nil
}

// Stop halts scheduling and waits for a running probe to finish.
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
}

// Check probes the target now and records the result.
func (m *Monitor) Check(ctx context.Context) Status {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	st := Status{Healthy: true, CheckedAt: m.now()}
	if err := m.target.Ping(probeCtx); err != nil {
		st.Healthy = false
		st.Error = err.Error()
		log.Warn("Directory health probe failed: %v", err)
	}

	m.mu.Lock()
	m.last = st
	m.mu.Unlock()
	return st
}

// Status returns the latest probe result with the next scheduled probe.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	st := m.last
	id := m.entry
	m.mu.RUnlock()

	if id != 0 {
		if next := m.cron.Entry(id).Next; !next.IsZero() {
			st.NextCheck = next
			return st
		}
	}
	// not scheduled yet
	if info, err := icron.GetTriggerInfo(m.cronExpr, m.now()); err == nil {
		st.NextCheck = info.Next
	}
	return st
}
