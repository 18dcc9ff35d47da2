// Package scheduler arms the autosave alarm and runs the periodic save
// pipeline when it fires.
package scheduler

import (
	"log/slog"
	"sync"
	"time"
)

// Firing describes one alarm trigger delivered to the listener.
type Firing struct {
	Name string
	At   time.Time
}

// AlarmService is the minimal alarm surface: named periodic alarms and a
// single listener. Re-registering the listener is a no-op, guarded by
// HasListener, so re-arming never stacks handlers.
type AlarmService interface {
	Create(name string, period time.Duration)
	ClearAll()
	AddListener(fn func(Firing))
	HasListener() bool
}

// TickerAlarms implements AlarmService with one time.Ticker goroutine per
// alarm. Alarms fire repeatedly at their period until cleared.
type TickerAlarms struct {
	logger *slog.Logger

	mu       sync.Mutex
	alarms   map[string]*tickerAlarm
	listener func(Firing)
}

type tickerAlarm struct {
	period time.Duration
	ticker *time.Ticker
	done   chan struct{}
}

// NewTickerAlarms returns an empty alarm service.
func NewTickerAlarms(logger *slog.Logger) *TickerAlarms {
	return &TickerAlarms{
		logger: logger,
		alarms: make(map[string]*tickerAlarm),
	}
}

// Create registers a periodic alarm, replacing any existing alarm with the
// same name.
func (a *TickerAlarms) Create(name string, period time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if old, ok := a.alarms[name]; ok {
		old.ticker.Stop()
		close(old.done)
	}

	alarm := &tickerAlarm{
		period: period,
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	a.alarms[name] = alarm

	a.logger.Debug("alarm created", "name", name, "period", period)

	go a.run(name, alarm)
}

func (a *TickerAlarms) run(name string, alarm *tickerAlarm) {
	for {
		select {
		case t := <-alarm.ticker.C:
			a.mu.Lock()
			fn := a.listener
			a.mu.Unlock()

			if fn != nil {
				fn(Firing{Name: name, At: t})
			}

		case <-alarm.done:
			return
		}
	}
}

// ClearAll stops and removes every alarm. The listener stays registered.
func (a *TickerAlarms) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for name, alarm := range a.alarms {
		alarm.ticker.Stop()
		close(alarm.done)
		delete(a.alarms, name)
	}
}

// AddListener registers the firing handler. Only the first registration
// takes effect.
func (a *TickerAlarms) AddListener(fn func(Firing)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listener != nil {
		return
	}

	a.listener = fn
}

// HasListener reports whether a listener is registered.
func (a *TickerAlarms) HasListener() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.listener != nil
}

// Alarms returns a snapshot of the active alarms and their periods.
func (a *TickerAlarms) Alarms() map[string]time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]time.Duration, len(a.alarms))
	for name, alarm := range a.alarms {
		out[name] = alarm.period
	}

	return out
}
