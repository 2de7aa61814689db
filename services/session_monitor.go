package services

import (
	"time"

	"docqa-chatbot/internal/logger"
)

const sessionMonitorTag = "session-growth"

// IntervalScheduler runs a job periodically
type IntervalScheduler interface {
	ScheduleInterval(tag string, duration time.Duration, job func() error) error
}

// SessionMonitor reports session store growth. Sessions are never evicted,
// so the report is the only signal that memory is piling up.
type SessionMonitor struct {
	store     *SessionStore
	warnTurns int
}

func NewSessionMonitor(store *SessionStore, warnTurns int) *SessionMonitor {
	return &SessionMonitor{store: store, warnTurns: warnTurns}
}

// Check logs the current stats and reports whether the warn threshold is exceeded.
func (m *SessionMonitor) Check() (SessionStats, bool) {
	stats := m.store.Stats()
	over := m.warnTurns > 0 && stats.Turns > m.warnTurns
	if over {
		logger.Warn("Session memory is growing without bound",
			"sessions", stats.Sessions,
			"turns", stats.Turns,
			"warn_turns", m.warnTurns,
		)
	} else {
		logger.Info("Session memory stats", "sessions", stats.Sessions, "turns", stats.Turns)
	}
	return stats, over
}

// Register schedules Check every interval. A non-positive interval disables it.
func (m *SessionMonitor) Register(s IntervalScheduler, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	return s.ScheduleInterval(sessionMonitorTag, interval, func() error {
		m.Check()
		return nil
	})
}
