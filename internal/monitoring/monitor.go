package monitoring

import (
	"sync"
	"time"
)

// Monitor tracks lightweight runtime counters exposed on the status
// endpoint. Prometheus metrics live in MetricsCollector; this is the
// human-readable view.
type Monitor struct {
	mu            sync.RWMutex
	turnsByIntent map[string]int64
	turnErrors    int64
	lastTurnAt    time.Time
	startTime     time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		turnsByIntent: make(map[string]int64),
		startTime:     time.Now(),
	}
}

// RecordTurn counts one turn against its resolved intent.
func (m *Monitor) RecordTurn(intent string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnsByIntent[intent]++
	if err != nil {
		m.turnErrors++
	}
	m.lastTurnAt = time.Now()
}

// Status returns a snapshot of the runtime counters.
func (m *Monitor) Status() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byIntent := make(map[string]int64, len(m.turnsByIntent))
	var total int64
	for intent, count := range m.turnsByIntent {
		byIntent[intent] = count
		total += count
	}

	status := map[string]interface{}{
		"uptime_seconds":  time.Since(m.startTime).Seconds(),
		"turns_total":     total,
		"turns_by_intent": byIntent,
		"turn_errors":     m.turnErrors,
	}
	if !m.lastTurnAt.IsZero() {
		status["last_turn_at"] = m.lastTurnAt
	}
	return status
}

// Reset clears all counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnsByIntent = make(map[string]int64)
	m.turnErrors = 0
	m.lastTurnAt = time.Time{}
}
