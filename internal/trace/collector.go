package trace

import (
	"sync"

	"github.com/glasshouse-ar/reticle/internal/focus"
	"github.com/glasshouse-ar/reticle/internal/monitoring"
)

// Collector adapts a Store to the focus.TraceCollector interface. It writes
// each tick through to the session it was created for. RecordTick runs on
// the controller's work queue; a write failure is logged and the tick is
// dropped rather than stalling the engine.
type Collector struct {
	mu        sync.Mutex
	store     *Store
	sessionID string
	enabled   bool
	dropped   int
}

// NewCollector creates an enabled collector recording into sessionID.
func NewCollector(store *Store, sessionID string) *Collector {
	return &Collector{
		store:     store,
		sessionID: sessionID,
		enabled:   true,
	}
}

// SetEnabled toggles collection.
func (c *Collector) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// IsEnabled reports whether ticks are currently being recorded.
func (c *Collector) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// RecordTick persists one tick.
func (c *Collector) RecordTick(t focus.TickTrace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if err := c.store.RecordTick(c.sessionID, t); err != nil {
		c.dropped++
		monitoring.Logf("trace: dropping tick %d: %v", t.Tick, err)
	}
}

// Dropped returns how many ticks failed to persist.
func (c *Collector) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// SessionID returns the session this collector records into.
func (c *Collector) SessionID() string {
	return c.sessionID
}
