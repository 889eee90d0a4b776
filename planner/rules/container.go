package rules

import (
	"sync/atomic"
	"time"

	"github.com/prosthocare/prostho-api/logging"
)

// Container holds the active RuleSet behind an atomic pointer so a policy
// reload swaps it with zero downtime. Requests in flight keep the RuleSet
// they started with; the set itself is immutable.
type Container struct {
	ruleset    atomic.Value // *RuleSet
	lastLoaded atomic.Value // time.Time
	reloading  atomic.Bool
}

// NewContainer creates a container seeded with an initial RuleSet.
func NewContainer(initial *RuleSet) *Container {
	c := &Container{}
	c.ruleset.Store(initial)
	c.lastLoaded.Store(time.Now())
	return c
}

// Current returns the active RuleSet.
func (c *Container) Current() *RuleSet {
	if v := c.ruleset.Load(); v != nil {
		if rs, ok := v.(*RuleSet); ok {
			return rs
		}
	}

	logging.Warn("Rule set container is empty or invalid")
	return nil
}

// Swap installs a new RuleSet atomically.
func (c *Container) Swap(rs *RuleSet) {
	c.ruleset.Store(rs)
	c.lastLoaded.Store(time.Now())
}

// LastLoaded returns when the active RuleSet was installed.
func (c *Container) LastLoaded() time.Time {
	if v := c.lastLoaded.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}

// BeginReload marks a reload in progress; returns false if one already is.
func (c *Container) BeginReload() bool {
	return c.reloading.CompareAndSwap(false, true)
}

// EndReload clears the reload marker.
func (c *Container) EndReload() {
	c.reloading.Store(false)
}

// IsReloading reports whether a reload is in progress.
func (c *Container) IsReloading() bool {
	return c.reloading.Load()
}
