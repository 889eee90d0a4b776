// Package interfaces defines the core abstractions of the planning API
// to improve testability and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/prosthocare/prostho-api/planner/rules"
)

// RuleStore defines the contract for rule set storage. It provides
// thread-safe access to the active RuleSet with atomic swaps for
// zero-downtime policy reloads.
type RuleStore interface {
	// Current returns the active rule set.
	Current() *rules.RuleSet

	// LastLoaded returns when the active rule set was installed.
	LastLoaded() time.Time

	// Reload coordination
	BeginReload() bool
	EndReload()
	IsReloading() bool

	// Swap installs a new rule set atomically.
	Swap(rs *rules.RuleSet)
}

// Scheduler defines the contract for the periodic policy reload job.
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for the API endpoints.
type HTTPHandler interface {
	PlanCase(w http.ResponseWriter, r *http.Request)
	DetectSpans(w http.ResponseWriter, r *http.Request)
	Enums(w http.ResponseWriter, r *http.Request)
	Ontology(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
