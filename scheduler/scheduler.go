// Package scheduler provides automated scoring-policy reloads and staleness
// monitoring for the planning API. It handles cron-based policy reloads and
// coordinates rule set swaps with the rule store using dependency injection.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/prosthocare/prostho-api/interfaces"
	"github.com/prosthocare/prostho-api/logging"
	"github.com/prosthocare/prostho-api/metrics"
	"github.com/prosthocare/prostho-api/planner/rules"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler reloads the scoring policy on a fixed interval and swaps the
// resulting rule set into the store. A reload failure keeps the previous
// rule set active.
type Scheduler struct {
	ruleStore   interfaces.RuleStore
	rulesetPath string
	interval    time.Duration
	scheduler   *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// An empty rulesetPath disables reloading: the embedded policy never changes
// under the process, so there is nothing to pick up.
func NewScheduler(ruleStore interfaces.RuleStore, rulesetPath string, reloadHours int) *Scheduler {
	return &Scheduler{
		ruleStore:   ruleStore,
		rulesetPath: rulesetPath,
		interval:    time.Duration(reloadHours) * time.Hour,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start schedules the periodic policy reload and staleness monitoring.
func (s *Scheduler) Start() error {
	if s.rulesetPath == "" {
		logging.Info("No ruleset path configured, policy reloading disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.reloadPolicy(); err != nil {
			logging.Error("Failed to reload scoring policy", "error", err)
		}
	})

	if err != nil {
		logging.Error("Failed to schedule policy reloads", "error", err)
		return fmt.Errorf("failed to schedule policy reloads: %w", err)
	}

	s.scheduler.StartAsync()

	s.startStalenessMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reloadPolicy loads the policy file, rebuilds the rule set and swaps it in.
func (s *Scheduler) reloadPolicy() error {
	// Prevent concurrent reloads
	if !s.ruleStore.BeginReload() {
		logging.Info("Policy reload already in progress, skipping...")
		return nil
	}
	defer s.ruleStore.EndReload()

	logging.Info("Starting scoring policy reload", "path", s.rulesetPath)
	start := time.Now()

	policy, err := rules.LoadPolicy(s.rulesetPath)
	if err != nil {
		metrics.RulesetReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to load policy: %w", err)
	}

	rs, err := rules.New(policy)
	if err != nil {
		metrics.RulesetReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to build rule set: %w", err)
	}

	s.ruleStore.Swap(rs)
	metrics.RulesetReloadsTotal.WithLabelValues("success").Inc()

	elapsed := time.Since(start)
	logging.Info("Scoring policy reload completed",
		"duration", elapsed.String(),
		"policy_id", rs.PolicyID(),
		"ruleset_version", rs.Version())

	return nil
}

// startStalenessMonitoring warns when the active rule set was installed more
// than two reload intervals ago.
func (s *Scheduler) startStalenessMonitoring() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			lastLoaded := s.ruleStore.LastLoaded()
			if time.Since(lastLoaded) > 2*s.interval {
				logging.Warn("Scoring policy hasn't been reloaded in over two intervals",
					"last_loaded", lastLoaded.Format(time.RFC3339))
			}
		}
	}()
}
