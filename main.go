package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prosthocare/prostho-api/config"
	"github.com/prosthocare/prostho-api/logging"
	"github.com/prosthocare/prostho-api/planner/rules"
	"github.com/prosthocare/prostho-api/scheduler"
	"github.com/prosthocare/prostho-api/server"
)

func main() {
	// Load .env if present; environment variables win either way
	if err := godotenv.Load(); err != nil {
		logging.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel, cfg.Env)

	ruleStore, err := buildRuleStore(cfg)
	if err != nil {
		logging.Error("Failed to build rule set", "error", err)
		os.Exit(1)
	}

	sched := scheduler.NewScheduler(ruleStore, cfg.RulesetPath, cfg.RulesetReloadHours)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	srv := server.NewServer(cfg, ruleStore)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}

// buildRuleStore loads the scoring policy (file or embedded default), applies
// any environment overrides to the composition limits, and seeds the store.
func buildRuleStore(cfg *config.Config) (*rules.Container, error) {
	var policy rules.Policy
	var err error

	if cfg.RulesetPath != "" {
		policy, err = rules.LoadPolicy(cfg.RulesetPath)
		logging.Info("Loading scoring policy from file", "path", cfg.RulesetPath)
	} else {
		policy, err = rules.DefaultPolicy()
		logging.Info("Using embedded scoring policy")
	}
	if err != nil {
		return nil, err
	}

	if cfg.PlanTopK > 0 {
		policy.Plan.TopK = cfg.PlanTopK
	}
	if cfg.PlanCombinationCap > 0 {
		policy.Plan.CombinationCeiling = cfg.PlanCombinationCap
	}

	rs, err := rules.New(policy)
	if err != nil {
		return nil, err
	}

	logging.Info("Rule set loaded",
		"policy_id", rs.PolicyID(),
		"ruleset_version", rs.Version(),
		"candidate_rules", len(rs.CandidateRules()),
		"plan_rules", len(rs.PlanRules()))

	return rules.NewContainer(rs), nil
}
