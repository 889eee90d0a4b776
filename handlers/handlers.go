// Package handlers provides HTTP request handlers for the planning API
// endpoints. It includes handlers for case planning, span detection, input
// vocabularies, ontology lookup, health checks, and response formatting with
// proper input validation and error handling.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/prosthocare/prostho-api/interfaces"
	"github.com/prosthocare/prostho-api/logging"
	"github.com/prosthocare/prostho-api/ontology"
	"github.com/prosthocare/prostho-api/planner"
	"github.com/prosthocare/prostho-api/planner/entities"
	"github.com/prosthocare/prostho-api/validation"
)

// Compile-time check to ensure Handler implements HTTPHandler
var _ interfaces.HTTPHandler = (*Handler)(nil)

// Handler implements the interfaces.HTTPHandler interface with an injected
// rule store.
type Handler struct {
	ruleStore       interfaces.RuleStore
	serverStartTime time.Time
}

// NewHandler creates a new HTTP handler with injected dependencies
func NewHandler(ruleStore interfaces.RuleStore) *Handler {
	return &Handler{
		ruleStore:       ruleStore,
		serverStartTime: time.Now(),
	}
}

// RespondWithJSON writes a JSON response
func (h *Handler) RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *Handler) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]interface{}{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// decodeSnapshot reads and decodes a case snapshot request body. Unknown
// fields are rejected so typos never pass silently.
func decodeSnapshot(r *http.Request) (*entities.CaseSnapshot, error) {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var snap entities.CaseSnapshot
	if err := decoder.Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("request body is empty")
		}
		return nil, fmt.Errorf("malformed request body: %s", err.Error())
	}
	return &snap, nil
}

// PlanCase runs the full planning pipeline on a posted case snapshot.
func (h *Handler) PlanCase(w http.ResponseWriter, r *http.Request) {
	snap, err := decodeSnapshot(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs := h.ruleStore.Current()
	if rs == nil {
		logging.Error("No active rule set available")
		h.RespondWithError(w, http.StatusServiceUnavailable, "Rule set not loaded")
		return
	}

	result, err := planner.Evaluate(rs, snap)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			logging.Warn("Rejected case snapshot", "field", inputErr.Field, "reason", inputErr.Reason)
			h.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "InputError",
				"field":   inputErr.Field,
				"message": inputErr.Reason,
				"code":    http.StatusBadRequest,
			})
			return
		}
		var noPlan *planner.NoFeasiblePlanError
		if errors.As(err, &noPlan) {
			h.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":   "NoFeasiblePlan",
				"span_id": noPlan.SpanID,
				"message": noPlan.Error(),
				"code":    http.StatusUnprocessableEntity,
			})
			return
		}
		logging.Error("Plan evaluation failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Plan evaluation failed")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, result)
}

// DetectSpans runs span detection alone on a posted case snapshot, returning
// the spans plus the teeth the caller should collect health records for.
func (h *Handler) DetectSpans(w http.ResponseWriter, r *http.Request) {
	snap, err := decodeSnapshot(r)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	spans, err := planner.DetectSpans(snap.Missing)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			h.RespondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "InputError",
				"field":   inputErr.Field,
				"message": inputErr.Reason,
				"code":    http.StatusBadRequest,
			})
			return
		}
		logging.Error("Span detection failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Span detection failed")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, entities.SpansResult{
		Spans:         spans,
		AbutmentTeeth: planner.AbutmentTeeth(spans),
	})
}

// Enums returns the valid input vocabularies so clients never hard-code them.
func (h *Handler) Enums(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"tooth_status":       entities.StatusValues,
		"mobility_miller":    entities.MobilityValues,
		"crown_root_ratio":   entities.CrownRootValues,
		"caries_risk":        entities.CariesValues,
		"occlusal_scheme":    entities.OcclusionValues,
		"parafunction":       entities.ParafunctionValues,
		"opposing_dentition": entities.OpposingValues,
		"systemic_flags":     entities.SystemicFlagValues,
	})
}

// Ontology returns the id→label tables, locale-negotiated via Accept-Language.
func (h *Handler) Ontology(w http.ResponseWriter, r *http.Request) {
	tables := ontology.ForRequest(r)
	w.Header().Set("Content-Language", tables.Locale)
	h.RespondWithJSON(w, http.StatusOK, tables)
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string                 `json:"status"`
	LastReload    string                 `json:"last_reload"`
	RulesAgeHours float64                `json:"rules_age_hours"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Uptime        string                 `json:"uptime"`
	Rules         map[string]interface{} `json:"rules"`
	System        map[string]interface{} `json:"system"`
}

// HealthCheck returns server health information
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.serverStartTime)

	rs := h.ruleStore.Current()
	lastReload := h.ruleStore.LastLoaded()
	isReloading := h.ruleStore.IsReloading()
	rulesAge := time.Since(lastReload)

	var healthStatus string
	var httpStatus int
	switch {
	case rs == nil:
		healthStatus = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	default:
		healthStatus = "healthy"
		httpStatus = http.StatusOK
	}

	rulesInfo := map[string]interface{}{
		"is_reloading": isReloading,
	}
	if rs != nil {
		rulesInfo["policy_id"] = rs.PolicyID()
		rulesInfo["ruleset_version"] = rs.Version()
		rulesInfo["candidate_rules"] = len(rs.CandidateRules())
		rulesInfo["plan_rules"] = len(rs.PlanRules())
	}

	response := HealthResponse{
		Status:        healthStatus,
		LastReload:    lastReload.Format(time.RFC3339),
		RulesAgeHours: rulesAge.Hours(),
		UptimeSeconds: uptime.Seconds(),
		Uptime:        formatUptimeHuman(uptime),
		Rules:         rulesInfo,
		System: map[string]interface{}{
			"engine_version": planner.EngineVersion,
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
