package handlers

import (
	"context"
	"net/http"
	"time"
)

const probeTimeout = 3 * time.Second

// ModelProber reports on the language model backend.
type ModelProber interface {
	Ping(ctx context.Context) error
	Model() string
}

// EntryCounter reports how many analyses are stored.
type EntryCounter interface {
	Count(ctx context.Context) (int, error)
}

// ModelLister is implemented by backends that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// CircuitReporter is implemented by backends guarded by a circuit breaker.
type CircuitReporter interface {
	Circuit() string
}

// HealthHandler serves the status, health and model endpoints.
type HealthHandler struct {
	model   ModelProber
	backend interface{}
	memory  EntryCounter
}

// NewHealthHandler creates a HealthHandler. backend is inspected for the
// optional ModelLister and CircuitReporter capabilities and may be nil.
func NewHealthHandler(model ModelProber, backend interface{}, memory EntryCounter) *HealthHandler {
	return &HealthHandler{model: model, backend: backend, memory: memory}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// Health handles GET /healthz. It answers 503 when either the model
// backend or the memory store is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Model: h.model.Model()}
	if cr, ok := h.backend.(CircuitReporter); ok {
		resp.Circuit = cr.Circuit()
	}
	if err := h.model.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.ModelErr = err.Error()
	}
	n, err := h.memory.Count(ctx)
	if err != nil {
		resp.Status = "degraded"
		resp.StoreErr = err.Error()
	}
	resp.Memories = n

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, resp)
}

// Models handles GET /llm/models.
func (h *HealthHandler) Models(w http.ResponseWriter, r *http.Request) {
	resp := AvailableModelsResponse{Model: h.model.Model(), Models: []string{}}

	lister, ok := h.backend.(ModelLister)
	if !ok {
		resp.Error = "model listing is not supported by this provider"
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		resp.Error = err.Error()
	} else if models != nil {
		resp.Models = models
	}
	respondJSON(w, http.StatusOK, resp)
}
