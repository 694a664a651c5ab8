package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/scrypster/insight/pkg/types"
)

// Answerer answers a question from memory.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// MemorySearcher searches stored analyses.
type MemorySearcher interface {
	Search(ctx context.Context, query string, k int) (types.RetrievalResult, error)
}

// MemoryHandlers serves the memory chat and search endpoints.
type MemoryHandlers struct {
	answerer Answerer
	searcher MemorySearcher
	logger   *zap.Logger
}

// NewMemoryHandlers creates MemoryHandlers.
func NewMemoryHandlers(answerer Answerer, searcher MemorySearcher, logger *zap.Logger) *MemoryHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryHandlers{answerer: answerer, searcher: searcher, logger: logger}
}

// Chat handles POST /memory/chat.
func (h *MemoryHandlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.Error("memory chat failed", zap.Error(err))
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ChatResponse{Answer: answer})
}

// Search handles GET /memory/search?q=...&k=...
func (h *MemoryHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		respondErr(w, fmt.Errorf("%w: query parameter q is required", types.ErrInsufficientInput))
		return
	}
	k := parseInt(r.URL.Query().Get("k"), 0)

	result, err := h.searcher.Search(r.Context(), query, k)
	if err != nil {
		h.logger.Error("memory search failed", zap.Error(err))
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
