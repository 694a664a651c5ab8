package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/extract"
	"github.com/scrypster/insight/pkg/types"
)

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*types.AnalysisRecord, error)
	AnalyzeDocument(ctx context.Context, filename string, data []byte) (*types.AnalysisRecord, error)
}

// AnalysisHandlers serves the analysis endpoints.
type AnalysisHandlers struct {
	analyzer Analyzer
	logger   *zap.Logger
}

// NewAnalysisHandlers creates AnalysisHandlers.
func NewAnalysisHandlers(analyzer Analyzer, logger *zap.Logger) *AnalysisHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandlers{analyzer: analyzer, logger: logger}
}

// Analyze handles POST /analyze.
func (h *AnalysisHandlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.logger.Info("analyzing text input", zap.String("preview", preview(req.Text, 30)))
	record, err := h.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("analysis failed", zap.Error(err))
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// AnalyzeFile handles POST /analyze/file with a multipart "file" field.
func (h *AnalysisHandlers) AnalyzeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxDocumentSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, CodeInvalidRequest, "file too large")
			return
		}
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "failed to read upload")
		return
	}

	h.logger.Info("received file", zap.String("filename", header.Filename), zap.Int("bytes", len(data)))
	record, err := h.analyzer.AnalyzeDocument(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Error("file analysis failed", zap.String("filename", header.Filename), zap.Error(err))
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
