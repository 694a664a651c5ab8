package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/scrypster/insight/internal/report"
	"github.com/scrypster/insight/pkg/types"
)

// ReportHandler renders analysis records as PDF.
type ReportHandler struct {
	logger *zap.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{logger: logger}
}

// RenderPDF handles POST /report/pdf. The body is an analysis record; it is
// validated with the same rules applied to model output.
func (h *ReportHandler) RenderPDF(w http.ResponseWriter, r *http.Request) {
	var tree map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&tree); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}
	record, err := types.ParseAnalysisRecord(tree)
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, *record); err != nil {
		h.logger.Error("pdf rendering failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, CodeInternal, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis_report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
