package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stocklens/backend/internal/contracts"
	"github.com/stocklens/backend/internal/data/repos"
	"github.com/stocklens/backend/pkg/logger"
)

// Analyzer is the analysis pipeline used by the handlers
type Analyzer interface {
	ComputeIndicators(ctx context.Context, symbol string) (contracts.IndicatorSet, error)
	Analyze(ctx context.Context, symbol string, useNews bool) contracts.CompositeVerdict
	ProcessNews(ctx context.Context, symbol string) (*contracts.NewsReport, error)
	NewsEnabled() bool
}

// VerdictReader reads stored verdict history
type VerdictReader interface {
	LatestVerdicts(ctx context.Context, symbol string, limit int) ([]repos.StoredVerdict, error)
}

const (
	defaultVerdictLimit = 20
	maxVerdictLimit     = 200
)

// AnalysisHandler handles indicator and verdict endpoints
// ⭐ SSOT: 분석 API 핸들러는 이 구조체에서만
type AnalysisHandler struct {
	analyzer Analyzer
	verdicts VerdictReader
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler. verdicts may be nil
// when no database is configured.
func NewAnalysisHandler(analyzer Analyzer, verdicts VerdictReader, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		verdicts: verdicts,
		logger:   log,
	}
}

// Analyze returns the composite verdict for a symbol.
// Always 200: failures are reported inside the verdict.
// GET /api/analyze/{symbol}?news=true|false
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	useNews := h.analyzer.NewsEnabled()
	if v := r.URL.Query().Get("news"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "news must be true or false")
			return
		}
		useNews = parsed
	}

	verdict := h.analyzer.Analyze(r.Context(), symbol, useNews)
	respondJSON(w, http.StatusOK, verdict)
}

// GetIndicators returns the latest indicator values for a symbol
// GET /api/indicators/{symbol}
func (h *AnalysisHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	set, err := h.analyzer.ComputeIndicators(r.Context(), symbol)
	if err != nil {
		switch {
		case errors.Is(err, contracts.ErrDataUnavailable):
			respondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, contracts.ErrInsufficientHistory):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			h.logger.WithSymbol(symbol).WithError(err).Error("Failed to compute indicators")
			respondError(w, http.StatusInternalServerError, "Failed to compute indicators")
		}
		return
	}

	respondJSON(w, http.StatusOK, set)
}

// GetVerdicts returns stored verdict history for a symbol
// GET /api/verdicts/{symbol}?limit=N
func (h *AnalysisHandler) GetVerdicts(w http.ResponseWriter, r *http.Request) {
	if h.verdicts == nil {
		respondError(w, http.StatusServiceUnavailable, "Verdict history requires a database")
		return
	}

	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	limit := defaultVerdictLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxVerdictLimit)
	}

	verdicts, err := h.verdicts.LatestVerdicts(r.Context(), symbol, limit)
	if err != nil {
		h.logger.WithSymbol(symbol).WithError(err).Error("Failed to get verdicts")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve verdicts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"verdicts": verdicts,
		"count":    len(verdicts),
	})
}
