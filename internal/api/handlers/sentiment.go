package handlers

import (
	"net/http"

	"github.com/stocklens/backend/pkg/logger"
)

// SentimentHandler serves processed news sentiment
type SentimentHandler struct {
	analyzer Analyzer
	logger   *logger.Logger
}

// NewSentimentHandler creates a new sentiment handler
func NewSentimentHandler(analyzer Analyzer, log *logger.Logger) *SentimentHandler {
	return &SentimentHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// GetSentiment fetches, classifies and summarises news for a symbol
// GET /api/sentiment?stock=SYM
func (h *SentimentHandler) GetSentiment(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("stock")
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "Please provide a stock symbol, e.g., ?stock=INFY")
		return
	}

	report, err := h.analyzer.ProcessNews(r.Context(), symbol)
	if err != nil {
		h.logger.WithSymbol(symbol).WithError(err).Error("Failed to process news")
		respondError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
