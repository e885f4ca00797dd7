package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/junghoon-dev/arbiter/internal/clients/krx"
)

// KRHandlers exposes Korean market data endpoints backed by the KRX client.
type KRHandlers struct {
	client *krx.Client
	log    zerolog.Logger
}

// NewKRHandlers creates a new KR market data handlers instance
func NewKRHandlers(client *krx.Client, log zerolog.Logger) *KRHandlers {
	return &KRHandlers{
		client: client,
		log:    log.With().Str("handler", "kr").Logger(),
	}
}

// HandleGetSymbols returns the tradable KRX symbol list
// GET /api/kr/symbols
func (h *KRHandlers) HandleGetSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.client.GetSymbols()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get symbols")
		http.Error(w, "Failed to get symbols", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, symbols)
}

// HandleGetPrice returns daily candles for a symbol
// GET /api/kr/price/{symbol}?days=N
func (h *KRHandlers) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err != nil || parsed < 1 || parsed > 365 {
			http.Error(w, "days must be between 1 and 365", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	candles, err := h.client.GetPriceHistory(symbol, days)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get price history")
		http.Error(w, "Failed to get price history", http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"symbol":  symbol,
		"days":    days,
		"candles": candles,
	})
}

func (h *KRHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
