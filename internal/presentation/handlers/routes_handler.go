package handlers

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

// maxEvaluateBody caps the size of a route evaluation request.
const maxEvaluateBody = 1 << 20

// RoutesHandler prices caller-supplied snapshots without touching the chain.
type RoutesHandler struct {
	registry *entities.TokenRegistry
	logger   zerolog.Logger
}

func NewRoutesHandler(registry *entities.TokenRegistry, logger zerolog.Logger) *RoutesHandler {
	return &RoutesHandler{registry: registry, logger: logger}
}

// EvaluateRequest is the body of POST /api/v1/routes/evaluate
type EvaluateRequest struct {
	Mode     string `json:"mode"`
	Amount   string `json:"amount"`
	Slippage string `json:"slippage"`
	entities.PlanSet
}

// Evaluate handles POST /api/v1/routes/evaluate
func (h *RoutesHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvaluateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}

	mode, err := entities.ParseSwapMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be an integer")
		return
	}
	slippage := services.DefaultSlippagePercent
	if req.Slippage != "" {
		if slippage, err = services.ParsePercent(req.Slippage); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slippage", err.Error())
			return
		}
	}

	plans, err := req.Plans(h.registry.Lookup)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	outcome, err := services.EvaluatePlans(mode, amount, slippage, plans)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
