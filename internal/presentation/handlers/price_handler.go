package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// TokenPricer returns USD prices for tokens.
type TokenPricer interface {
	GetTokenPrice(ctx context.Context, token entities.Token) (decimal.Decimal, error)
}

type PriceHandler struct {
	pricer   TokenPricer
	registry *entities.TokenRegistry
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPriceHandler(pricer TokenPricer, registry *entities.TokenRegistry, logger zerolog.Logger) *PriceHandler {
	return &PriceHandler{
		pricer:   pricer,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

type PriceResponse struct {
	Token     string `json:"token"`
	Symbol    string `json:"symbol"`
	PriceUSD  string `json:"priceUSD"`
	UpdatedAt string `json:"updatedAt"`
}

// GetPrice handles GET /api/v1/price/{tokenAddress}
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	tokenAddr := chi.URLParam(r, "tokenAddress")
	if tokenAddr == "" {
		writeError(w, http.StatusBadRequest, "missing_token", "token address is required")
		return
	}
	if !common.IsHexAddress(tokenAddr) {
		writeError(w, http.StatusBadRequest, "invalid_token", "invalid token address")
		return
	}

	token := h.registry.Lookup(common.HexToAddress(tokenAddr))

	price, err := h.pricer.GetTokenPrice(r.Context(), token)
	if err != nil {
		if errors.Is(err, entities.ErrArithmetic) {
			writeDomainError(w, h.logger, err)
			return
		}
		writeError(w, http.StatusNotFound, "price_not_found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{
		Token:     token.Address.Hex(),
		Symbol:    token.Symbol,
		PriceUSD:  price.StringFixed(2),
		UpdatedAt: h.now().UTC().Format(time.RFC3339),
	})
}
