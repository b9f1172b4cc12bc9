package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
	"github.com/bimakw/swap-quoter/internal/domain/services"
)

// Quoter produces routed quotes.
type Quoter interface {
	GetQuote(ctx context.Context, req services.QuoteRequest) (*entities.Quote, error)
}

// QuoteHandler handles quote requests
type QuoteHandler struct {
	quoter   Quoter
	registry *entities.TokenRegistry
	logger   zerolog.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoter Quoter, registry *entities.TokenRegistry, logger zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoter:   quoter,
		registry: registry,
		logger:   logger,
	}
}

// QuoteResponse represents a quote response
type QuoteResponse struct {
	TokenIn                  string            `json:"tokenIn"`
	TokenOut                 string            `json:"tokenOut"`
	Mode                     string            `json:"mode"`
	AmountIn                 string            `json:"amountIn"`
	AmountOut                string            `json:"amountOut"`
	AmountInDisplay          string            `json:"amountInDisplay"`
	AmountOutDisplay         string            `json:"amountOutDisplay"`
	MinAmountOut             string            `json:"minAmountOut,omitempty"`
	MaxAmountIn              string            `json:"maxAmountIn,omitempty"`
	SlippagePercent          string            `json:"slippagePercent"`
	EffectiveSlippagePercent string            `json:"effectiveSlippagePercent"`
	Route                    []RouteHop        `json:"route"`
	Fee                      string            `json:"fee"`
	PriceImpact              string            `json:"priceImpact"`
	PriceWarning             string            `json:"priceWarning,omitempty"`
	GasEstimate              uint64            `json:"gasEstimate"`
	Sources                  map[string]string `json:"sources"`
	SnapshotAt               int64             `json:"snapshotAt"`
}

// RouteHop represents a hop in the route
type RouteHop struct {
	DEX         string `json:"dex"`
	Pair        string `json:"pair"`
	TokenIn     string `json:"tokenIn"`
	TokenOut    string `json:"tokenOut"`
	AmountIn    string `json:"amountIn"`
	AmountOut   string `json:"amountOut"`
	Fee         string `json:"fee"`
	PriceImpact string `json:"priceImpact"`
}

// GetQuote handles GET /api/v1/quote
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tokenInAddr := q.Get("tokenIn")
	tokenOutAddr := q.Get("tokenOut")
	amountStr := q.Get("amount")
	if amountStr == "" {
		amountStr = q.Get("amountIn")
	}

	if tokenInAddr == "" || tokenOutAddr == "" || amountStr == "" {
		writeError(w, http.StatusBadRequest, "missing_params", "tokenIn, tokenOut, and amount are required")
		return
	}

	if !common.IsHexAddress(tokenInAddr) {
		writeError(w, http.StatusBadRequest, "invalid_token_in", "tokenIn is not a valid address")
		return
	}
	if !common.IsHexAddress(tokenOutAddr) {
		writeError(w, http.StatusBadRequest, "invalid_token_out", "tokenOut is not a valid address")
		return
	}

	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be a positive integer")
		return
	}

	mode, err := entities.ParseSwapMode(q.Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mode", err.Error())
		return
	}

	var slippage decimal.NullDecimal
	if s := q.Get("slippage"); s != "" {
		p, err := services.ParsePercent(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slippage", "slippage must be a percentage in [0, 100)")
			return
		}
		slippage = decimal.NewNullDecimal(p)
	}

	quote, err := h.quoter.GetQuote(r.Context(), services.QuoteRequest{
		TokenIn:         h.registry.Lookup(common.HexToAddress(tokenInAddr)),
		TokenOut:        h.registry.Lookup(common.HexToAddress(tokenOutAddr)),
		Amount:          amount,
		Mode:            mode,
		SlippagePercent: slippage,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, buildQuoteResponse(quote))
}

// buildQuoteResponse converts a Quote to a QuoteResponse
func buildQuoteResponse(quote *entities.Quote) QuoteResponse {
	resp := QuoteResponse{
		TokenIn:                  quote.TokenIn.Address.Hex(),
		TokenOut:                 quote.TokenOut.Address.Hex(),
		Mode:                     string(quote.Mode),
		AmountIn:                 quote.AmountIn.String(),
		AmountOut:                quote.AmountOut.String(),
		AmountInDisplay:          entities.FormatAmount(quote.AmountIn, quote.TokenIn.Decimals, 6),
		AmountOutDisplay:         entities.FormatAmount(quote.AmountOut, quote.TokenOut.Decimals, 6),
		SlippagePercent:          quote.SlippagePercent.String(),
		EffectiveSlippagePercent: quote.EffectiveSlippagePercent.String(),
		PriceImpact:              quote.PriceImpact.StringFixed(2),
		PriceWarning:             quote.PriceWarning,
		GasEstimate:              quote.GasEstimate,
		Sources:                  quote.Sources,
		SnapshotAt:               quote.SnapshotAt,
	}
	if quote.MinAmountOut != nil {
		resp.MinAmountOut = quote.MinAmountOut.String()
	}
	if quote.MaxAmountIn != nil {
		resp.MaxAmountIn = quote.MaxAmountIn.String()
	}
	if quote.BestRoute != nil {
		resp.Route = routeHops(quote.BestRoute)
		resp.Fee = quote.BestRoute.CompoundedFeeAmount.String()
	}
	return resp
}

func routeHops(eval *entities.RouteEvaluation) []RouteHop {
	hops := make([]RouteHop, 0, len(eval.Hops))
	for _, hop := range eval.Hops {
		hops = append(hops, RouteHop{
			DEX:         string(hop.DEX),
			Pair:        hop.Pair.Hex(),
			TokenIn:     hop.TokenIn.Hex(),
			TokenOut:    hop.TokenOut.Hex(),
			AmountIn:    hop.AmountIn.String(),
			AmountOut:   hop.AmountOut.String(),
			Fee:         hop.Fee.String(),
			PriceImpact: hop.PriceImpactPercent.StringFixed(2),
		})
	}
	return hops
}
