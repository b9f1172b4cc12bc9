package handlers

import (
	"net/http"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// TokensHandler lists the token registry.
type TokensHandler struct {
	registry *entities.TokenRegistry
}

func NewTokensHandler(registry *entities.TokenRegistry) *TokensHandler {
	return &TokensHandler{registry: registry}
}

type TokenResponse struct {
	Address      string `json:"address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     uint8  `json:"decimals"`
	Intermediate bool   `json:"intermediate"`
}

type TokensResponse struct {
	Tokens []TokenResponse `json:"tokens"`
	Count  int             `json:"count"`
}

// List handles GET /api/v1/tokens
func (h *TokensHandler) List(w http.ResponseWriter, r *http.Request) {
	junctions := make(map[string]bool)
	for _, t := range h.registry.Intermediates() {
		junctions[t.Address.Hex()] = true
	}

	all := h.registry.GetAll()
	resp := TokensResponse{Tokens: make([]TokenResponse, 0, len(all)), Count: len(all)}
	for _, t := range all {
		resp.Tokens = append(resp.Tokens, TokenResponse{
			Address:      t.Address.Hex(),
			Symbol:       t.Symbol,
			Name:         t.Name,
			Decimals:     t.Decimals,
			Intermediate: junctions[t.Address.Hex()],
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
