package entities

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// TokenConfig represents token configuration from JSON
type TokenConfig struct {
	Address      string `json:"address"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Decimals     uint8  `json:"decimals"`
	Intermediate bool   `json:"intermediate"`
}

// TokensConfig represents the tokens.json structure
type TokensConfig struct {
	Tokens []TokenConfig `json:"tokens"`
}

// TokenRegistry is the token-metadata provider. It is safe for concurrent use.
type TokenRegistry struct {
	mu            sync.RWMutex
	byAddress     map[common.Address]Token
	bySymbol      map[string]Token
	intermediates map[common.Address]struct{}
}

// NewTokenRegistry creates an empty registry
func NewTokenRegistry() *TokenRegistry {
	return &TokenRegistry{
		byAddress:     make(map[common.Address]Token),
		bySymbol:      make(map[string]Token),
		intermediates: make(map[common.Address]struct{}),
	}
}

// LoadFromFile loads tokens from a JSON config file
func (r *TokenRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read token config: %w", err)
	}

	var config TokensConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse token config: %w", err)
	}

	for i, tc := range config.Tokens {
		if !common.IsHexAddress(tc.Address) {
			return fmt.Errorf("token %d (%s): invalid address %q", i, tc.Symbol, tc.Address)
		}
		if tc.Decimals > MaxDecimals {
			return fmt.Errorf("token %d (%s): decimals %d exceeds %d", i, tc.Symbol, tc.Decimals, MaxDecimals)
		}
		token := Token{
			Address:  common.HexToAddress(tc.Address),
			Symbol:   tc.Symbol,
			Name:     tc.Name,
			Decimals: tc.Decimals,
		}
		r.Register(token)
		if tc.Intermediate {
			r.MarkIntermediate(token.Address)
		}
	}

	return nil
}

// Register adds or replaces a token in the registry
func (r *TokenRegistry) Register(token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAddress[token.Address] = token
	r.bySymbol[strings.ToUpper(token.Symbol)] = token
}

// MarkIntermediate flags a registered token as a candidate junction for multi-hop routes.
func (r *TokenRegistry) MarkIntermediate(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAddress[addr]; ok {
		r.intermediates[addr] = struct{}{}
	}
}

// GetByAddress returns a token by its address
func (r *TokenRegistry) GetByAddress(addr common.Address) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.byAddress[addr]
	return token, ok
}

// GetBySymbol returns a token by its symbol, case-insensitively
func (r *TokenRegistry) GetBySymbol(symbol string) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.bySymbol[strings.ToUpper(symbol)]
	return token, ok
}

// Lookup returns the registered token or placeholder metadata for unknown addresses.
func (r *TokenRegistry) Lookup(addr common.Address) Token {
	if token, ok := r.GetByAddress(addr); ok {
		return token
	}
	return UnknownToken(addr)
}

// GetAll returns all registered tokens ordered by symbol
func (r *TokenRegistry) GetAll() []Token {
	r.mu.RLock()
	all := make([]Token, 0, len(r.byAddress))
	for _, t := range r.byAddress {
		all = append(all, t)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Symbol < all[j].Symbol })
	return all
}

// Intermediates returns the tokens usable as multi-hop junctions, ordered by symbol
func (r *TokenRegistry) Intermediates() []Token {
	r.mu.RLock()
	out := make([]Token, 0, len(r.intermediates))
	for addr := range r.intermediates {
		out = append(out, r.byAddress[addr])
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Count returns the number of registered tokens
func (r *TokenRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}

// DefaultRegistry returns a registry with hardcoded default tokens
// Use this as fallback if config file is not available
func DefaultRegistry() *TokenRegistry {
	r := NewTokenRegistry()
	r.Register(WETH)
	r.Register(USDC)
	r.Register(USDT)
	r.Register(DAI)
	r.MarkIntermediate(WETH.Address)
	r.MarkIntermediate(USDC.Address)
	return r
}
