package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Token is display metadata for an ERC-20. The address doubles as the opaque
// token id used to orient pairs and chain hops; decimals never enter pricing math.
type Token struct {
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Name     string         `json:"name"`
	Decimals uint8          `json:"decimals"`
}

// Amount wraps raw in a TokenAmount carrying this token's decimals.
func (t Token) Amount(raw *big.Int) (TokenAmount, error) {
	return NewTokenAmount(raw, t.Decimals)
}

// One returns a single whole token in raw units (10^decimals).
func (t Token) One() *big.Int {
	return pow10(int(t.Decimals))
}

// UnknownToken returns placeholder metadata for an address missing from the registry.
func UnknownToken(addr common.Address) Token {
	return Token{
		Address:  addr,
		Symbol:   "UNKNOWN",
		Decimals: 18,
	}
}

// WETH is the canonical Wrapped Ether token on Ethereum mainnet
var WETH = Token{
	Address:  common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	Symbol:   "WETH",
	Name:     "Wrapped Ether",
	Decimals: 18,
}

// USDC is USD Coin on Ethereum mainnet
var USDC = Token{
	Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	Symbol:   "USDC",
	Name:     "USD Coin",
	Decimals: 6,
}

// USDT is Tether USD on Ethereum mainnet
var USDT = Token{
	Address:  common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"),
	Symbol:   "USDT",
	Name:     "Tether USD",
	Decimals: 6,
}

// DAI is Dai Stablecoin on Ethereum mainnet
var DAI = Token{
	Address:  common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"),
	Symbol:   "DAI",
	Name:     "Dai Stablecoin",
	Decimals: 18,
}
