package dex

import (
	"bytes"
	"context"
	"errors"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// ErrPairNotFound is returned when a DEX has no pool for the requested tokens.
var ErrPairNotFound = errors.New("pair does not exist")

// ContractCaller is the subset of the Ethereum client the providers use.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// DEXClient supplies reserve snapshots for constant-product pools on one DEX.
type DEXClient interface {
	// GetPairByTokens returns a fresh snapshot with Token0 sorted below Token1.
	GetPairByTokens(ctx context.Context, tokenA, tokenB entities.Token) (*entities.Pair, error)

	// DEXType returns the type of DEX
	DEXType() entities.DEXType
}

// sortTokens orders two tokens by address bytes (the Uniswap V2 convention).
func sortTokens(tokenA, tokenB entities.Token) (entities.Token, entities.Token) {
	if bytes.Compare(tokenA.Address.Bytes(), tokenB.Address.Bytes()) < 0 {
		return tokenA, tokenB
	}
	return tokenB, tokenA
}

// SortAddresses orders two addresses by their bytes.
func SortAddresses(a, b common.Address) (common.Address, common.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) < 0 {
		return a, b
	}
	return b, a
}
