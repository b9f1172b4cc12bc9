package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// WordSize is the width of one ABI-encoded word.
const WordSize = 32

// maxConcurrentCalls caps in-flight eth_calls issued by Multicall.
const maxConcurrentCalls = 10

// Client wraps the go-ethereum client with the read-only calls the
// reserve providers need.
type Client struct {
	client  *ethclient.Client
	rpcURL  string
	chainID *big.Int
}

// NewClient dials rpcURL and resolves the chain id.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}

	return &Client{
		client:  client,
		rpcURL:  rpcURL,
		chainID: chainID,
	}, nil
}

// Close closes the underlying client connection
func (c *Client) Close() {
	c.client.Close()
}

// ChainID returns the chain ID
func (c *Client) ChainID() *big.Int {
	return c.chainID
}

// CallContract executes a read-only contract call at the latest block
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return c.client.CallContract(ctx, msg, nil)
}

// BlockNumber returns the current block number
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

// Caller executes a read-only contract call.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// Multicall runs calls through the client; see Multicall.
func (c *Client) Multicall(ctx context.Context, calls []ethereum.CallMsg) ([][]byte, error) {
	return Multicall(ctx, c, calls)
}

// Multicall runs calls concurrently, at most maxConcurrentCalls at a time,
// and fails on the first error. Results keep the order of calls.
func Multicall(ctx context.Context, caller Caller, calls []ethereum.CallMsg) ([][]byte, error) {
	results := make([][]byte, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalls)
	for i, call := range calls {
		g.Go(func() error {
			out, err := caller.CallContract(gctx, call)
			if err != nil {
				return fmt.Errorf("call %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Word decodes the idx-th 32-byte ABI word of data as an unsigned integer.
func Word(data []byte, idx int) (*big.Int, error) {
	start := idx * WordSize
	if idx < 0 || len(data) < start+WordSize {
		return nil, fmt.Errorf("response too short for word %d: %d bytes", idx, len(data))
	}
	return new(uint256.Int).SetBytes32(data[start : start+WordSize]).ToBig(), nil
}

// AddressWord decodes the idx-th ABI word of data as an address.
func AddressWord(data []byte, idx int) (common.Address, error) {
	start := idx * WordSize
	if idx < 0 || len(data) < start+WordSize {
		return common.Address{}, fmt.Errorf("response too short for word %d: %d bytes", idx, len(data))
	}
	return common.BytesToAddress(data[start+12 : start+WordSize]), nil
}

// Common Ethereum addresses
var (
	ZeroAddress = common.HexToAddress("0x0000000000000000000000000000000000000000")
)
