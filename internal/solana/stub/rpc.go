package stub

import (
	"context"
	"errors"

	"tokenradar/internal/solana"
)

// ErrNotFound is returned when a requested mint is not in the stub store.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	Transactions map[string]*solana.Transaction
	Signatures   map[string][]solana.SignatureInfo
	Holders      map[string][]solana.TokenHolder
	Supply       map[string]float64

	// Err, when set, is returned by every call. Simulates a dead RPC node.
	Err error
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Transactions: make(map[string]*solana.Transaction),
		Signatures:   make(map[string][]solana.SignatureInfo),
		Holders:      make(map[string][]solana.TokenHolder),
		Supply:       make(map[string]float64),
	}
}

// GetTransaction retrieves a transaction by signature from the stub store.
// A signature not in the store resolves to nil without an error, matching
// the HTTP client's contract for transactions unknown to the node.
func (c *RPCClient) GetTransaction(_ context.Context, signature string) (*solana.Transaction, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Transactions[signature], nil
}

// GetSignaturesForAddress retrieves signatures for an address from the stub store.
func (c *RPCClient) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	sigs, ok := c.Signatures[address]
	if !ok {
		return nil, nil
	}

	// Apply limit if specified
	if opts != nil && opts.Limit > 0 && opts.Limit < len(sigs) {
		return sigs[:opts.Limit], nil
	}

	return sigs, nil
}

// GetTokenLargestAccounts retrieves holders for a mint from the stub store.
func (c *RPCClient) GetTokenLargestAccounts(_ context.Context, mint string) ([]solana.TokenHolder, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Holders[mint], nil
}

// GetTokenSupply retrieves the stubbed supply for a mint.
func (c *RPCClient) GetTokenSupply(_ context.Context, mint string) (float64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	supply, ok := c.Supply[mint]
	if !ok {
		return 0, ErrNotFound
	}
	return supply, nil
}

// AddTransaction adds a transaction to the stub store.
func (c *RPCClient) AddTransaction(tx *solana.Transaction) {
	c.Transactions[tx.Signature] = tx
}

// AddSignatures adds signatures for an address to the stub store.
func (c *RPCClient) AddSignatures(address string, sigs []solana.SignatureInfo) {
	c.Signatures[address] = sigs
}
