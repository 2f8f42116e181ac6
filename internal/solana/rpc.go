package solana

import "context"

// RPCClient is the slice of the Solana JSON-RPC surface the radar uses:
// funding-graph traces and holder concentration checks.
type RPCClient interface {
	// GetTransaction retrieves a transaction by signature.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetTokenLargestAccounts retrieves the largest token accounts for a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenHolder, error)

	// GetTokenSupply retrieves the total UI supply for a mint.
	GetTokenSupply(ctx context.Context, mint string) (float64, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	LogMessages []string
}

// TransactionMessage contains parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}
