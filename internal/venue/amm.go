// internal/venue/amm.go
package venue

import (
	"context"
	"crypto/sha256"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// AMM is an in-process constant-product venue. It gives migrated assets a
// place to live in tests and local runs; a production deployment would swap
// in a client for the real destination exchange behind the same interface.
type AMM struct {
	mu     sync.RWMutex
	pools  map[solana.PublicKey]*Pool
	logger *zap.Logger
}

// Pool holds the reserves of one migrated asset.
type Pool struct {
	Address      solana.PublicKey
	Mint         solana.PublicKey
	TokenReserve uint64
	SolReserve   uint64
}

// NewAMM creates an empty venue.
func NewAMM(logger *zap.Logger) *AMM {
	return &AMM{
		pools:  make(map[solana.PublicKey]*Pool),
		logger: logger.Named("venue"),
	}
}

// DepositLiquidity creates the pool for mint. A pool can only be created
// once and only with liquidity on both sides.
func (a *AMM) DepositLiquidity(_ context.Context, mint solana.PublicKey, tokenAmount, solAmount uint64) (PoolHandle, error) {
	if tokenAmount == 0 || solAmount == 0 {
		return PoolHandle{}, ErrDepositRejected
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pools[mint]; exists {
		return PoolHandle{}, ErrDepositRejected
	}

	addr := poolAddress(mint)
	a.pools[mint] = &Pool{
		Address:      addr,
		Mint:         mint,
		TokenReserve: tokenAmount,
		SolReserve:   solAmount,
	}

	a.logger.Info("Liquidity pool created",
		zap.String("mint", mint.String()),
		zap.String("pool", addr.String()),
		zap.Uint64("token_amount", tokenAmount),
		zap.Uint64("sol_amount", solAmount))

	return PoolHandle{Address: addr}, nil
}

func poolAddress(mint solana.PublicKey) solana.PublicKey {
	h := sha256.Sum256(append([]byte("amm/pool/"), mint.Bytes()...))
	return solana.PublicKeyFromBytes(h[:])
}

// Pool returns the pool for mint, if one was created.
func (a *AMM) Pool(mint solana.PublicKey) (Pool, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.pools[mint]
	if !ok {
		return Pool{}, false
	}
	return *p, true
}
