// internal/venue/venue.go
package venue

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

// ErrDepositRejected is returned when the venue refuses the liquidity
// deposit; the caller treats this as an atomic failure of the migration.
var ErrDepositRejected = errors.New("venue rejected liquidity deposit")

// PoolHandle identifies the liquidity pool created by a deposit. It is
// opaque to the trading engine.
type PoolHandle struct {
	Address solana.PublicKey
}

// Venue is the external liquidity destination a graduated curve migrates to.
// DepositLiquidity either creates a pool holding exactly the given amounts
// or fails without side effects; the engine relies on that atomicity to keep
// migration all-or-nothing.
type Venue interface {
	DepositLiquidity(ctx context.Context, mint solana.PublicKey, tokenAmount, solAmount uint64) (PoolHandle, error)
}
