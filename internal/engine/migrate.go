package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/curve"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
	"github.com/dane-04-code/Fusefun/internal/venue"
)

// MigrateParams identifies the curve to migrate and the signer requesting
// it. Only the protocol's migration authority may migrate.
type MigrateParams struct {
	Mint      solana.PublicKey
	Authority solana.PublicKey
}

// MigrationResult reports how a graduated curve was unwound.
type MigrationResult struct {
	Mint solana.PublicKey
	Pool venue.PoolHandle

	CreatorPayout  uint64
	SolToVenue     uint64
	TokensToVenue  uint64
	FinalMarketCap uint64
}

// Migrate closes a graduated curve: the creator's accrued fees are paid
// out, the remaining vault tokens and curve lamports (minus the rent
// reserve) are deposited into the external venue, and the curve is marked
// complete. Trading on the curve stops permanently.
func (e *Engine) Migrate(ctx context.Context, p MigrateParams) (MigrationResult, error) {
	if e.venue == nil {
		return MigrationResult{}, ErrNoVenue
	}

	unlock := e.store.LockCurve(p.Mint)
	defer unlock()

	tx := e.store.Begin()
	if p.Authority != tx.Protocol().MigrationAuthority {
		return MigrationResult{}, ErrUnauthorized
	}
	c, err := tx.Curve(p.Mint)
	if err != nil {
		return MigrationResult{}, err
	}
	if c.Complete {
		return MigrationResult{}, ErrCurveAlreadyMigrated
	}
	if c.RealSolReserves < e.params.GraduationSolThreshold {
		return MigrationResult{}, ErrGraduationNotReached
	}

	curveAddr := ledger.CurveAddress(p.Mint)
	vault := ledger.VaultAddress(p.Mint)

	payout := c.CreatorFeeAccrued
	if payout > 0 {
		if err := tx.TransferLamports(curveAddr, c.Creator, payout); err != nil {
			return MigrationResult{}, err
		}
		c.CreatorFeeAccrued = 0
	}

	solToVenue := tx.Lamports(curveAddr)
	if solToVenue > e.params.RentReserveLamports {
		solToVenue -= e.params.RentReserveLamports
	} else {
		solToVenue = 0
	}
	tokensToVenue := tx.Tokens(vault, p.Mint)

	pool, err := e.venue.DepositLiquidity(ctx, p.Mint, tokensToVenue, solToVenue)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("deposit liquidity: %w", err)
	}

	if solToVenue > 0 {
		if err := tx.TransferLamports(curveAddr, pool.Address, solToVenue); err != nil {
			return MigrationResult{}, err
		}
	}
	if tokensToVenue > 0 {
		if err := tx.TransferTokens(vault, pool.Address, p.Mint, tokensToVenue); err != nil {
			return MigrationResult{}, err
		}
	}

	price, err := curve.SpotPrice(c.VirtualSolReserves, c.VirtualTokenReserves)
	if err != nil {
		return MigrationResult{}, err
	}
	mcap, err := curve.MarketCap(c.TotalSupply, price)
	if err != nil {
		return MigrationResult{}, err
	}

	c.Complete = true
	c.GraduationSignaled = true
	c.RealSolReserves = 0
	c.RealTokenReserves = 0
	tx.CountGraduation()

	if err := tx.Commit(); err != nil {
		return MigrationResult{}, err
	}

	e.logger.Info("curve migrated",
		zap.Stringer("mint", p.Mint),
		zap.String("pool", pool.Address.String()),
		zap.Uint64("sol_to_venue", solToVenue),
		zap.Uint64("tokens_to_venue", tokensToVenue),
		zap.Uint64("creator_payout", payout))

	e.publish(events.CurveCompletedEvent{
		BaseEvent:      events.BaseEvent{EventType: events.CurveCompleted, EventTime: e.now()},
		Mint:           p.Mint,
		Authority:      p.Authority,
		FinalMarketCap: mcap,
		TotalSolRaised: solToVenue,
		CreatorPayout:  payout,
	})
	return MigrationResult{
		Mint:           p.Mint,
		Pool:           pool,
		CreatorPayout:  payout,
		SolToVenue:     solToVenue,
		TokensToVenue:  tokensToVenue,
		FinalMarketCap: mcap,
	}, nil
}
