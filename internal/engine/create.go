package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/curve"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
)

// CreateAssetParams describes a token launch. InitialBuyLamports, when
// nonzero, is spent by the creator in the same operation; the creator's
// first buy is fee-free and exempt from sniper protection.
type CreateAssetParams struct {
	Creator solana.PublicKey

	Name   string
	Symbol string
	URI    string

	InitialBuyLamports uint64
}

// CreateAssetResult reports the launched curve and the creator's initial
// position, if any.
type CreateAssetResult struct {
	Mint            solana.PublicKey
	Curve           ledger.CurveAccount
	InitialTokens   uint64
	GraduationReady bool
}

// CreateAsset mints a new token with its bonding curve. The creator pays
// the flat creation fee to the treasury up front.
func (e *Engine) CreateAsset(ctx context.Context, p CreateAssetParams) (CreateAssetResult, error) {
	_ = ctx
	if len(p.Name) > maxNameLen {
		return CreateAssetResult{}, ErrNameTooLong
	}
	if len(p.Symbol) > maxSymbolLen {
		return CreateAssetResult{}, ErrSymbolTooLong
	}
	if len(p.URI) > maxURILen {
		return CreateAssetResult{}, ErrURITooLong
	}

	tx := e.store.Begin()
	if tx.Protocol().Paused {
		return CreateAssetResult{}, ErrProtocolPaused
	}

	mint := ledger.DeriveMint(p.Creator, tx.Protocol().TotalTokensLaunched, p.Symbol)

	if e.params.CreationFeeLamports > 0 {
		if err := tx.TransferLamports(p.Creator, tx.Protocol().Treasury, e.params.CreationFeeLamports); err != nil {
			return CreateAssetResult{}, err
		}
	}

	c := &ledger.CurveAccount{
		Creator:              p.Creator,
		Mint:                 mint,
		Name:                 p.Name,
		Symbol:               p.Symbol,
		URI:                  p.URI,
		TotalSupply:          e.params.TotalSupply,
		VirtualSolReserves:   e.params.VirtualSolReserves,
		VirtualTokenReserves: e.params.VirtualTokenReserves,
		RealTokenReserves:    e.params.RealTokenReserves,
		LaunchTime:           e.now().Unix(),
	}
	if err := tx.CreateCurve(c); err != nil {
		return CreateAssetResult{}, err
	}
	if err := tx.MintTokens(ledger.VaultAddress(mint), mint, e.params.TotalSupply); err != nil {
		return CreateAssetResult{}, err
	}
	tx.CountLaunch()

	var initialTokens, mcap uint64
	graduated := false
	if p.InitialBuyLamports > 0 {
		out, err := curve.BuyQuote(c.VirtualSolReserves, c.VirtualTokenReserves, p.InitialBuyLamports)
		if err != nil {
			return CreateAssetResult{}, err
		}
		if out > c.RealTokenReserves {
			return CreateAssetResult{}, ErrInsufficientLiquidity
		}
		if err := c.ApplyBuy(p.InitialBuyLamports, out, 0); err != nil {
			return CreateAssetResult{}, err
		}
		if err := tx.TransferLamports(p.Creator, ledger.CurveAddress(mint), p.InitialBuyLamports); err != nil {
			return CreateAssetResult{}, err
		}
		if err := tx.TransferTokens(ledger.VaultAddress(mint), p.Creator, mint, out); err != nil {
			return CreateAssetResult{}, err
		}
		tx.CountVolume(p.InitialBuyLamports)
		initialTokens = out

		// A large enough first buy can graduate the curve immediately.
		if !c.GraduationSignaled && c.RealSolReserves >= e.params.GraduationSolThreshold {
			c.GraduationSignaled = true
			graduated = true
			price, err := curve.SpotPrice(c.VirtualSolReserves, c.VirtualTokenReserves)
			if err != nil {
				return CreateAssetResult{}, err
			}
			mcap, err = curve.MarketCap(c.TotalSupply, price)
			if err != nil {
				return CreateAssetResult{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return CreateAssetResult{}, err
	}

	e.logger.Info("asset created",
		zap.Stringer("mint", mint),
		zap.Stringer("creator", p.Creator),
		zap.String("symbol", p.Symbol),
		zap.Uint64("initial_buy", p.InitialBuyLamports))

	e.publish(events.CurveInitializedEvent{
		BaseEvent: events.BaseEvent{EventType: events.CurveInitialized, EventTime: e.now()},
		Mint:      mint,
		Creator:   p.Creator,
		Name:      p.Name,
		Symbol:    p.Symbol,
		URI:       p.URI,
	})
	if graduated {
		e.logger.Info("graduation threshold reached",
			zap.Stringer("mint", mint),
			zap.Uint64("real_sol_reserves", c.RealSolReserves))
		e.publish(events.GraduationTriggeredEvent{
			BaseEvent:       events.BaseEvent{EventType: events.GraduationTriggered, EventTime: e.now()},
			Mint:            mint,
			RealSolReserves: c.RealSolReserves,
			MarketCap:       mcap,
		})
	}
	return CreateAssetResult{Mint: mint, Curve: *c, InitialTokens: initialTokens, GraduationReady: graduated}, nil
}
