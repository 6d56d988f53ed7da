package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/curve"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
)

// SellParams describes a sell into a bonding curve. AmountIn is the token
// amount sold; MinSolOut is the floor on the lamports the seller receives
// after fees.
type SellParams struct {
	Mint      solana.PublicKey
	Seller    solana.PublicKey
	AmountIn  uint64
	MinSolOut uint64
	Referrer  *solana.PublicKey
}

// Sell swaps curve tokens back for lamports. The fee is charged on the
// curve payout, so the seller receives the quoted amount minus fees.
// Sniper protection does not apply to sells.
func (e *Engine) Sell(ctx context.Context, p SellParams) (TradeResult, error) {
	_ = ctx
	if p.AmountIn == 0 {
		return TradeResult{}, ErrInvalidAmount
	}

	unlock := e.store.LockCurve(p.Mint)
	defer unlock()

	tx := e.store.Begin()
	if tx.Protocol().Paused {
		return TradeResult{}, ErrProtocolPaused
	}
	c, err := tx.Curve(p.Mint)
	if err != nil {
		return TradeResult{}, err
	}
	if c.Complete {
		return TradeResult{}, ErrTradingDisabled
	}

	pre := snapshot(c)
	solOut, err := curve.SellQuote(c.VirtualSolReserves, c.VirtualTokenReserves, p.AmountIn)
	if err != nil {
		return TradeResult{}, err
	}
	if solOut == 0 {
		return TradeResult{}, ErrInvalidAmount
	}
	if solOut > c.RealSolReserves {
		return TradeResult{}, ErrInsufficientLiquidity
	}

	fees, err := e.splitFee(solOut)
	if err != nil {
		return TradeResult{}, err
	}
	sellerReceives, err := curve.CheckedSub(solOut, fees.total)
	if err != nil {
		return TradeResult{}, err
	}
	if sellerReceives < p.MinSolOut {
		return TradeResult{}, ErrSlippageExceeded
	}

	if err := c.ApplySell(solOut, p.AmountIn, fees.creator); err != nil {
		return TradeResult{}, err
	}

	split, err := e.resolveReferral(tx, p.Seller, p.Referrer, fees.protocol)
	if err != nil {
		return TradeResult{}, err
	}

	// The curve keeps the creator's cut; everything else leaves it.
	curveAddr := ledger.CurveAddress(p.Mint)
	if err := tx.TransferTokens(p.Seller, ledger.VaultAddress(p.Mint), p.Mint, p.AmountIn); err != nil {
		return TradeResult{}, err
	}
	if err := tx.TransferLamports(curveAddr, p.Seller, sellerReceives); err != nil {
		return TradeResult{}, err
	}
	if err := tx.TransferLamports(curveAddr, tx.Protocol().Treasury, split.treasuryFee); err != nil {
		return TradeResult{}, err
	}
	if split.hasReferrer && split.referralFee > 0 {
		if err := tx.TransferLamports(curveAddr, split.referrer, split.referralFee); err != nil {
			return TradeResult{}, err
		}
	}
	tx.CountVolume(solOut)

	price, err := curve.SpotPrice(c.VirtualSolReserves, c.VirtualTokenReserves)
	if err != nil {
		return TradeResult{}, err
	}
	mcap, err := curve.MarketCap(c.TotalSupply, price)
	if err != nil {
		return TradeResult{}, err
	}
	post := snapshot(c)

	if err := tx.Commit(); err != nil {
		return TradeResult{}, err
	}

	res := TradeResult{
		Mint:        p.Mint,
		User:        p.Seller,
		IsBuy:       false,
		SolAmount:   solOut,
		TokenAmount: p.AmountIn,
		TotalFee:    fees.total,
		ProtocolFee: fees.protocol,
		CreatorFee:  fees.creator,
		Price:       price,
		MarketCap:   mcap,
		Pre:         pre,
		Post:        post,
	}
	if split.hasReferrer {
		res.ReferralFee = split.referralFee
		referrer := split.referrer
		res.Referrer = &referrer
	}

	e.logger.Debug("sell executed",
		zap.Stringer("mint", p.Mint),
		zap.Stringer("seller", p.Seller),
		zap.Uint64("tokens_in", p.AmountIn),
		zap.Uint64("sol_out", sellerReceives),
		zap.Uint64("price", price))

	e.publish(events.TradeExecutedEvent{
		BaseEvent:   events.BaseEvent{EventType: events.TradeExecuted, EventTime: e.now()},
		Mint:        p.Mint,
		User:        p.Seller,
		IsBuy:       false,
		SolAmount:   solOut,
		TokenAmount: p.AmountIn,
		Price:       price,
		MarketCap:   mcap,
		Pre:         pre,
		Post:        post,
	})
	return res, nil
}
