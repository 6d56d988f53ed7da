package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/curve"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
)

// BuyParams describes a buy against a bonding curve. AmountIn is the gross
// lamport amount the buyer spends, fees included. Referrer is optional and
// is ignored once the buyer's profile has a referrer bound.
type BuyParams struct {
	Mint         solana.PublicKey
	Buyer        solana.PublicKey
	AmountIn     uint64
	MinTokensOut uint64
	Referrer     *solana.PublicKey
}

// TradeResult reports the settled amounts of a buy or sell.
type TradeResult struct {
	Mint solana.PublicKey
	User solana.PublicKey

	IsBuy bool
	// SolAmount is the lamport amount that moved through the curve: the
	// net buy-in for buys, the gross curve payout for sells.
	SolAmount   uint64
	TokenAmount uint64

	TotalFee    uint64
	ProtocolFee uint64
	CreatorFee  uint64
	ReferralFee uint64
	Referrer    *solana.PublicKey

	Price     uint64
	MarketCap uint64

	Pre  events.ReserveSnapshot
	Post events.ReserveSnapshot

	// GraduationReady is set on the single trade that pushes the curve
	// over the graduation threshold.
	GraduationReady bool
}

// Buy swaps lamports for curve tokens. The whole operation commits
// atomically or leaves no trace.
func (e *Engine) Buy(ctx context.Context, p BuyParams) (TradeResult, error) {
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

	if e.params.SniperWindowSeconds > 0 &&
		e.now().Unix()-c.LaunchTime < e.params.SniperWindowSeconds &&
		p.AmountIn > e.params.SniperMaxBuyLamports {
		return TradeResult{}, ErrSniperLimitExceeded
	}

	fees, err := e.splitFee(p.AmountIn)
	if err != nil {
		return TradeResult{}, err
	}
	netIn, err := curve.CheckedSub(p.AmountIn, fees.total)
	if err != nil {
		return TradeResult{}, err
	}
	if netIn == 0 {
		return TradeResult{}, ErrInvalidAmount
	}

	pre := snapshot(c)
	tokensOut, err := curve.BuyQuote(c.VirtualSolReserves, c.VirtualTokenReserves, netIn)
	if err != nil {
		return TradeResult{}, err
	}
	if tokensOut < p.MinTokensOut {
		return TradeResult{}, ErrMinTokensNotMet
	}
	if tokensOut > c.RealTokenReserves {
		return TradeResult{}, ErrInsufficientLiquidity
	}

	if err := c.ApplyBuy(netIn, tokensOut, fees.creator); err != nil {
		return TradeResult{}, err
	}

	split, err := e.resolveReferral(tx, p.Buyer, p.Referrer, fees.protocol)
	if err != nil {
		return TradeResult{}, err
	}

	curveAddr := ledger.CurveAddress(p.Mint)
	intoCurve, err := curve.CheckedAdd(netIn, fees.creator)
	if err != nil {
		return TradeResult{}, err
	}
	if err := tx.TransferLamports(p.Buyer, curveAddr, intoCurve); err != nil {
		return TradeResult{}, err
	}
	if err := tx.TransferLamports(p.Buyer, tx.Protocol().Treasury, split.treasuryFee); err != nil {
		return TradeResult{}, err
	}
	if split.hasReferrer && split.referralFee > 0 {
		if err := tx.TransferLamports(p.Buyer, split.referrer, split.referralFee); err != nil {
			return TradeResult{}, err
		}
	}
	if err := tx.TransferTokens(ledger.VaultAddress(p.Mint), p.Buyer, p.Mint, tokensOut); err != nil {
		return TradeResult{}, err
	}
	tx.CountVolume(netIn)

	graduated := false
	if !c.GraduationSignaled && c.RealSolReserves >= e.params.GraduationSolThreshold {
		c.GraduationSignaled = true
		graduated = true
	}

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
		Mint:            p.Mint,
		User:            p.Buyer,
		IsBuy:           true,
		SolAmount:       netIn,
		TokenAmount:     tokensOut,
		TotalFee:        fees.total,
		ProtocolFee:     fees.protocol,
		CreatorFee:      fees.creator,
		Price:           price,
		MarketCap:       mcap,
		Pre:             pre,
		Post:            post,
		GraduationReady: graduated,
	}
	if split.hasReferrer {
		res.ReferralFee = split.referralFee
		referrer := split.referrer
		res.Referrer = &referrer
	}

	e.logger.Debug("buy executed",
		zap.Stringer("mint", p.Mint),
		zap.Stringer("buyer", p.Buyer),
		zap.Uint64("sol_in", p.AmountIn),
		zap.Uint64("tokens_out", tokensOut),
		zap.Uint64("price", price))

	e.publish(events.TradeExecutedEvent{
		BaseEvent:   events.BaseEvent{EventType: events.TradeExecuted, EventTime: e.now()},
		Mint:        p.Mint,
		User:        p.Buyer,
		IsBuy:       true,
		SolAmount:   netIn,
		TokenAmount: tokensOut,
		Price:       price,
		MarketCap:   mcap,
		Pre:         pre,
		Post:        post,
	})
	if graduated {
		e.logger.Info("graduation threshold reached",
			zap.Stringer("mint", p.Mint),
			zap.Uint64("real_sol_reserves", post.RealSolReserves))
		e.publish(events.GraduationTriggeredEvent{
			BaseEvent:       events.BaseEvent{EventType: events.GraduationTriggered, EventTime: e.now()},
			Mint:            p.Mint,
			RealSolReserves: post.RealSolReserves,
			MarketCap:       mcap,
		})
	}
	return res, nil
}
