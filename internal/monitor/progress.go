// Package monitor tracks how far each bonding curve has moved toward
// graduation, driven by the engine's event stream.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/events"
)

// ProgressUpdate is a point-in-time view of a curve's march toward the
// graduation threshold.
type ProgressUpdate struct {
	Mint            solana.PublicKey
	RealSolReserves uint64
	Threshold       uint64
	// Percent is RealSolReserves over Threshold, capped at 100, with two
	// decimal places.
	Percent decimal.Decimal
	// PriceSOL is the last trade price converted to SOL per whole token.
	PriceSOL     decimal.Decimal
	MarketCapSOL decimal.Decimal
	LastTrade    time.Time
	Graduated    bool
	Migrated     bool
}

// ProgressCallback is invoked after every update, outside the tracker lock.
type ProgressCallback func(ProgressUpdate)

// Tracker consumes trade events and keeps per-curve graduation progress.
type Tracker struct {
	threshold uint64
	decimals  uint8
	logger    *zap.Logger
	callback  ProgressCallback

	mu     sync.RWMutex
	curves map[solana.PublicKey]ProgressUpdate

	subs []events.Subscription
}

// NewTracker creates a tracker for the given graduation threshold. decimals
// is the token's decimal count, used to convert raw prices to SOL per whole
// token. callback may be nil.
func NewTracker(threshold uint64, decimals uint8, logger *zap.Logger, callback ProgressCallback) *Tracker {
	return &Tracker{
		threshold: threshold,
		decimals:  decimals,
		logger:    logger.Named("monitor"),
		callback:  callback,
		curves:    make(map[solana.PublicKey]ProgressUpdate),
	}
}

// Register subscribes the tracker to the event bus. Call Close to detach.
func (t *Tracker) Register(bus *events.Bus) {
	t.subs = append(t.subs,
		bus.SubscribeFunc(events.TradeExecuted, t.onTrade),
		bus.SubscribeFunc(events.GraduationTriggered, t.onGraduation),
		bus.SubscribeFunc(events.CurveCompleted, t.onCompleted),
	)
}

// Close detaches the tracker from the bus.
func (t *Tracker) Close() {
	for _, sub := range t.subs {
		sub.Unsubscribe()
	}
	t.subs = nil
}

// Progress returns the latest view of mint, if any trade has been seen.
func (t *Tracker) Progress(mint solana.PublicKey) (ProgressUpdate, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	u, ok := t.curves[mint]
	return u, ok
}

func (t *Tracker) onTrade(_ context.Context, ev events.Event) error {
	trade, ok := ev.(events.TradeExecutedEvent)
	if !ok {
		return nil
	}

	update := ProgressUpdate{
		Mint:            trade.Mint,
		RealSolReserves: trade.Post.RealSolReserves,
		Threshold:       t.threshold,
		Percent:         t.percent(trade.Post.RealSolReserves),
		PriceSOL:        t.priceSOL(trade.Price),
		MarketCapSOL:    lamportsToSOL(trade.MarketCap),
		LastTrade:       trade.Timestamp(),
	}

	t.mu.Lock()
	prev, seen := t.curves[trade.Mint]
	update.Graduated = seen && prev.Graduated
	update.Migrated = seen && prev.Migrated
	t.curves[trade.Mint] = update
	t.mu.Unlock()

	if milestone, crossed := crossedMilestone(prev.Percent, update.Percent, seen); crossed {
		t.logger.Info("graduation milestone crossed",
			zap.Stringer("mint", trade.Mint),
			zap.Int64("milestone_percent", milestone),
			zap.String("progress", update.Percent.StringFixed(2)),
			zap.String("market_cap_sol", update.MarketCapSOL.StringFixed(4)))
	}
	if t.callback != nil {
		t.callback(update)
	}
	return nil
}

func (t *Tracker) onGraduation(_ context.Context, ev events.Event) error {
	g, ok := ev.(events.GraduationTriggeredEvent)
	if !ok {
		return nil
	}
	t.mark(g.Mint, func(u *ProgressUpdate) {
		u.Graduated = true
		u.RealSolReserves = g.RealSolReserves
		u.Percent = t.percent(g.RealSolReserves)
	})
	t.logger.Info("curve graduated",
		zap.Stringer("mint", g.Mint),
		zap.Uint64("real_sol_reserves", g.RealSolReserves))
	return nil
}

func (t *Tracker) onCompleted(_ context.Context, ev events.Event) error {
	c, ok := ev.(events.CurveCompletedEvent)
	if !ok {
		return nil
	}
	t.mark(c.Mint, func(u *ProgressUpdate) {
		u.Graduated = true
		u.Migrated = true
	})
	t.logger.Info("curve migrated",
		zap.Stringer("mint", c.Mint),
		zap.Uint64("total_sol_raised", c.TotalSolRaised))
	return nil
}

func (t *Tracker) mark(mint solana.PublicKey, fn func(*ProgressUpdate)) {
	t.mu.Lock()
	u, ok := t.curves[mint]
	if !ok {
		u = ProgressUpdate{Mint: mint, Threshold: t.threshold}
	}
	fn(&u)
	t.curves[mint] = u
	t.mu.Unlock()

	if t.callback != nil {
		t.callback(u)
	}
}

func (t *Tracker) percent(realSol uint64) decimal.Decimal {
	if t.threshold == 0 {
		return decimal.Zero
	}
	pct := decimal.NewFromUint64(realSol).
		Div(decimal.NewFromUint64(t.threshold)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// priceSOL converts a scaled spot price (lamports per whole token, times the
// price precision) to SOL per whole token.
func (t *Tracker) priceSOL(price uint64) decimal.Decimal {
	return decimal.NewFromUint64(price).
		Shift(int32(t.decimals)).
		Div(decimal.NewFromInt(1_000_000)).
		Div(decimal.NewFromInt(1_000_000_000))
}

func lamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Div(decimal.NewFromInt(1_000_000_000))
}

var milestones = []int64{25, 50, 75, 100}

func crossedMilestone(prev, cur decimal.Decimal, seen bool) (int64, bool) {
	if !seen {
		prev = decimal.Zero
	}
	for i := len(milestones) - 1; i >= 0; i-- {
		m := decimal.NewFromInt(milestones[i])
		if cur.GreaterThanOrEqual(m) && prev.LessThan(m) {
			return milestones[i], true
		}
	}
	return 0, false
}
