package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/storage/models"
)

// Persister mirrors the engine's event stream into storage. It is a plain
// bus subscriber, so a persistence failure never blocks trading.
type Persister struct {
	store  Storage
	logger *zap.Logger
	subs   []events.Subscription
}

// NewPersister wraps store for use as a bus subscriber.
func NewPersister(store Storage, logger *zap.Logger) *Persister {
	return &Persister{
		store:  store,
		logger: logger.Named("persister"),
	}
}

// Register subscribes the persister to the event bus.
func (p *Persister) Register(bus *events.Bus) {
	p.subs = append(p.subs,
		bus.SubscribeFunc(events.CurveInitialized, p.onInitialized),
		bus.SubscribeFunc(events.TradeExecuted, p.onTrade),
		bus.SubscribeFunc(events.CurveCompleted, p.onCompleted),
	)
}

// Close detaches the persister from the bus.
func (p *Persister) Close() {
	for _, sub := range p.subs {
		sub.Unsubscribe()
	}
	p.subs = nil
}

func (p *Persister) onInitialized(ctx context.Context, ev events.Event) error {
	e, ok := ev.(events.CurveInitializedEvent)
	if !ok {
		return nil
	}
	err := p.store.SaveLaunch(ctx, &models.Launch{
		Mint:       e.Mint.String(),
		Creator:    e.Creator.String(),
		Name:       e.Name,
		Symbol:     e.Symbol,
		URI:        e.URI,
		LaunchTime: e.Timestamp().Unix(),
	})
	if err != nil {
		p.logger.Error("failed to persist launch",
			zap.Stringer("mint", e.Mint), zap.Error(err))
	}
	return err
}

func (p *Persister) onTrade(ctx context.Context, ev events.Event) error {
	e, ok := ev.(events.TradeExecutedEvent)
	if !ok {
		return nil
	}
	err := p.store.SaveTrade(ctx, &models.Trade{
		Mint:              e.Mint.String(),
		Wallet:            e.User.String(),
		IsBuy:             e.IsBuy,
		SolAmount:         e.SolAmount,
		TokenAmount:       e.TokenAmount,
		Price:             e.Price,
		MarketCap:         e.MarketCap,
		RealSolReserves:   e.Post.RealSolReserves,
		RealTokenReserves: e.Post.RealTokenReserves,
	})
	if err != nil {
		p.logger.Error("failed to persist trade",
			zap.Stringer("mint", e.Mint), zap.Error(err))
	}
	return err
}

func (p *Persister) onCompleted(ctx context.Context, ev events.Event) error {
	e, ok := ev.(events.CurveCompletedEvent)
	if !ok {
		return nil
	}
	err := p.store.SaveCompletion(ctx, &models.Completion{
		Mint:           e.Mint.String(),
		Authority:      e.Authority.String(),
		SolRaised:      e.TotalSolRaised,
		CreatorPayout:  e.CreatorPayout,
		FinalMarketCap: e.FinalMarketCap,
	})
	if err != nil {
		p.logger.Error("failed to persist completion",
			zap.Stringer("mint", e.Mint), zap.Error(err))
	}
	return err
}
