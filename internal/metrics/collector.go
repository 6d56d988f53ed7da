// Package metrics exposes prometheus metrics for the launchpad, fed by the
// engine's event stream.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dane-04-code/Fusefun/internal/events"
)

// Collector owns the launchpad metric set.
type Collector struct {
	trades      *prometheus.CounterVec
	volumeSOL   prometheus.Counter
	launches    prometheus.Counter
	graduations prometheus.Counter
	migrations  prometheus.Counter
	reserves    *prometheus.GaugeVec

	subs []events.Subscription
}

// NewCollector builds and registers the metric set on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchpad_trades_total",
				Help: "Total number of executed trades",
			},
			[]string{"side"},
		),
		volumeSOL: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "launchpad_volume_sol_total",
				Help: "Cumulative traded volume in SOL",
			},
		),
		launches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "launchpad_launches_total",
				Help: "Total number of token launches",
			},
		),
		graduations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "launchpad_graduations_total",
				Help: "Curves that crossed the graduation threshold",
			},
		),
		migrations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "launchpad_migrations_total",
				Help: "Curves migrated to the external venue",
			},
		),
		reserves: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "launchpad_real_sol_reserves",
				Help: "Real SOL reserves per curve in lamports",
			},
			[]string{"mint"},
		),
	}

	reg.MustRegister(c.trades, c.volumeSOL, c.launches, c.graduations, c.migrations, c.reserves)
	return c
}

// Register subscribes the collector to the event bus.
func (c *Collector) Register(bus *events.Bus) {
	c.subs = append(c.subs,
		bus.SubscribeFunc(events.CurveInitialized, c.onInitialized),
		bus.SubscribeFunc(events.TradeExecuted, c.onTrade),
		bus.SubscribeFunc(events.GraduationTriggered, c.onGraduation),
		bus.SubscribeFunc(events.CurveCompleted, c.onCompleted),
	)
}

// Close detaches the collector from the bus.
func (c *Collector) Close() {
	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil
}

func (c *Collector) onInitialized(_ context.Context, ev events.Event) error {
	if _, ok := ev.(events.CurveInitializedEvent); ok {
		c.launches.Inc()
	}
	return nil
}

func (c *Collector) onTrade(_ context.Context, ev events.Event) error {
	trade, ok := ev.(events.TradeExecutedEvent)
	if !ok {
		return nil
	}
	side := "sell"
	if trade.IsBuy {
		side = "buy"
	}
	c.trades.WithLabelValues(side).Inc()
	c.volumeSOL.Add(float64(trade.SolAmount) / 1e9)
	c.reserves.WithLabelValues(trade.Mint.String()).Set(float64(trade.Post.RealSolReserves))
	return nil
}

func (c *Collector) onGraduation(_ context.Context, ev events.Event) error {
	if _, ok := ev.(events.GraduationTriggeredEvent); ok {
		c.graduations.Inc()
	}
	return nil
}

func (c *Collector) onCompleted(_ context.Context, ev events.Event) error {
	e, ok := ev.(events.CurveCompletedEvent)
	if !ok {
		return nil
	}
	c.migrations.Inc()
	c.reserves.DeleteLabelValues(e.Mint.String())
	return nil
}
