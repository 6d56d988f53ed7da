// Package engine implements the launchpad trade processor: asset creation,
// bonding-curve buys and sells, referral bookkeeping and migration of
// graduated curves to an external liquidity venue. Every operation is
// all-or-nothing against the ledger.
package engine

import (
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/config"
	"github.com/dane-04-code/Fusefun/internal/events"
	"github.com/dane-04-code/Fusefun/internal/ledger"
	"github.com/dane-04-code/Fusefun/internal/venue"
)

// Metadata length caps, enforced at creation time.
const (
	maxNameLen     = 32
	maxSymbolLen   = 10
	maxURILen      = 200
	maxUsernameLen = 20
)

// Options carries everything the engine needs. Store, Bus, Venue and Logger
// are optional; Params, Authority and Treasury are not.
type Options struct {
	Params config.Protocol

	Authority          solana.PublicKey
	Treasury           solana.PublicKey
	MigrationAuthority solana.PublicKey

	Store  *ledger.Store
	Bus    *events.Bus
	Venue  venue.Venue
	Logger *zap.Logger

	// Clock overrides the time source, used by tests to pin the sniper
	// protection window.
	Clock func() time.Time
}

// Engine is the single entry point for all launchpad state transitions.
type Engine struct {
	params config.Protocol

	store *ledger.Store
	bus   *events.Bus
	venue venue.Venue

	logger *zap.Logger
	now    func() time.Time
}

// New validates the options, initializes the protocol account and returns a
// ready engine.
func New(opts Options) (*Engine, error) {
	if err := config.ValidateProtocol(&opts.Params); err != nil {
		return nil, err
	}
	if opts.Treasury.IsZero() {
		return nil, errors.New("treasury key is required")
	}
	if opts.Authority.IsZero() {
		return nil, errors.New("authority key is required")
	}
	if opts.MigrationAuthority.IsZero() {
		opts.MigrationAuthority = opts.Authority
	}
	if opts.Store == nil {
		opts.Store = ledger.NewStore()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	opts.Store.InitProtocol(&ledger.ProtocolState{
		Authority:          opts.Authority,
		Treasury:           opts.Treasury,
		MigrationAuthority: opts.MigrationAuthority,
	})

	return &Engine{
		params: opts.Params,
		store:  opts.Store,
		bus:    opts.Bus,
		venue:  opts.Venue,
		logger: opts.Logger.Named("engine"),
		now:    opts.Clock,
	}, nil
}

// Store exposes the underlying ledger for read-side consumers.
func (e *Engine) Store() *ledger.Store {
	return e.store
}

// Params returns the protocol parameters the engine was built with.
func (e *Engine) Params() config.Protocol {
	return e.params
}

// Pause flips the global pause switch. Only the protocol authority may do so.
func (e *Engine) Pause(authority solana.PublicKey, paused bool) error {
	if authority != e.store.Protocol().Authority {
		return ErrUnauthorized
	}
	e.store.SetPaused(paused)
	e.logger.Info("protocol pause switched", zap.Bool("paused", paused))
	return nil
}

func (e *Engine) publish(ev events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(ev); err != nil {
		e.logger.Warn("event publish failed",
			zap.String("type", string(ev.Type())),
			zap.Error(err))
	}
}

func snapshot(c *ledger.CurveAccount) events.ReserveSnapshot {
	return events.ReserveSnapshot{
		VirtualSolReserves:   c.VirtualSolReserves,
		VirtualTokenReserves: c.VirtualTokenReserves,
		RealSolReserves:      c.RealSolReserves,
		RealTokenReserves:    c.RealTokenReserves,
	}
}
