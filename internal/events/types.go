// internal/events/types.go
package events

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of event.
type EventType string

const (
	// Curve lifecycle events
	CurveInitialized    EventType = "curve.initialized"
	TradeExecuted       EventType = "curve.trade_executed"
	GraduationTriggered EventType = "curve.graduation_triggered"
	CurveCompleted      EventType = "curve.completed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	EventTime time.Time `json:"time"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ReserveSnapshot captures the curve state at one observable point.
type ReserveSnapshot struct {
	VirtualSolReserves   uint64 `json:"virtual_sol_reserves"`
	VirtualTokenReserves uint64 `json:"virtual_token_reserves"`
	RealSolReserves      uint64 `json:"real_sol_reserves"`
	RealTokenReserves    uint64 `json:"real_token_reserves"`
}

// CurveInitializedEvent is emitted when a new asset launches.
type CurveInitializedEvent struct {
	BaseEvent
	Mint    solana.PublicKey `json:"mint"`
	Creator solana.PublicKey `json:"creator"`
	Name    string           `json:"name"`
	Symbol  string           `json:"symbol"`
	URI     string           `json:"uri"`
}

// TradeExecutedEvent is emitted after every committed buy or sell.
type TradeExecutedEvent struct {
	BaseEvent
	Mint        solana.PublicKey `json:"mint"`
	User        solana.PublicKey `json:"user"`
	IsBuy       bool             `json:"is_buy"`
	SolAmount   uint64           `json:"sol_amount"`
	TokenAmount uint64           `json:"token_amount"`
	Price       uint64           `json:"price"`
	MarketCap   uint64           `json:"market_cap_lamports"`
	Pre         ReserveSnapshot  `json:"pre"`
	Post        ReserveSnapshot  `json:"post"`
}

// GraduationTriggeredEvent is the one-shot advisory emitted the first time a
// curve's real SOL reserves cross the graduation threshold.
type GraduationTriggeredEvent struct {
	BaseEvent
	Mint            solana.PublicKey `json:"mint"`
	RealSolReserves uint64           `json:"real_sol_reserves"`
	MarketCap       uint64           `json:"market_cap_lamports"`
}

// CurveCompletedEvent is emitted exactly once, when migration commits.
type CurveCompletedEvent struct {
	BaseEvent
	Mint           solana.PublicKey `json:"mint"`
	Authority      solana.PublicKey `json:"migration_authority"`
	FinalMarketCap uint64           `json:"final_market_cap"`
	TotalSolRaised uint64           `json:"total_sol_raised"`
	CreatorPayout  uint64           `json:"creator_payout"`
}
