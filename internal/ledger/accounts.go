// internal/ledger/accounts.go
package ledger

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/dane-04-code/Fusefun/internal/curve"
)

var (
	// ErrReferralAlreadyExists is returned when a profile is already bound to a referrer.
	ErrReferralAlreadyExists = errors.New("user is already linked to a referrer")
	// ErrCannotReferSelf is returned when a profile tries to bind itself as referrer.
	ErrCannotReferSelf = errors.New("cannot refer yourself")
)

// CurveAccount is the per-asset mutable state of one bonding curve.
// All lamport and token amounts are raw base units.
type CurveAccount struct {
	Creator solana.PublicKey
	Mint    solana.PublicKey

	Name   string
	Symbol string
	URI    string

	TotalSupply uint64

	// Virtual reserves drive pricing and may exceed the value actually held.
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64

	// Real reserves track the value backing the curve.
	RealSolReserves   uint64
	RealTokenReserves uint64

	Complete           bool
	GraduationSignaled bool

	CreatorFeeAccrued uint64
	LaunchTime        int64
}

// ApplyBuy commits a buy's reserve movement: netSol joins both the virtual
// and real SOL side, tokensOut leaves both token sides, and the creator cut
// accrues. All arithmetic is checked; on error the account is unmodified.
func (c *CurveAccount) ApplyBuy(netSol, tokensOut, creatorFee uint64) error {
	vs, err := curve.CheckedAdd(c.VirtualSolReserves, netSol)
	if err != nil {
		return err
	}
	vt, err := curve.CheckedSub(c.VirtualTokenReserves, tokensOut)
	if err != nil {
		return err
	}
	rs, err := curve.CheckedAdd(c.RealSolReserves, netSol)
	if err != nil {
		return err
	}
	rt, err := curve.CheckedSub(c.RealTokenReserves, tokensOut)
	if err != nil {
		return err
	}
	fee, err := curve.CheckedAdd(c.CreatorFeeAccrued, creatorFee)
	if err != nil {
		return err
	}
	c.VirtualSolReserves = vs
	c.VirtualTokenReserves = vt
	c.RealSolReserves = rs
	c.RealTokenReserves = rt
	c.CreatorFeeAccrued = fee
	return nil
}

// ApplySell is the mirror of ApplyBuy: solOut leaves the SOL sides and
// tokenIn rejoins the token sides.
func (c *CurveAccount) ApplySell(solOut, tokenIn, creatorFee uint64) error {
	vs, err := curve.CheckedSub(c.VirtualSolReserves, solOut)
	if err != nil {
		return err
	}
	vt, err := curve.CheckedAdd(c.VirtualTokenReserves, tokenIn)
	if err != nil {
		return err
	}
	rs, err := curve.CheckedSub(c.RealSolReserves, solOut)
	if err != nil {
		return err
	}
	rt, err := curve.CheckedAdd(c.RealTokenReserves, tokenIn)
	if err != nil {
		return err
	}
	fee, err := curve.CheckedAdd(c.CreatorFeeAccrued, creatorFee)
	if err != nil {
		return err
	}
	c.VirtualSolReserves = vs
	c.VirtualTokenReserves = vt
	c.RealSolReserves = rs
	c.RealTokenReserves = rt
	c.CreatorFeeAccrued = fee
	return nil
}

func (c *CurveAccount) clone() *CurveAccount {
	cp := *c
	return &cp
}

// UserProfile holds per-identity referral state. The referrer binding is a
// write-once transition enforced by BindReferrer; there is no way to rebind.
type UserProfile struct {
	Authority solana.PublicKey
	Username  string

	ReferralCount     uint64
	TotalReferralFees uint64

	referrer      solana.PublicKey
	referrerBound bool

	version uint64
}

// NewUserProfile returns an unbound profile for wallet.
func NewUserProfile(wallet solana.PublicKey, username string) *UserProfile {
	return &UserProfile{Authority: wallet, Username: username}
}

// Referrer reports the bound referrer, if any.
func (p *UserProfile) Referrer() (solana.PublicKey, bool) {
	return p.referrer, p.referrerBound
}

// BindReferrer performs the single allowed Unbound -> BoundTo transition.
func (p *UserProfile) BindReferrer(referrer solana.PublicKey) error {
	if p.referrerBound {
		return ErrReferralAlreadyExists
	}
	if referrer.Equals(p.Authority) {
		return ErrCannotReferSelf
	}
	p.referrer = referrer
	p.referrerBound = true
	return nil
}

func (p *UserProfile) clone() *UserProfile {
	cp := *p
	return &cp
}

// ReferralCode maps a human-readable code to its owning identity.
// Created together with a UserProfile and immutable afterwards.
type ReferralCode struct {
	Owner solana.PublicKey
	Code  string
}

// ProtocolState is the singleton protocol account: authorities, lifetime
// counters, and the emergency pause flag.
type ProtocolState struct {
	Authority          solana.PublicKey
	Treasury           solana.PublicKey
	MigrationAuthority solana.PublicKey

	TotalTokensLaunched uint64
	TotalVolumeSol      uint64
	TotalGraduated      uint64

	Paused bool
}

func (s *ProtocolState) clone() *ProtocolState {
	cp := *s
	return &cp
}
