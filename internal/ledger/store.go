// internal/ledger/store.go
package ledger

import (
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrCurveNotFound is returned when no curve exists for a mint.
	ErrCurveNotFound = errors.New("bonding curve not found")
	// ErrCurveExists is returned when a curve is created twice for one mint.
	ErrCurveExists = errors.New("bonding curve already exists")
	// ErrProfileExists is returned when a wallet registers twice.
	ErrProfileExists = errors.New("user profile already exists")
	// ErrCodeExists is returned when a referral code is already claimed.
	ErrCodeExists = errors.New("referral code already claimed")
	// ErrInsufficientFunds is returned when a lamport debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient lamport balance")
	// ErrInsufficientTokens is returned when a token debit exceeds the balance.
	ErrInsufficientTokens = errors.New("insufficient token balance")
	// ErrWriteConflict is returned when a transaction loses an optimistic
	// race on a profile it read. Nothing is applied; the caller may retry.
	ErrWriteConflict = errors.New("ledger write conflict")
	// ErrAmountTooLarge guards the staged-delta representation.
	ErrAmountTooLarge = errors.New("transfer amount too large")
)

const maxTransfer = uint64(1) << 62

// TokenKey addresses a token balance by holder and mint.
type TokenKey struct {
	Owner solana.PublicKey
	Mint  solana.PublicKey
}

// Store is the in-memory entity ledger. Curves are serialized by per-curve
// locks taken by the caller for the whole operation; profiles use optimistic
// versioning because a trade may touch profiles shared across curves. All
// mutations flow through a Tx and commit atomically or not at all.
type Store struct {
	mu       sync.RWMutex
	protocol *ProtocolState
	curves   map[solana.PublicKey]*CurveAccount
	profiles map[solana.PublicKey]*UserProfile
	codes    map[string]*ReferralCode
	lamports map[solana.PublicKey]uint64
	tokens   map[TokenKey]uint64

	locksMu sync.Mutex
	locks   map[solana.PublicKey]*sync.Mutex
}

// NewStore returns an empty ledger.
func NewStore() *Store {
	return &Store{
		curves:   make(map[solana.PublicKey]*CurveAccount),
		profiles: make(map[solana.PublicKey]*UserProfile),
		codes:    make(map[string]*ReferralCode),
		lamports: make(map[solana.PublicKey]uint64),
		tokens:   make(map[TokenKey]uint64),
		locks:    make(map[solana.PublicKey]*sync.Mutex),
	}
}

// InitProtocol installs the singleton protocol state.
func (s *Store) InitProtocol(state *ProtocolState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocol = state.clone()
}

// SetPaused flips the emergency pause flag.
func (s *Store) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.protocol != nil {
		s.protocol.Paused = paused
	}
}

// Protocol returns a copy of the protocol state.
func (s *Store) Protocol() ProtocolState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.protocol == nil {
		return ProtocolState{}
	}
	return *s.protocol
}

// LockCurve serializes full operations against one curve. The returned
// function releases the lock. Operations on distinct curves do not contend.
func (s *Store) LockCurve(mint solana.PublicKey) func() {
	s.locksMu.Lock()
	l, ok := s.locks[mint]
	if !ok {
		l = &sync.Mutex{}
		s.locks[mint] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Fund credits lamports to an identity outside any transaction. Used to seed
// external payers (the faucet boundary of the ledger).
func (s *Store) Fund(owner solana.PublicKey, lamports uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lamports[owner] += lamports
}

// Curve returns a copy of the curve for mint.
func (s *Store) Curve(mint solana.PublicKey) (CurveAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.curves[mint]
	if !ok {
		return CurveAccount{}, false
	}
	return *c, true
}

// Profile returns a copy of the profile for wallet.
func (s *Store) Profile(wallet solana.PublicKey) (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[wallet]
	if !ok {
		return UserProfile{}, false
	}
	return *p, true
}

// ReferralCode returns a copy of the code mapping.
func (s *Store) ReferralCode(code string) (ReferralCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rc, ok := s.codes[code]
	if !ok {
		return ReferralCode{}, false
	}
	return *rc, true
}

// Lamports returns the lamport balance of an identity.
func (s *Store) Lamports(owner solana.PublicKey) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lamports[owner]
}

// TokenBalance returns the token balance of (owner, mint).
func (s *Store) TokenBalance(owner, mint solana.PublicKey) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[TokenKey{Owner: owner, Mint: mint}]
}

// Begin opens a transaction. All reads are copy-on-first-use; nothing is
// visible to other readers until Commit succeeds.
func (s *Store) Begin() *Tx {
	return &Tx{
		s:            s,
		curves:       make(map[solana.PublicKey]*CurveAccount),
		newCurves:    make(map[solana.PublicKey]*CurveAccount),
		profiles:     make(map[solana.PublicKey]*stagedProfile),
		newProfiles:  make(map[solana.PublicKey]*UserProfile),
		newCodes:     make(map[string]*ReferralCode),
		lamportDelta: make(map[solana.PublicKey]int64),
		tokenDelta:   make(map[TokenKey]int64),
	}
}

type stagedProfile struct {
	copy        *UserProfile
	baseVersion uint64
}

// Tx stages one atomic unit of work against the store: entity copies,
// balance deltas, and protocol counter increments. Commit applies everything
// under the store lock or nothing at all.
type Tx struct {
	s *Store

	curves      map[solana.PublicKey]*CurveAccount
	newCurves   map[solana.PublicKey]*CurveAccount
	profiles    map[solana.PublicKey]*stagedProfile
	newProfiles map[solana.PublicKey]*UserProfile
	newCodes    map[string]*ReferralCode

	lamportDelta map[solana.PublicKey]int64
	tokenDelta   map[TokenKey]int64

	launchDelta    uint64
	volumeDelta    uint64
	graduatedDelta uint64

	done bool
}

// Curve returns the staged mutable copy of the curve for mint.
func (tx *Tx) Curve(mint solana.PublicKey) (*CurveAccount, error) {
	if c, ok := tx.newCurves[mint]; ok {
		return c, nil
	}
	if c, ok := tx.curves[mint]; ok {
		return c, nil
	}
	tx.s.mu.RLock()
	stored, ok := tx.s.curves[mint]
	tx.s.mu.RUnlock()
	if !ok {
		return nil, ErrCurveNotFound
	}
	c := stored.clone()
	tx.curves[mint] = c
	return c, nil
}

// CreateCurve stages a new curve account.
func (tx *Tx) CreateCurve(c *CurveAccount) error {
	tx.s.mu.RLock()
	_, exists := tx.s.curves[c.Mint]
	tx.s.mu.RUnlock()
	if exists {
		return ErrCurveExists
	}
	if _, staged := tx.newCurves[c.Mint]; staged {
		return ErrCurveExists
	}
	tx.newCurves[c.Mint] = c
	return nil
}

// Profile returns the staged mutable copy of the profile for wallet.
func (tx *Tx) Profile(wallet solana.PublicKey) (*UserProfile, bool) {
	if p, ok := tx.newProfiles[wallet]; ok {
		return p, true
	}
	if sp, ok := tx.profiles[wallet]; ok {
		return sp.copy, true
	}
	tx.s.mu.RLock()
	stored, ok := tx.s.profiles[wallet]
	tx.s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sp := &stagedProfile{copy: stored.clone(), baseVersion: stored.version}
	tx.profiles[wallet] = sp
	return sp.copy, true
}

// CreateProfile stages a new user profile.
func (tx *Tx) CreateProfile(p *UserProfile) error {
	tx.s.mu.RLock()
	_, exists := tx.s.profiles[p.Authority]
	tx.s.mu.RUnlock()
	if exists {
		return ErrProfileExists
	}
	if _, staged := tx.newProfiles[p.Authority]; staged {
		return ErrProfileExists
	}
	tx.newProfiles[p.Authority] = p
	return nil
}

// ReferralCode looks up a code mapping (staged creations included).
func (tx *Tx) ReferralCode(code string) (*ReferralCode, bool) {
	if rc, ok := tx.newCodes[code]; ok {
		return rc, true
	}
	tx.s.mu.RLock()
	stored, ok := tx.s.codes[code]
	tx.s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	cp := *stored
	return &cp, true
}

// CreateReferralCode stages a new code mapping.
func (tx *Tx) CreateReferralCode(rc *ReferralCode) error {
	tx.s.mu.RLock()
	_, exists := tx.s.codes[rc.Code]
	tx.s.mu.RUnlock()
	if exists {
		return ErrCodeExists
	}
	if _, staged := tx.newCodes[rc.Code]; staged {
		return ErrCodeExists
	}
	tx.newCodes[rc.Code] = rc
	return nil
}

// Protocol returns a read-only copy of the protocol state.
func (tx *Tx) Protocol() ProtocolState {
	return tx.s.Protocol()
}

// CountLaunch, CountVolume and CountGraduation stage protocol counter
// increments; they merge additively at commit, so counter updates from
// operations on different curves never conflict.
func (tx *Tx) CountLaunch()         { tx.launchDelta++ }
func (tx *Tx) CountVolume(v uint64) { tx.volumeDelta += v }
func (tx *Tx) CountGraduation()     { tx.graduatedDelta++ }

func (tx *Tx) projectedLamports(owner solana.PublicKey) uint64 {
	tx.s.mu.RLock()
	base := tx.s.lamports[owner]
	tx.s.mu.RUnlock()
	return applyDelta(base, tx.lamportDelta[owner])
}

func (tx *Tx) projectedTokens(key TokenKey) uint64 {
	tx.s.mu.RLock()
	base := tx.s.tokens[key]
	tx.s.mu.RUnlock()
	return applyDelta(base, tx.tokenDelta[key])
}

func applyDelta(base uint64, delta int64) uint64 {
	if delta >= 0 {
		return base + uint64(delta)
	}
	return base - uint64(-delta)
}

// Lamports returns the balance of owner as projected by the staged work.
func (tx *Tx) Lamports(owner solana.PublicKey) uint64 {
	return tx.projectedLamports(owner)
}

// Tokens returns the (owner, mint) balance as projected by the staged work.
func (tx *Tx) Tokens(owner, mint solana.PublicKey) uint64 {
	return tx.projectedTokens(TokenKey{Owner: owner, Mint: mint})
}

// TransferLamports stages a lamport movement, validated against the
// projected balance of the source.
func (tx *Tx) TransferLamports(from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if amount > maxTransfer {
		return ErrAmountTooLarge
	}
	if tx.projectedLamports(from) < amount {
		return ErrInsufficientFunds
	}
	tx.lamportDelta[from] -= int64(amount)
	tx.lamportDelta[to] += int64(amount)
	return nil
}

// TransferTokens stages a token movement between two holders of mint.
func (tx *Tx) TransferTokens(from, to, mint solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if amount > maxTransfer {
		return ErrAmountTooLarge
	}
	src := TokenKey{Owner: from, Mint: mint}
	if tx.projectedTokens(src) < amount {
		return ErrInsufficientTokens
	}
	tx.tokenDelta[src] -= int64(amount)
	tx.tokenDelta[TokenKey{Owner: to, Mint: mint}] += int64(amount)
	return nil
}

// MintTokens stages the creation of supply into a holder's balance.
func (tx *Tx) MintTokens(owner, mint solana.PublicKey, amount uint64) error {
	if amount > maxTransfer {
		return ErrAmountTooLarge
	}
	tx.tokenDelta[TokenKey{Owner: owner, Mint: mint}] += int64(amount)
	return nil
}

// Commit applies the staged work atomically. Curve copies rely on the
// caller holding the per-curve lock; profiles and creations are re-validated
// optimistically and the whole transaction aborts on any conflict, leaving
// the store untouched.
func (tx *Tx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true

	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	for wallet, sp := range tx.profiles {
		stored, ok := tx.s.profiles[wallet]
		if !ok || stored.version != sp.baseVersion {
			return ErrWriteConflict
		}
	}
	for wallet := range tx.newProfiles {
		if _, exists := tx.s.profiles[wallet]; exists {
			return ErrProfileExists
		}
	}
	for code := range tx.newCodes {
		if _, exists := tx.s.codes[code]; exists {
			return ErrCodeExists
		}
	}
	for mint := range tx.newCurves {
		if _, exists := tx.s.curves[mint]; exists {
			return ErrCurveExists
		}
	}
	for owner, delta := range tx.lamportDelta {
		if delta < 0 && tx.s.lamports[owner] < uint64(-delta) {
			return ErrInsufficientFunds
		}
	}
	for key, delta := range tx.tokenDelta {
		if delta < 0 && tx.s.tokens[key] < uint64(-delta) {
			return ErrInsufficientTokens
		}
	}

	for mint, c := range tx.curves {
		tx.s.curves[mint] = c
	}
	for mint, c := range tx.newCurves {
		tx.s.curves[mint] = c
	}
	for wallet, sp := range tx.profiles {
		sp.copy.version = sp.baseVersion + 1
		tx.s.profiles[wallet] = sp.copy
	}
	for wallet, p := range tx.newProfiles {
		p.version = 1
		tx.s.profiles[wallet] = p
	}
	for code, rc := range tx.newCodes {
		tx.s.codes[code] = rc
	}
	for owner, delta := range tx.lamportDelta {
		tx.s.lamports[owner] = applyDelta(tx.s.lamports[owner], delta)
	}
	for key, delta := range tx.tokenDelta {
		tx.s.tokens[key] = applyDelta(tx.s.tokens[key], delta)
	}
	if tx.s.protocol != nil {
		tx.s.protocol.TotalTokensLaunched += tx.launchDelta
		tx.s.protocol.TotalVolumeSol += tx.volumeDelta
		tx.s.protocol.TotalGraduated += tx.graduatedDelta
	}
	return nil
}
