package engine

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/config"
	"github.com/dane-04-code/Fusefun/internal/ledger"
	"github.com/dane-04-code/Fusefun/internal/venue"
)

const oneSol = 1_000_000_000

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	engine    *Engine
	clock     *testClock
	venue     *venue.AMM
	authority solana.PublicKey
	treasury  solana.PublicKey
	migrator  solana.PublicKey
}

func newFixture(t *testing.T, mutate func(*config.Protocol)) *fixture {
	t.Helper()

	params := config.DefaultProtocol()
	if mutate != nil {
		mutate(&params)
	}
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	amm := venue.NewAMM(zap.NewNop())

	authority := solana.NewWallet().PublicKey()
	treasury := solana.NewWallet().PublicKey()
	migrator := solana.NewWallet().PublicKey()

	eng, err := New(Options{
		Params:             params,
		Authority:          authority,
		Treasury:           treasury,
		MigrationAuthority: migrator,
		Venue:              amm,
		Clock:              clock.Now,
	})
	require.NoError(t, err)

	return &fixture{
		engine:    eng,
		clock:     clock,
		venue:     amm,
		authority: authority,
		treasury:  treasury,
		migrator:  migrator,
	}
}

func (f *fixture) fundedWallet(lamports uint64) solana.PublicKey {
	pk := solana.NewWallet().PublicKey()
	f.engine.Store().Fund(pk, lamports)
	return pk
}

func (f *fixture) launch(t *testing.T, initialBuy uint64) (solana.PublicKey, CreateAssetResult) {
	t.Helper()
	creator := f.fundedWallet(10 * oneSol)
	res, err := f.engine.CreateAsset(context.Background(), CreateAssetParams{
		Creator: creator,
		Name:    "Fuse Test Token",
		Symbol:  "FUSE",
		URI:     "https://example.com/fuse.json",

		InitialBuyLamports: initialBuy,
	})
	require.NoError(t, err)
	return creator, res
}

func TestCreateAsset(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()

	creator, res := f.launch(t, 0)

	c, ok := store.Curve(res.Mint)
	require.True(t, ok)
	assert.Equal(t, creator, c.Creator)
	assert.Equal(t, uint64(config.DefaultVirtualSolReserves), c.VirtualSolReserves)
	assert.Equal(t, uint64(config.DefaultVirtualTokenReserves), c.VirtualTokenReserves)
	assert.Equal(t, uint64(config.DefaultRealTokenReserves), c.RealTokenReserves)
	assert.Zero(t, c.RealSolReserves)
	assert.False(t, c.Complete)

	// The full supply sits in the vault, the creation fee in the treasury.
	assert.Equal(t, f.engine.Params().TotalSupply, store.TokenBalance(ledger.VaultAddress(res.Mint), res.Mint))
	assert.Equal(t, f.engine.Params().CreationFeeLamports, store.Lamports(f.treasury))
	assert.Equal(t, uint64(1), store.Protocol().TotalTokensLaunched)
}

func TestCreateAssetValidation(t *testing.T) {
	f := newFixture(t, nil)
	creator := f.fundedWallet(oneSol)
	ctx := context.Background()

	_, err := f.engine.CreateAsset(ctx, CreateAssetParams{
		Creator: creator,
		Name:    "this token name is far too long to be accepted",
		Symbol:  "FUSE",
	})
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = f.engine.CreateAsset(ctx, CreateAssetParams{
		Creator: creator,
		Name:    "ok",
		Symbol:  "WAYTOOLONGSYM",
	})
	assert.ErrorIs(t, err, ErrSymbolTooLong)

	broke := solana.NewWallet().PublicKey()
	_, err = f.engine.CreateAsset(ctx, CreateAssetParams{
		Creator: broke,
		Name:    "ok",
		Symbol:  "OK",
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
}

func TestCreateAssetInitialBuyIsFeeFree(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()

	// 2 SOL exceeds the sniper cap, which does not apply to the creator's
	// launch buy, and no trading fee is taken from it.
	creator, res := f.launch(t, 2*oneSol)

	assert.NotZero(t, res.InitialTokens)
	assert.Equal(t, res.InitialTokens, store.TokenBalance(creator, res.Mint))
	assert.Equal(t, uint64(2*oneSol), store.Lamports(ledger.CurveAddress(res.Mint)))

	c, ok := store.Curve(res.Mint)
	require.True(t, ok)
	assert.Equal(t, uint64(2*oneSol), c.RealSolReserves)
	assert.Zero(t, c.CreatorFeeAccrued)
}

func TestBuyExactAccounting(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()
	_, res := f.launch(t, 0)

	buyer := f.fundedWallet(2 * oneSol)
	treasuryBefore := store.Lamports(f.treasury)

	got, err := f.engine.Buy(context.Background(), BuyParams{
		Mint:     res.Mint,
		Buyer:    buyer,
		AmountIn: oneSol,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(10_000_000), got.TotalFee)
	assert.Equal(t, uint64(8_000_000), got.ProtocolFee)
	assert.Equal(t, uint64(2_000_000), got.CreatorFee)
	assert.Zero(t, got.ReferralFee)
	assert.Equal(t, uint64(990_000_000), got.SolAmount)
	assert.Equal(t, uint64(34_277_831_558_567), got.TokenAmount)

	assert.Equal(t, uint64(30_990_000_000), got.Post.VirtualSolReserves)
	assert.Equal(t, uint64(1_038_722_168_441_433), got.Post.VirtualTokenReserves)
	assert.Equal(t, uint64(990_000_000), got.Post.RealSolReserves)
	assert.Equal(t, uint64(758_822_168_441_433), got.Post.RealTokenReserves)

	// Buyer paid the gross amount; the curve holds net plus the creator
	// cut, the treasury the protocol cut.
	assert.Equal(t, uint64(oneSol), store.Lamports(buyer))
	assert.Equal(t, uint64(992_000_000), store.Lamports(ledger.CurveAddress(res.Mint)))
	assert.Equal(t, uint64(8_000_000), store.Lamports(f.treasury)-treasuryBefore)
	assert.Equal(t, got.TokenAmount, store.TokenBalance(buyer, res.Mint))

	c, ok := store.Curve(res.Mint)
	require.True(t, ok)
	assert.Equal(t, uint64(2_000_000), c.CreatorFeeAccrued)
	assert.Equal(t, uint64(990_000_000), store.Protocol().TotalVolumeSol)
}

func TestBuyGuards(t *testing.T) {
	f := newFixture(t, nil)
	_, res := f.launch(t, 0)
	buyer := f.fundedWallet(100 * oneSol)
	ctx := context.Background()

	_, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.engine.Buy(ctx, BuyParams{Mint: solana.NewWallet().PublicKey(), Buyer: buyer, AmountIn: oneSol})
	assert.ErrorIs(t, err, ledger.ErrCurveNotFound)

	_, err = f.engine.Buy(ctx, BuyParams{
		Mint:         res.Mint,
		Buyer:        buyer,
		AmountIn:     oneSol,
		MinTokensOut: 34_277_831_558_568,
	})
	assert.ErrorIs(t, err, ErrMinTokensNotMet)

	// A failed buy leaves no trace.
	assert.Equal(t, uint64(100*oneSol), f.engine.Store().Lamports(buyer))
	assert.Zero(t, f.engine.Store().TokenBalance(buyer, res.Mint))
}

func TestSniperProtectionWindow(t *testing.T) {
	f := newFixture(t, nil)
	_, res := f.launch(t, 0)
	buyer := f.fundedWallet(100 * oneSol)
	ctx := context.Background()

	// Inside the window buys above the cap are rejected, buys at the cap
	// pass.
	_, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: oneSol + 1})
	assert.ErrorIs(t, err, ErrSniperLimitExceeded)

	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: oneSol})
	assert.NoError(t, err)

	f.clock.Advance(299 * time.Second)
	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 5 * oneSol})
	assert.ErrorIs(t, err, ErrSniperLimitExceeded)

	f.clock.Advance(2 * time.Second)
	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 5 * oneSol})
	assert.NoError(t, err)
}

func TestSellRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()
	_, res := f.launch(t, 0)

	trader := f.fundedWallet(2 * oneSol)
	ctx := context.Background()

	buy, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: trader, AmountIn: oneSol})
	require.NoError(t, err)

	sell, err := f.engine.Sell(ctx, SellParams{
		Mint:     res.Mint,
		Seller:   trader,
		AmountIn: buy.TokenAmount,
	})
	require.NoError(t, err)

	// Rounding favors the curve: the payout never exceeds the net buy-in.
	assert.Equal(t, uint64(989_999_999), sell.SolAmount)
	assert.Equal(t, uint64(9_899_999), sell.TotalFee)
	assert.Equal(t, uint64(7_919_999), sell.ProtocolFee)
	assert.Equal(t, uint64(1_980_000), sell.CreatorFee)

	assert.Zero(t, store.TokenBalance(trader, res.Mint))
	assert.Equal(t, uint64(oneSol+980_100_000), store.Lamports(trader))

	c, ok := store.Curve(res.Mint)
	require.True(t, ok)
	assert.Equal(t, uint64(1), c.RealSolReserves)
	assert.Equal(t, f.engine.Params().RealTokenReserves, c.RealTokenReserves)
	assert.Equal(t, uint64(2_000_000+1_980_000), c.CreatorFeeAccrued)
}

func TestSellGuards(t *testing.T) {
	f := newFixture(t, nil)
	_, res := f.launch(t, 0)
	trader := f.fundedWallet(2 * oneSol)
	ctx := context.Background()

	buy, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: trader, AmountIn: oneSol})
	require.NoError(t, err)

	_, err = f.engine.Sell(ctx, SellParams{Mint: res.Mint, Seller: trader, AmountIn: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.engine.Sell(ctx, SellParams{
		Mint:      res.Mint,
		Seller:    trader,
		AmountIn:  buy.TokenAmount,
		MinSolOut: 980_100_001,
	})
	assert.ErrorIs(t, err, ErrSlippageExceeded)

	stranger := solana.NewWallet().PublicKey()
	_, err = f.engine.Sell(ctx, SellParams{Mint: res.Mint, Seller: stranger, AmountIn: 1_000_000})
	assert.ErrorIs(t, err, ledger.ErrInsufficientTokens)
}

func TestReferralFeeRouting(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()
	_, res := f.launch(t, 0)
	ctx := context.Background()

	referrer := f.fundedWallet(0)
	trader := f.fundedWallet(10 * oneSol)

	_, err := f.engine.RegisterUser(ctx, referrer, "alice")
	require.NoError(t, err)
	_, err = f.engine.RegisterUser(ctx, trader, "bob")
	require.NoError(t, err)
	require.NoError(t, f.engine.SetReferrer(ctx, trader, "alice"))

	treasuryBefore := store.Lamports(f.treasury)
	got, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: trader, AmountIn: oneSol})
	require.NoError(t, err)

	// One tenth of the protocol fee goes to the referrer.
	assert.Equal(t, uint64(800_000), got.ReferralFee)
	require.NotNil(t, got.Referrer)
	assert.Equal(t, referrer, *got.Referrer)
	assert.Equal(t, uint64(800_000), store.Lamports(referrer))
	assert.Equal(t, uint64(7_200_000), store.Lamports(f.treasury)-treasuryBefore)

	p, ok := store.Profile(referrer)
	require.True(t, ok)
	assert.Equal(t, uint64(800_000), p.TotalReferralFees)
	assert.Equal(t, uint64(1), p.ReferralCount)
}

func TestReferralAutoBindOnTrade(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()
	_, res := f.launch(t, 0)
	ctx := context.Background()

	referrer := f.fundedWallet(0)
	other := f.fundedWallet(0)
	trader := f.fundedWallet(10 * oneSol)

	_, err := f.engine.RegisterUser(ctx, referrer, "alice")
	require.NoError(t, err)
	_, err = f.engine.RegisterUser(ctx, other, "carol")
	require.NoError(t, err)
	_, err = f.engine.RegisterUser(ctx, trader, "bob")
	require.NoError(t, err)

	got, err := f.engine.Buy(ctx, BuyParams{
		Mint:     res.Mint,
		Buyer:    trader,
		AmountIn: oneSol,
		Referrer: &referrer,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Referrer)
	assert.Equal(t, referrer, *got.Referrer)

	// The first binding sticks; a different referrer on a later trade is
	// ignored.
	got, err = f.engine.Buy(ctx, BuyParams{
		Mint:     res.Mint,
		Buyer:    trader,
		AmountIn: oneSol,
		Referrer: &other,
	})
	require.NoError(t, err)
	require.NotNil(t, got.Referrer)
	assert.Equal(t, referrer, *got.Referrer)
	assert.Zero(t, store.Lamports(other))

	p, ok := store.Profile(trader)
	require.True(t, ok)
	bound, has := p.Referrer()
	require.True(t, has)
	assert.Equal(t, referrer, bound)
}

func TestReferralPaidWithoutTraderProfile(t *testing.T) {
	f := newFixture(t, nil)
	store := f.engine.Store()
	_, res := f.launch(t, 0)
	ctx := context.Background()

	referrer := f.fundedWallet(0)
	_, err := f.engine.RegisterUser(ctx, referrer, "alice")
	require.NoError(t, err)

	// The trader never registered. The referrer still earns the cut, but
	// no binding happens.
	trader := f.fundedWallet(10 * oneSol)
	treasuryBefore := store.Lamports(f.treasury)

	got, err := f.engine.Buy(ctx, BuyParams{
		Mint:     res.Mint,
		Buyer:    trader,
		AmountIn: oneSol,
		Referrer: &referrer,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(800_000), got.ReferralFee)
	require.NotNil(t, got.Referrer)
	assert.Equal(t, referrer, *got.Referrer)
	assert.Equal(t, uint64(800_000), store.Lamports(referrer))
	assert.Equal(t, uint64(7_200_000), store.Lamports(f.treasury)-treasuryBefore)

	_, registered := store.Profile(trader)
	assert.False(t, registered)

	p, ok := store.Profile(referrer)
	require.True(t, ok)
	assert.Zero(t, p.ReferralCount)
	assert.Equal(t, uint64(800_000), p.TotalReferralFees)
}

func TestReferralEdgeCases(t *testing.T) {
	f := newFixture(t, nil)
	_, res := f.launch(t, 0)
	ctx := context.Background()

	trader := f.fundedWallet(10 * oneSol)
	_, err := f.engine.RegisterUser(ctx, trader, "bob")
	require.NoError(t, err)

	// Self-referral is silently dropped.
	got, err := f.engine.Buy(ctx, BuyParams{
		Mint:     res.Mint,
		Buyer:    trader,
		AmountIn: oneSol,
		Referrer: &trader,
	})
	require.NoError(t, err)
	assert.Nil(t, got.Referrer)

	// A supplied referrer without a profile is ignored.
	ghost := solana.NewWallet().PublicKey()
	got, err = f.engine.Buy(ctx, BuyParams{
		Mint:     res.Mint,
		Buyer:    trader,
		AmountIn: oneSol,
		Referrer: &ghost,
	})
	require.NoError(t, err)
	assert.Nil(t, got.Referrer)

	// SetReferrer is write-once.
	referrer := f.fundedWallet(0)
	_, err = f.engine.RegisterUser(ctx, referrer, "alice")
	require.NoError(t, err)
	require.NoError(t, f.engine.SetReferrer(ctx, trader, "alice"))
	assert.ErrorIs(t, f.engine.SetReferrer(ctx, trader, "alice"), ledger.ErrReferralAlreadyExists)

	assert.ErrorIs(t, f.engine.SetReferrer(ctx, referrer, "alice"), ledger.ErrCannotReferSelf)
	assert.ErrorIs(t, f.engine.SetReferrer(ctx, ghost, "alice"), ErrUserNotRegistered)
	assert.ErrorIs(t, f.engine.SetReferrer(ctx, referrer, "nope"), ErrReferralCodeNotFound)
}

func TestRegisterUserValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	w1 := solana.NewWallet().PublicKey()
	w2 := solana.NewWallet().PublicKey()

	_, err := f.engine.RegisterUser(ctx, w1, "")
	assert.ErrorIs(t, err, ErrEmptyUsername)
	_, err = f.engine.RegisterUser(ctx, w1, "thisusernameiswaytoolong")
	assert.ErrorIs(t, err, ErrUsernameTooLong)

	_, err = f.engine.RegisterUser(ctx, w1, "alice")
	require.NoError(t, err)
	_, err = f.engine.RegisterUser(ctx, w1, "alice2")
	assert.ErrorIs(t, err, ledger.ErrProfileExists)
	_, err = f.engine.RegisterUser(ctx, w2, "alice")
	assert.ErrorIs(t, err, ledger.ErrCodeExists)
}

func TestGraduationSignalsOnce(t *testing.T) {
	f := newFixture(t, func(p *config.Protocol) {
		p.GraduationSolThreshold = oneSol
		p.SniperWindowSeconds = 0
	})
	_, res := f.launch(t, 0)
	buyer := f.fundedWallet(100 * oneSol)
	ctx := context.Background()

	got, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 2 * oneSol})
	require.NoError(t, err)
	assert.True(t, got.GraduationReady)

	// Further buys above the threshold do not re-signal.
	got, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 2 * oneSol})
	require.NoError(t, err)
	assert.False(t, got.GraduationReady)

	c, ok := f.engine.Store().Curve(res.Mint)
	require.True(t, ok)
	assert.True(t, c.GraduationSignaled)
	assert.False(t, c.Complete)
}

func TestGraduationOnInitialBuy(t *testing.T) {
	f := newFixture(t, func(p *config.Protocol) {
		p.GraduationSolThreshold = oneSol
		p.SniperWindowSeconds = 0
	})
	_, res := f.launch(t, 2*oneSol)

	assert.True(t, res.GraduationReady)
	c, ok := f.engine.Store().Curve(res.Mint)
	require.True(t, ok)
	assert.True(t, c.GraduationSignaled)
	assert.False(t, c.Complete)

	// The latch fired at launch, so later buys do not re-signal.
	buyer := f.fundedWallet(100 * oneSol)
	got, err := f.engine.Buy(context.Background(), BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 2 * oneSol})
	require.NoError(t, err)
	assert.False(t, got.GraduationReady)
}

func TestMigrate(t *testing.T) {
	f := newFixture(t, func(p *config.Protocol) {
		p.GraduationSolThreshold = oneSol
		p.SniperWindowSeconds = 0
	})
	store := f.engine.Store()
	creator, res := f.launch(t, 0)
	buyer := f.fundedWallet(100 * oneSol)
	ctx := context.Background()

	_, err := f.engine.Migrate(ctx, MigrateParams{Mint: res.Mint, Authority: f.migrator})
	assert.ErrorIs(t, err, ErrGraduationNotReached)

	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: 2 * oneSol})
	require.NoError(t, err)

	_, err = f.engine.Migrate(ctx, MigrateParams{Mint: res.Mint, Authority: buyer})
	assert.ErrorIs(t, err, ErrUnauthorized)

	curveAddr := ledger.CurveAddress(res.Mint)
	vault := ledger.VaultAddress(res.Mint)
	c, _ := store.Curve(res.Mint)
	accrued := c.CreatorFeeAccrued
	curveBalance := store.Lamports(curveAddr)
	vaultTokens := store.TokenBalance(vault, res.Mint)
	creatorBefore := store.Lamports(creator)

	mig, err := f.engine.Migrate(ctx, MigrateParams{Mint: res.Mint, Authority: f.migrator})
	require.NoError(t, err)

	assert.Equal(t, accrued, mig.CreatorPayout)
	assert.Equal(t, curveBalance-accrued-f.engine.Params().RentReserveLamports, mig.SolToVenue)
	assert.Equal(t, vaultTokens, mig.TokensToVenue)
	assert.Equal(t, accrued, store.Lamports(creator)-creatorBefore)

	// The curve keeps only the rent reserve, the vault is emptied into the
	// pool.
	assert.Equal(t, f.engine.Params().RentReserveLamports, store.Lamports(curveAddr))
	assert.Zero(t, store.TokenBalance(vault, res.Mint))
	assert.Equal(t, mig.SolToVenue, store.Lamports(mig.Pool.Address))
	assert.Equal(t, mig.TokensToVenue, store.TokenBalance(mig.Pool.Address, res.Mint))

	pool, ok := f.venue.Pool(res.Mint)
	require.True(t, ok)
	assert.Equal(t, mig.Pool.Address, pool.Address)

	c, _ = store.Curve(res.Mint)
	assert.True(t, c.Complete)
	assert.Zero(t, c.RealSolReserves)
	assert.Zero(t, c.RealTokenReserves)
	assert.Zero(t, c.CreatorFeeAccrued)
	assert.Equal(t, uint64(1), store.Protocol().TotalGraduated)

	_, err = f.engine.Migrate(ctx, MigrateParams{Mint: res.Mint, Authority: f.migrator})
	assert.ErrorIs(t, err, ErrCurveAlreadyMigrated)

	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: oneSol})
	assert.ErrorIs(t, err, ErrTradingDisabled)
	_, err = f.engine.Sell(ctx, SellParams{Mint: res.Mint, Seller: buyer, AmountIn: 1})
	assert.ErrorIs(t, err, ErrTradingDisabled)
}

func TestPause(t *testing.T) {
	f := newFixture(t, nil)
	_, res := f.launch(t, 0)
	buyer := f.fundedWallet(10 * oneSol)
	ctx := context.Background()

	assert.ErrorIs(t, f.engine.Pause(buyer, true), ErrUnauthorized)
	require.NoError(t, f.engine.Pause(f.authority, true))

	_, err := f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: oneSol})
	assert.ErrorIs(t, err, ErrProtocolPaused)
	_, err = f.engine.Sell(ctx, SellParams{Mint: res.Mint, Seller: buyer, AmountIn: 1})
	assert.ErrorIs(t, err, ErrProtocolPaused)
	_, err = f.engine.CreateAsset(ctx, CreateAssetParams{Creator: buyer, Name: "x", Symbol: "X"})
	assert.ErrorIs(t, err, ErrProtocolPaused)

	require.NoError(t, f.engine.Pause(f.authority, false))
	_, err = f.engine.Buy(ctx, BuyParams{Mint: res.Mint, Buyer: buyer, AmountIn: oneSol})
	assert.NoError(t, err)
}
