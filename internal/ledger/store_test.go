package ledger

import (
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	s.InitProtocol(&ProtocolState{
		Authority: solana.NewWallet().PublicKey(),
		Treasury:  solana.NewWallet().PublicKey(),
	})
	return s
}

func TestTransferLamportsInsufficient(t *testing.T) {
	s := newTestStore()
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	s.Fund(from, 100)

	tx := s.Begin()
	err := tx.TransferLamports(from, to, 150)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestCommitAppliesEverythingOrNothing(t *testing.T) {
	s := newTestStore()
	payer := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	s.Fund(payer, 1_000)

	tx := s.Begin()
	require.NoError(t, tx.TransferLamports(payer, dest, 400))
	require.NoError(t, tx.TransferLamports(payer, dest, 300))

	// Abandoning the transaction leaves the store untouched.
	assert.Equal(t, uint64(1_000), s.Lamports(payer))
	assert.Equal(t, uint64(0), s.Lamports(dest))

	require.NoError(t, tx.Commit())
	assert.Equal(t, uint64(300), s.Lamports(payer))
	assert.Equal(t, uint64(700), s.Lamports(dest))
}

func TestCommitRevalidatesBalances(t *testing.T) {
	s := newTestStore()
	payer := solana.NewWallet().PublicKey()
	dest := solana.NewWallet().PublicKey()
	s.Fund(payer, 500)

	tx := s.Begin()
	require.NoError(t, tx.TransferLamports(payer, dest, 500))

	// A racing commit drains the payer before tx commits.
	other := s.Begin()
	require.NoError(t, other.TransferLamports(payer, dest, 500))
	require.NoError(t, other.Commit())

	assert.ErrorIs(t, tx.Commit(), ErrInsufficientFunds)
	assert.Equal(t, uint64(500), s.Lamports(dest))
}

func TestProfileWriteConflict(t *testing.T) {
	s := newTestStore()
	wallet := solana.NewWallet().PublicKey()
	ref := solana.NewWallet().PublicKey()

	seed := s.Begin()
	require.NoError(t, seed.CreateProfile(NewUserProfile(wallet, "alice")))
	require.NoError(t, seed.Commit())

	txA := s.Begin()
	pA, ok := txA.Profile(wallet)
	require.True(t, ok)
	require.NoError(t, pA.BindReferrer(ref))

	txB := s.Begin()
	pB, ok := txB.Profile(wallet)
	require.True(t, ok)
	pB.ReferralCount++
	require.NoError(t, txB.Commit())

	// txA read the profile before txB committed; it must lose cleanly.
	assert.ErrorIs(t, txA.Commit(), ErrWriteConflict)

	stored, ok := s.Profile(wallet)
	require.True(t, ok)
	_, bound := stored.Referrer()
	assert.False(t, bound, "losing transaction must not leak its binding")
	assert.Equal(t, uint64(1), stored.ReferralCount)
}

func TestCreateProfileDuplicate(t *testing.T) {
	s := newTestStore()
	wallet := solana.NewWallet().PublicKey()

	tx := s.Begin()
	require.NoError(t, tx.CreateProfile(NewUserProfile(wallet, "bob")))
	require.NoError(t, tx.Commit())

	tx = s.Begin()
	assert.ErrorIs(t, tx.CreateProfile(NewUserProfile(wallet, "bob2")), ErrProfileExists)
}

func TestCurveStagingIsIsolated(t *testing.T) {
	s := newTestStore()
	mint := solana.NewWallet().PublicKey()

	tx := s.Begin()
	require.NoError(t, tx.CreateCurve(&CurveAccount{
		Mint:                 mint,
		VirtualSolReserves:   30_000_000_000,
		VirtualTokenReserves: 1_073_000_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
	}))
	require.NoError(t, tx.Commit())

	tx = s.Begin()
	c, err := tx.Curve(mint)
	require.NoError(t, err)
	require.NoError(t, c.ApplyBuy(990_000_000, 34_277_831_558_567, 2_000_000))

	// Mutation stays invisible until commit.
	stored, ok := s.Curve(mint)
	require.True(t, ok)
	assert.Equal(t, uint64(30_000_000_000), stored.VirtualSolReserves)

	require.NoError(t, tx.Commit())
	stored, _ = s.Curve(mint)
	assert.Equal(t, uint64(30_990_000_000), stored.VirtualSolReserves)
	assert.Equal(t, uint64(2_000_000), stored.CreatorFeeAccrued)
}

func TestConcurrentCurveOperationsSerialize(t *testing.T) {
	s := newTestStore()
	mint := solana.NewWallet().PublicKey()
	vault := VaultAddress(mint)
	buyer := solana.NewWallet().PublicKey()

	tx := s.Begin()
	require.NoError(t, tx.CreateCurve(&CurveAccount{
		Mint:                 mint,
		VirtualSolReserves:   30_000_000_000,
		VirtualTokenReserves: 1_073_000_000_000_000,
		RealTokenReserves:    793_100_000_000_000,
	}))
	require.NoError(t, tx.MintTokens(vault, mint, 1_000_000_000_000_000))
	require.NoError(t, tx.Commit())

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				unlock := s.LockCurve(mint)
				tx := s.Begin()
				c, err := tx.Curve(mint)
				if err != nil {
					unlock()
					t.Error(err)
					return
				}
				if err := c.ApplyBuy(1_000, 10, 0); err != nil {
					unlock()
					t.Error(err)
					return
				}
				if err := tx.TransferTokens(vault, buyer, mint, 10); err != nil {
					unlock()
					t.Error(err)
					return
				}
				if err := tx.Commit(); err != nil {
					unlock()
					t.Error(err)
					return
				}
				unlock()
			}
		}()
	}
	wg.Wait()

	stored, ok := s.Curve(mint)
	require.True(t, ok)
	assert.Equal(t, uint64(30_000_000_000+workers*perWorker*1_000), stored.VirtualSolReserves)
	assert.Equal(t, uint64(workers*perWorker*10), s.TokenBalance(buyer, mint))
}

func TestProtocolCountersMergeAdditively(t *testing.T) {
	s := newTestStore()

	txA := s.Begin()
	txA.CountVolume(100)
	txB := s.Begin()
	txB.CountVolume(250)
	txB.CountLaunch()

	require.NoError(t, txA.Commit())
	require.NoError(t, txB.Commit())

	p := s.Protocol()
	assert.Equal(t, uint64(350), p.TotalVolumeSol)
	assert.Equal(t, uint64(1), p.TotalTokensLaunched)
}
