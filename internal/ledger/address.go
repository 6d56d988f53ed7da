// internal/ledger/address.go
package ledger

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Seed prefixes for program-derived entity addresses. They match the
// namespaces the on-chain accounts live under: one curve and one vault per
// mint, one profile per wallet, one referral mapping per code.
var (
	curveSeed    = []byte("curve")
	vaultSeed    = []byte("vault")
	userSeed     = []byte("user")
	referralSeed = []byte("referral")
	mintSeed     = []byte("mint")
)

// ProgramID anchors all derived addresses. It is a fixed, non-signing
// namespace key rather than a deployed program.
var ProgramID = solana.PublicKeyFromBytes(func() []byte {
	h := sha256.Sum256([]byte("fusefun/launchpad/v1"))
	return h[:]
}())

func deriveAddress(seeds ...[]byte) solana.PublicKey {
	addr, _, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		// FindProgramAddress only fails when every bump is on the ed25519
		// curve, which cannot happen for 255 consecutive candidates.
		panic(err)
	}
	return addr
}

// CurveAddress returns the ledger identity holding a curve's SOL backing.
func CurveAddress(mint solana.PublicKey) solana.PublicKey {
	return deriveAddress(curveSeed, mint.Bytes())
}

// VaultAddress returns the token-vault identity for a mint.
func VaultAddress(mint solana.PublicKey) solana.PublicKey {
	return deriveAddress(vaultSeed, mint.Bytes())
}

// ProfileAddress returns the profile identity for a wallet.
func ProfileAddress(wallet solana.PublicKey) solana.PublicKey {
	return deriveAddress(userSeed, wallet.Bytes())
}

// ReferralCodeAddress returns the identity of a referral-code mapping.
func ReferralCodeAddress(code string) solana.PublicKey {
	return deriveAddress(referralSeed, []byte(code))
}

// DeriveMint deterministically derives a new mint identity from the creator
// and the protocol launch counter at creation time.
func DeriveMint(creator solana.PublicKey, launchIndex uint64, symbol string) solana.PublicKey {
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], launchIndex)

	h := sha256.New()
	h.Write(mintSeed)
	h.Write(creator.Bytes())
	h.Write(idx[:])
	h.Write([]byte(symbol))
	return solana.PublicKeyFromBytes(h.Sum(nil))
}
