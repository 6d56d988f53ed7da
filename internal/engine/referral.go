package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/dane-04-code/Fusefun/internal/curve"
	"github.com/dane-04-code/Fusefun/internal/ledger"
)

// RegisterUser creates a profile for wallet and claims username as its
// referral code. Usernames double as referral codes, so they are unique.
func (e *Engine) RegisterUser(ctx context.Context, wallet solana.PublicKey, username string) (ledger.UserProfile, error) {
	_ = ctx
	if username == "" {
		return ledger.UserProfile{}, ErrEmptyUsername
	}
	if len(username) > maxUsernameLen {
		return ledger.UserProfile{}, ErrUsernameTooLong
	}

	tx := e.store.Begin()
	profile := ledger.NewUserProfile(wallet, username)
	if err := tx.CreateProfile(profile); err != nil {
		return ledger.UserProfile{}, err
	}
	if err := tx.CreateReferralCode(&ledger.ReferralCode{Owner: wallet, Code: username}); err != nil {
		return ledger.UserProfile{}, err
	}
	if err := tx.Commit(); err != nil {
		return ledger.UserProfile{}, err
	}

	e.logger.Info("user registered",
		zap.Stringer("wallet", wallet),
		zap.String("username", username))
	return *profile, nil
}

// SetReferrer binds the owner of code as wallet's referrer. The binding is
// write-once: a second call fails regardless of the code supplied.
func (e *Engine) SetReferrer(ctx context.Context, wallet solana.PublicKey, code string) error {
	_ = ctx

	tx := e.store.Begin()
	profile, ok := tx.Profile(wallet)
	if !ok {
		return ErrUserNotRegistered
	}
	rc, ok := tx.ReferralCode(code)
	if !ok {
		return ErrReferralCodeNotFound
	}
	if err := profile.BindReferrer(rc.Owner); err != nil {
		return err
	}
	if referrer, ok := tx.Profile(rc.Owner); ok {
		referrer.ReferralCount++
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	e.logger.Info("referrer bound",
		zap.Stringer("wallet", wallet),
		zap.Stringer("referrer", rc.Owner))
	return nil
}

type referralSplit struct {
	referrer    solana.PublicKey
	hasReferrer bool
	referralFee uint64
	treasuryFee uint64
}

// resolveReferral decides who receives the referral cut of protocolFee for a
// trade by trader. The referrer already stored on the trader's profile always
// wins. A referrer supplied with the trade earns the cut whenever their own
// profile exists; the write-once binding additionally requires the trader to
// have a profile, so a profileless trader pays the referrer without binding.
func (e *Engine) resolveReferral(tx *ledger.Tx, trader solana.PublicKey, supplied *solana.PublicKey, protocolFee uint64) (referralSplit, error) {
	split := referralSplit{treasuryFee: protocolFee}

	profile, hasProfile := tx.Profile(trader)

	var referrer solana.PublicKey
	var bound bool
	if hasProfile {
		referrer, bound = profile.Referrer()
	}
	if !bound {
		if supplied == nil || *supplied == trader {
			return split, nil
		}
		sp, ok := tx.Profile(*supplied)
		if !ok {
			return split, nil
		}
		if hasProfile {
			if err := profile.BindReferrer(*supplied); err != nil {
				return referralSplit{}, err
			}
			sp.ReferralCount++
		}
		referrer = *supplied
	}

	split.referrer = referrer
	split.hasReferrer = true
	split.referralFee = protocolFee / referralShareDivisor
	split.treasuryFee = protocolFee - split.referralFee

	if split.referralFee > 0 {
		if rp, ok := tx.Profile(referrer); ok {
			earned, err := curve.CheckedAdd(rp.TotalReferralFees, split.referralFee)
			if err != nil {
				return referralSplit{}, err
			}
			rp.TotalReferralFees = earned
		}
	}
	return split, nil
}
