package engine

import "errors"

var (
	// ErrProtocolPaused is returned while the global pause switch is on.
	ErrProtocolPaused = errors.New("protocol is paused")
	// ErrTradingDisabled is returned for trades against a completed curve.
	ErrTradingDisabled = errors.New("trading is disabled for this curve")
	// ErrInvalidAmount rejects zero-amount trades.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrSniperLimitExceeded rejects oversized buys inside the launch window.
	ErrSniperLimitExceeded = errors.New("buy exceeds the sniper protection limit")
	// ErrMinTokensNotMet is returned when a buy quote falls below the floor
	// requested by the buyer.
	ErrMinTokensNotMet = errors.New("quoted tokens below the requested minimum")
	// ErrSlippageExceeded is returned when a sell pays out less than the
	// floor requested by the seller.
	ErrSlippageExceeded = errors.New("sell proceeds below the requested minimum")
	// ErrInsufficientLiquidity means the curve cannot cover the quoted side.
	ErrInsufficientLiquidity = errors.New("curve has insufficient liquidity")

	// ErrGraduationNotReached blocks migration before the threshold is hit.
	ErrGraduationNotReached = errors.New("graduation threshold not reached")
	// ErrCurveAlreadyMigrated blocks a second migration of the same curve.
	ErrCurveAlreadyMigrated = errors.New("curve has already been migrated")
	// ErrUnauthorized is returned when a restricted operation is invoked by
	// a key other than the configured authority.
	ErrUnauthorized = errors.New("signer is not authorized")
	// ErrNoVenue means the engine was built without a migration venue.
	ErrNoVenue = errors.New("no migration venue configured")

	ErrNameTooLong     = errors.New("token name too long")
	ErrSymbolTooLong   = errors.New("token symbol too long")
	ErrURITooLong      = errors.New("metadata uri too long")
	ErrUsernameTooLong = errors.New("username too long")
	ErrEmptyUsername   = errors.New("username must not be empty")

	// ErrUserNotRegistered is returned when a referral operation targets a
	// wallet with no profile.
	ErrUserNotRegistered = errors.New("user profile not registered")
	// ErrReferralCodeNotFound is returned for unknown referral codes.
	ErrReferralCodeNotFound = errors.New("referral code not found")
)
