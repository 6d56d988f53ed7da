// internal/curve/math.go
package curve

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

// PricePrecision scales spot prices so they stay in integer arithmetic.
const PricePrecision = 1_000_000

var (
	// ErrMathOverflow is returned when a checked operation over- or underflows.
	ErrMathOverflow = errors.New("math overflow in bonding curve")
	// ErrZeroReserves is returned when a quote is requested against empty reserves.
	ErrZeroReserves = errors.New("bonding curve has zero reserves")
)

// BuyQuote returns the token amount received for netSolIn lamports on the
// constant-product curve:
//
//	tokensOut = virtualTokens * netSolIn / (virtualSol + netSolIn)
//
// The intermediate product is computed in 256-bit width, so it cannot
// overflow for any pair of uint64 inputs. The result is floored.
func BuyQuote(virtualSol, virtualTokens, netSolIn uint64) (uint64, error) {
	if virtualTokens == 0 {
		return 0, ErrZeroReserves
	}
	num := new(uint256.Int).Mul(uint256.NewInt(virtualTokens), uint256.NewInt(netSolIn))
	den := new(uint256.Int).Add(uint256.NewInt(virtualSol), uint256.NewInt(netSolIn))
	if den.IsZero() {
		return 0, ErrZeroReserves
	}
	out := num.Div(num, den)
	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// SellQuote returns the lamports received for tokenIn tokens, the inverse of
// BuyQuote:
//
//	solOut = virtualSol * tokenIn / (virtualTokens + tokenIn)
func SellQuote(virtualSol, virtualTokens, tokenIn uint64) (uint64, error) {
	if virtualSol == 0 {
		return 0, ErrZeroReserves
	}
	num := new(uint256.Int).Mul(uint256.NewInt(virtualSol), uint256.NewInt(tokenIn))
	den := new(uint256.Int).Add(uint256.NewInt(virtualTokens), uint256.NewInt(tokenIn))
	if den.IsZero() {
		return 0, ErrZeroReserves
	}
	out := num.Div(num, den)
	if !out.IsUint64() {
		return 0, ErrMathOverflow
	}
	return out.Uint64(), nil
}

// SpotPrice returns the current price in lamports per whole token, scaled by
// PricePrecision.
func SpotPrice(virtualSol, virtualTokens uint64) (uint64, error) {
	if virtualTokens == 0 {
		return 0, ErrZeroReserves
	}
	num := new(uint256.Int).Mul(uint256.NewInt(virtualSol), uint256.NewInt(PricePrecision))
	price := num.Div(num, uint256.NewInt(virtualTokens))
	if !price.IsUint64() {
		return 0, ErrMathOverflow
	}
	return price.Uint64(), nil
}

// MarketCap returns totalSupply * price / PricePrecision in lamports.
func MarketCap(totalSupply, price uint64) (uint64, error) {
	num := new(uint256.Int).Mul(uint256.NewInt(totalSupply), uint256.NewInt(price))
	cap := num.Div(num, uint256.NewInt(PricePrecision))
	if !cap.IsUint64() {
		return 0, ErrMathOverflow
	}
	return cap.Uint64(), nil
}

// CheckedAdd returns a+b or ErrMathOverflow.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrMathOverflow when b > a.
func CheckedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrMathOverflow
	}
	return diff, nil
}

// CheckedMul returns a*b or ErrMathOverflow.
func CheckedMul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrMathOverflow
	}
	return lo, nil
}
