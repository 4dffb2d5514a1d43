// Package accrual holds the canonical points accrual formula. Every caller
// that needs to turn elapsed epochs into points, whether it intends to commit
// the result or merely display it, must go through Points. No second
// implementation of this formula may exist anywhere in the repository.
package accrual

import (
	"errors"

	sdkmath "cosmossdk.io/math"
)

// BasisPointDenominator converts basis points to a ratio: 1 bp = 1/10000.
const BasisPointDenominator = 10_000

var (
	// ErrOverflow indicates the accrued points exceed the representable
	// range of the points unit. Callers must treat this as a hard failure,
	// never as a wrapped value.
	ErrOverflow = errors.New("accrued points overflow uint64")

	// ErrZeroEpochsPerYear indicates a malformed rate configuration.
	ErrZeroEpochsPerYear = errors.New("epochs per year must be positive")
)

// Points computes the points accrued by principal at apyBasisPoints over
// epochsElapsed epochs:
//
//	floor(principal * apyBasisPoints * epochsElapsed / (10000 * epochsPerYear))
//
// Arithmetic is exact: the numerator is carried in a wide integer, so the
// triple product cannot wrap for any uint64 inputs. Division truncates toward
// zero, so the result is never more than the real-valued reward.
func Points(principal, apyBasisPoints, epochsElapsed, epochsPerYear uint64) (uint64, error) {
	if epochsPerYear == 0 {
		return 0, ErrZeroEpochsPerYear
	}
	if principal == 0 || apyBasisPoints == 0 || epochsElapsed == 0 {
		return 0, nil
	}

	// Three uint64 factors need at most 192 bits, comfortably inside
	// sdkmath.Int's 256-bit limit.
	numerator := sdkmath.NewIntFromUint64(principal).
		Mul(sdkmath.NewIntFromUint64(apyBasisPoints)).
		Mul(sdkmath.NewIntFromUint64(epochsElapsed))
	denominator := sdkmath.NewIntFromUint64(BasisPointDenominator).
		Mul(sdkmath.NewIntFromUint64(epochsPerYear))

	points := numerator.Quo(denominator)
	if !points.IsUint64() {
		return 0, ErrOverflow
	}
	return points.Uint64(), nil
}
