// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package interest

import (
	"fmt"

	"github.com/holiman/uint256"

	safemath "github.com/luxfi/ledger/utils/math"
)

var denominator = uint256.NewInt(Denominator)

// Accrue returns floor(principal * rate * duration). The product is formed in
// 256 bits, which cannot overflow for 64-bit operands.
func Accrue(principal uint64, rate Rate, duration uint64) (uint64, error) {
	if err := rate.Verify(); err != nil {
		return 0, err
	}

	var accrued uint256.Int
	accrued.Mul(uint256.NewInt(principal), uint256.NewInt(uint64(rate)))
	accrued.Mul(&accrued, uint256.NewInt(duration))
	accrued.Div(&accrued, denominator)
	if !accrued.IsUint64() {
		return 0, fmt.Errorf("%w: interest on %d at %s over %d", safemath.ErrOverflow, principal, rate, duration)
	}
	return accrued.Uint64(), nil
}
