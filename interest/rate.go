// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package interest implements the fixed-rate interest engine of the ledger.
//
// Rates are fractions in [0, 1] stored as fixed-point integers scaled by
// Denominator (18 decimals), so a rate of 0.05 is stored as 5e16.
package interest

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Decimals is the number of decimal places a Rate carries.
	Decimals = 18
	// Denominator is the fixed-point scale of a Rate, 10^Decimals.
	Denominator = 1_000_000_000_000_000_000
)

var (
	ErrInvalidRate = errors.New("invalid interest rate")

	one = decimal.New(1, 0)
)

// Rate is an interest rate fraction in fixed-point form.
type Rate uint64

const (
	Zero Rate = 0
	One  Rate = Denominator
)

// Verify reports ErrInvalidRate when the rate is above 1.
func (r Rate) Verify() error {
	if r > One {
		return fmt.Errorf("%w: %s is above 1", ErrInvalidRate, r)
	}
	return nil
}

// ParseRate parses a decimal fraction such as "0.05". Digits beyond the
// 18th decimal are truncated.
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidRate, s, err)
	}
	return FromDecimal(d)
}

// FromFloat converts a float fraction into a Rate.
func FromFloat(f float64) (Rate, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, f)
	}
	return FromDecimal(decimal.NewFromFloat(f))
}

// FromDecimal converts a decimal fraction in [0, 1] into a Rate.
func FromDecimal(d decimal.Decimal) (Rate, error) {
	if d.IsNegative() || d.GreaterThan(one) {
		return 0, fmt.Errorf("%w: %s is outside [0, 1]", ErrInvalidRate, d)
	}
	scaled := d.Shift(Decimals).Truncate(0).BigInt()
	return Rate(scaled.Uint64()), nil
}

// Decimal returns the rate as an exact decimal fraction.
func (r Rate) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(r)), -Decimals)
}

func (r Rate) Float64() float64 {
	f, _ := r.Decimal().Float64()
	return f
}

func (r Rate) String() string {
	return r.Decimal().String()
}

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON accepts the quoted decimal form and bare JSON numbers.
func (r *Rate) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		return nil
	}
	rate, err := ParseRate(strings.Trim(str, `"`))
	if err != nil {
		return err
	}
	*r = rate
	return nil
}
