// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lending

import (
	"github.com/luxfi/ledger/interest"
	"github.com/luxfi/ledger/state"
	"github.com/luxfi/ledger/txs/executor"

	safemath "github.com/luxfi/ledger/utils/math"
)

// Failure kinds of engine operations, to be matched with errors.Is.
var (
	ErrInsufficientBalance   = state.ErrInsufficientBalance
	ErrInsufficientLoan      = state.ErrInsufficientLoan
	ErrNoSuchLoan            = state.ErrNoSuchLoan
	ErrInsufficientLiquidity = executor.ErrInsufficientLiquidity
	ErrAssetFrozen           = executor.ErrAssetFrozen
	ErrAssetUnknown          = executor.ErrAssetUnknown
	ErrTermMismatch          = executor.ErrTermMismatch
	ErrInvalidRate           = interest.ErrInvalidRate
	ErrOverflow              = safemath.ErrOverflow
)
