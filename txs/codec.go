// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion uint16 = 0

// Codec is the wire format of ledger txs. Type IDs follow registration
// order, so new tx types must only ever be appended.
var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt32)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&DepositTx{}),
		lc.RegisterType(&WithdrawTx{}),
		lc.RegisterType(&TransferTx{}),
		lc.RegisterType(&BorrowTx{}),
		lc.RegisterType(&RepayTx{}),
		lc.RegisterType(&FreezeTx{}),
		lc.RegisterType(&UnfreezeTx{}),
		lc.RegisterType(&UpdateRateTx{}),
		lc.RegisterType(&UpdateAssetRateTx{}),
		lc.RegisterType(&ExtendTermTx{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
