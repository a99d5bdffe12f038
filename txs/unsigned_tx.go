// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

// UnsignedTx is one ledger operation. Authentication is the host's concern,
// so a tx carries no credentials.
type UnsignedTx interface {
	// SyntacticVerify checks the tx without reading state.
	SyntacticVerify() error

	// Visit calls the visitor method matching the tx type.
	Visit(visitor Visitor) error
}
