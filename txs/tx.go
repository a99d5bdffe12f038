// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

var (
	ErrNilTx             = errors.New("tx is nil")
	errWrongCodecVersion = errors.New("wrong codec version")
)

// Tx is the serialized envelope of an UnsignedTx.
type Tx struct {
	Unsigned UnsignedTx `serialize:"true" json:"unsignedTx"`

	id    ids.ID
	bytes []byte
}

// NewTx wraps unsigned and computes its bytes and ID.
func NewTx(unsigned UnsignedTx) (*Tx, error) {
	tx := &Tx{Unsigned: unsigned}
	return tx, tx.Initialize()
}

// Initialize marshals the tx and caches its bytes and ID.
func (tx *Tx) Initialize() error {
	bytes, err := Codec.Marshal(CodecVersion, tx)
	if err != nil {
		return fmt.Errorf("couldn't marshal tx: %w", err)
	}
	tx.SetBytes(bytes)
	return nil
}

func (tx *Tx) SetBytes(bytes []byte) {
	tx.bytes = bytes
	tx.id = ids.ID(hash.ComputeHash256Array(bytes))
}

func (tx *Tx) ID() ids.ID {
	return tx.id
}

func (tx *Tx) Bytes() []byte {
	return tx.bytes
}

func (tx *Tx) SyntacticVerify() error {
	if tx == nil || tx.Unsigned == nil {
		return ErrNilTx
	}
	return tx.Unsigned.SyntacticVerify()
}

// Parse decodes a tx from its wire form.
func Parse(bytes []byte) (*Tx, error) {
	tx := &Tx{}
	version, err := Codec.Unmarshal(bytes, tx)
	if err != nil {
		return nil, fmt.Errorf("couldn't unmarshal tx: %w", err)
	}
	if version != CodecVersion {
		return nil, fmt.Errorf("%w: %d", errWrongCodecVersion, version)
	}
	tx.SetBytes(bytes)
	return tx, nil
}
