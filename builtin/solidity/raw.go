// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Raw is a single rlp encoded value stored under a fixed key.
type Raw[V any] struct {
	context *Context
	key     []byte
}

func NewRaw[V any](context *Context, key []byte) *Raw[V] {
	return &Raw[V]{context: context, key: key}
}

// Get returns the stored value, the zero value of V if unset.
func (r *Raw[V]) Get() (value V, err error) {
	raw, err := r.context.load(r.key)
	if err != nil || len(raw) == 0 {
		return value, err
	}
	err = rlp.DecodeBytes(raw, &value)
	return
}

func (r *Raw[V]) Set(value V) error {
	val, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return r.context.store(r.key, val)
}

// Bytes is an uninterpreted byte string stored under a fixed key.
// An empty value and an unset slot are the same.
type Bytes struct {
	context *Context
	key     []byte
}

func NewBytes(context *Context, key []byte) *Bytes {
	return &Bytes{context: context, key: key}
}

func (b *Bytes) Get() ([]byte, error) {
	return b.context.load(b.key)
}

func (b *Bytes) Set(val []byte) error {
	return b.context.store(b.key, val)
}
