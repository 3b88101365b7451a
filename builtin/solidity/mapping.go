// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"
)

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Values are rlp encoded and stored under prefix + key.
type Mapping[K Key, V any] struct {
	context *Context
	prefix  []byte
}

func NewMapping[K Key, V any](context *Context, prefix []byte) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, prefix: prefix}
}

func (m *Mapping[K, V]) position(key K) []byte {
	kb := key.Bytes()
	pos := make([]byte, 0, len(m.prefix)+len(kb))
	return append(append(pos, m.prefix...), kb...)
}

// Get returns the value stored for key. Absent keys yield the zero value of V.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	raw, err := m.context.load(m.position(key))
	if err != nil || len(raw) == 0 {
		return value, err
	}
	err = rlp.DecodeBytes(raw, &value)
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	val, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.context.store(m.position(key), val)
}

func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.store(m.position(key), nil)
}
