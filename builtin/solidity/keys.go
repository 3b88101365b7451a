// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "encoding/binary"

// Key is a mapping key, Bytes is appended to the mapping prefix.
type Key interface {
	Bytes() []byte
}

// Uint64Key is a big endian encoded uint64 key, keeps numeric order in the store.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
