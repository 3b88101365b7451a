// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/gascharger"
	"github.com/vechain/stakepool/thor"
)

type TestStruct struct {
	Field1 uint64
	Field2 uint64
	Addr1  thor.Address
}

type BigStruct struct {
	A [32]byte
	B [32]byte
	C [32]byte
}

func TestMapping_SetGet_StructPointer(t *testing.T) {
	ctx, charger := newTestContext(t)
	mapping := NewMapping[Uint64Key, *TestStruct](ctx, []byte("m"))
	value := &TestStruct{Field1: 100, Field2: 200, Addr1: thor.Address{1}}

	t.Run("absent key reads as nil", func(t *testing.T) {
		got, err := mapping.Get(1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set new value charges SstoreSetGas", func(t *testing.T) {
		charger.Reset()
		require.NoError(t, mapping.Set(1, value))
		assert.Equal(t, gascharger.SstoreSetGas, charger.TotalGas())
	})

	t.Run("get existing value charges SloadGas", func(t *testing.T) {
		charger.Reset()
		got, err := mapping.Get(1)
		require.NoError(t, err)
		assert.Equal(t, value, got)
		assert.Equal(t, gascharger.SloadGas, charger.TotalGas())
	})

	t.Run("update charges SstoreResetGas", func(t *testing.T) {
		charger.Reset()
		value.Field1 = 101
		require.NoError(t, mapping.Set(1, value))
		assert.Equal(t, gascharger.SstoreResetGas, charger.TotalGas())

		got, err := mapping.Get(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(101), got.Field1)
	})

	t.Run("delete clears the key", func(t *testing.T) {
		require.NoError(t, mapping.Delete(1))
		got, err := mapping.Get(1)
		require.NoError(t, err)
		assert.Nil(t, got)

		raw, err := ctx.State().Get(mapping.position(1))
		require.NoError(t, err)
		assert.Empty(t, raw)
	})
}

func TestMapping_MultiWord(t *testing.T) {
	ctx, charger := newTestContext(t)
	mapping := NewMapping[Uint64Key, BigStruct](ctx, []byte("b"))

	value := BigStruct{A: [32]byte{1}, B: [32]byte{2}, C: [32]byte{3}}
	require.NoError(t, mapping.Set(7, value))
	// 3 * 33 bytes plus the list header
	assert.Equal(t, 4*gascharger.SstoreSetGas, charger.TotalGas())

	charger.Reset()
	got, err := mapping.Get(7)
	require.NoError(t, err)
	assert.Equal(t, value, got)
	assert.Equal(t, 4*gascharger.SloadGas, charger.TotalGas())
}

func TestMapping_PrefixIsolation(t *testing.T) {
	ctx, _ := newTestContext(t)
	a := NewMapping[Uint64Key, uint64](ctx, []byte("a"))
	b := NewMapping[Uint64Key, uint64](ctx, []byte("b"))

	require.NoError(t, a.Set(1, 10))
	require.NoError(t, b.Set(1, 20))

	va, err := a.Get(1)
	require.NoError(t, err)
	vb, err := b.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), va)
	assert.Equal(t, uint64(20), vb)
}

func TestUint64Key(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 2}, Uint64Key(0x102).Bytes())
}
