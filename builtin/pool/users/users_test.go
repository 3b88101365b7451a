// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package users

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

func newDirectory(t *testing.T) *Directory {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 0)
	require.NoError(t, err)
	return New(solidity.NewContext(st, nil))
}

func TestDirectory(t *testing.T) {
	d := newDirectory(t)
	alice, bob := thor.Address{1}, thor.Address{2}

	id, created, err := d.GetOrCreate(alice, big.NewInt(0))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(1), id)

	id, created, err = d.GetOrCreate(bob, big.NewInt(42))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(2), id)

	id, created, err = d.GetOrCreate(alice, big.NewInt(99))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, uint64(1), id)

	count, err := d.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	user, err := d.Get(2)
	require.NoError(t, err)
	assert.Equal(t, bob, user.Address)
	assert.Equal(t, big.NewInt(42), user.RewardCheckpoint)
	assert.Equal(t, 0, user.Unclaimed.Sign())

	user.Unclaimed = big.NewInt(7)
	require.NoError(t, d.Set(2, user))
	user, err = d.Get(2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), user.Unclaimed)

	id, err = d.Lookup(thor.Address{3})
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = d.Get(3)
	assert.True(t, reverts.Is(err, reverts.NotFoundKind))

	_, _, err = d.GetOrCreate(thor.Address{}, big.NewInt(0))
	assert.True(t, reverts.Is(err, reverts.UnauthorizedKind))
}
