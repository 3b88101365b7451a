// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
)

func newTestLedger(t *testing.T) (*Ledger, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 0)
	require.NoError(t, err)
	return New(solidity.NewContext(st, nil)), st
}

func big64(v int64) *big.Int {
	return big.NewInt(v)
}

// balances returns the balances of a list in walk order.
func balances(t *testing.T, it *Iterator) []int64 {
	var out []int64
	for it.Next() {
		out = append(out, it.Item().Balance.Int64())
	}
	require.NoError(t, it.Error())
	return out
}

func userBalances(t *testing.T, l *Ledger, user uint64, typ Type) []int64 {
	it, err := l.IterateUser(user, typ)
	require.NoError(t, err)
	return balances(t, it)
}

func typeBalances(t *testing.T, l *Ledger, typ Type) []int64 {
	it, err := l.Iterate(typ)
	require.NoError(t, err)
	return balances(t, it)
}

// verifyAll checks every type list and every user list of the given users.
func verifyAll(t *testing.T, l *Ledger, users ...uint64) {
	for _, typ := range Types {
		complete, err := l.Verify(typ, Unlimited)
		require.NoError(t, err, "type %v", typ)
		require.True(t, complete)
		for _, u := range users {
			complete, err := l.VerifyUser(u, typ, Unlimited)
			require.NoError(t, err, "user %d type %v", u, typ)
			require.True(t, complete)
		}
	}
}
