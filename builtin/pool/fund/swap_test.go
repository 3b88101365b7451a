// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/reverts"
)

func sumOf(t *testing.T, l *Ledger, typ Type) *big.Int {
	info, err := l.TypeInfo(typ)
	require.NoError(t, err)
	return info.Sum
}

func TestMoveUserFunds_SplitsOldestFirst(t *testing.T) {
	l, _ := newTestLedger(t)

	first, err := l.Append(1, NewDesc(Waiting, 1), big64(5))
	require.NoError(t, err)
	second, err := l.Append(1, NewDesc(Waiting, 2), big64(5))
	require.NoError(t, err)

	var refreshed []uint64
	before := func(user uint64) error {
		refreshed = append(refreshed, user)
		return nil
	}

	moved, touched, err := l.MoveUserFunds(1, Waiting, NewDesc(Active, 0), big64(7), Unlimited, before)
	require.NoError(t, err)
	assert.Equal(t, big64(7), moved)
	assert.Equal(t, uint64(2), touched)
	assert.Equal(t, []uint64{1, 1}, refreshed)

	// the first record is gone, the second keeps the remainder in place
	_, err = l.Get(first)
	assert.True(t, reverts.Is(err, reverts.NotFoundKind))
	item, err := l.Get(second)
	require.NoError(t, err)
	assert.Equal(t, big64(3), item.Balance)
	assert.Equal(t, NewDesc(Waiting, 2), item.Desc)

	assert.Equal(t, []int64{3}, userBalances(t, l, 1, Waiting))
	assert.Equal(t, []int64{5, 2}, userBalances(t, l, 1, Active))
	assert.Equal(t, big64(3), sumOf(t, l, Waiting))
	assert.Equal(t, big64(7), sumOf(t, l, Active))
	verifyAll(t, l, 1)
}

func TestMoveUserFunds_CoalescesTarget(t *testing.T) {
	l, _ := newTestLedger(t)

	for i := uint64(0); i < 3; i++ {
		_, err := l.Append(1, NewDesc(UnStaked, i), big64(2))
		require.NoError(t, err)
	}
	moved, touched, err := l.MoveUserFunds(1, UnStaked, NewDesc(WithdrawOnly, 0), big64(6), Unlimited, nil)
	require.NoError(t, err)
	assert.Equal(t, big64(6), moved)
	assert.Equal(t, uint64(3), touched)
	assert.Equal(t, []int64{6}, userBalances(t, l, 1, WithdrawOnly))
	assert.Empty(t, userBalances(t, l, 1, UnStaked))
	verifyAll(t, l, 1)
}

func TestMoveUserFunds_Bounded(t *testing.T) {
	l, _ := newTestLedger(t)

	for i := uint64(0); i < 4; i++ {
		_, err := l.Append(1, NewDesc(Waiting, i), big64(10))
		require.NoError(t, err)
	}

	moved, touched, err := l.MoveUserFunds(1, Waiting, NewDesc(Active, 0), big64(35), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, big64(20), moved)
	assert.Equal(t, uint64(2), touched)

	moved, touched, err = l.MoveUserFunds(1, Waiting, NewDesc(Active, 0), big64(15), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, big64(15), moved)
	assert.Equal(t, uint64(2), touched)

	assert.Equal(t, []int64{5}, userBalances(t, l, 1, Waiting))
	assert.Equal(t, big64(35), sumOf(t, l, Active))
	verifyAll(t, l, 1)
}

func TestMoveUserFunds_Rejects(t *testing.T) {
	l, st := newTestLedger(t)

	_, err := l.Append(1, NewDesc(Waiting, 1), big64(5))
	require.NoError(t, err)
	changes := st.Changes()

	_, _, err = l.MoveUserFunds(1, Waiting, NewDesc(Active, 0), big64(6), Unlimited, nil)
	assert.True(t, reverts.Is(err, reverts.OutOfRangeKind))

	_, _, err = l.MoveUserFunds(2, Waiting, NewDesc(Active, 0), big64(1), Unlimited, nil)
	assert.True(t, reverts.Is(err, reverts.OutOfRangeKind))

	_, _, err = l.MoveUserFunds(1, Waiting, NewDesc(Waiting, 2), big64(1), Unlimited, nil)
	assert.True(t, reverts.Is(err, reverts.InvalidStateKind))

	assert.Equal(t, changes, st.Changes())
	assert.Equal(t, []int64{5}, userBalances(t, l, 1, Waiting))
}

func TestMoveUserFunds_HookError(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Append(1, NewDesc(Waiting, 1), big64(5))
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = l.MoveUserFunds(1, Waiting, NewDesc(Active, 0), big64(5), Unlimited, func(uint64) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int64{5}, userBalances(t, l, 1, Waiting))
}

func TestMoveTypeFunds(t *testing.T) {
	l, _ := newTestLedger(t)

	for i, user := range []uint64{1, 2, 3} {
		_, err := l.Append(user, NewDesc(Waiting, uint64(i)), big64(10))
		require.NoError(t, err)
	}

	seen := map[uint64]int{}
	moved, touched, err := l.MoveTypeFunds(Waiting, NewDesc(Active, 0), big64(25), Unlimited, func(user uint64) error {
		seen[user]++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, big64(25), moved)
	assert.Equal(t, uint64(3), touched)
	assert.Equal(t, map[uint64]int{1: 1, 2: 1, 3: 1}, seen)

	assert.Equal(t, []int64{10}, userBalances(t, l, 1, Active))
	assert.Equal(t, []int64{10}, userBalances(t, l, 2, Active))
	assert.Equal(t, []int64{5}, userBalances(t, l, 3, Active))
	assert.Equal(t, []int64{5}, userBalances(t, l, 3, Waiting))
	verifyAll(t, l, 1, 2, 3)

	_, _, err = l.MoveTypeFunds(Waiting, NewDesc(Active, 0), big64(6), Unlimited, nil)
	assert.True(t, reverts.Is(err, reverts.OutOfRangeKind))
}

func TestMoveTypeFunds_Zero(t *testing.T) {
	l, st := newTestLedger(t)

	moved, touched, err := l.MoveTypeFunds(Active, NewDesc(DeferredPayment, 1), new(big.Int), Unlimited, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, moved.Sign())
	assert.Zero(t, touched)
	assert.Zero(t, st.Changes())
}

func TestDrainUserFunds(t *testing.T) {
	l, _ := newTestLedger(t)

	_, err := l.Append(1, NewDesc(Waiting, 1), big64(4))
	require.NoError(t, err)
	_, err = l.Append(1, NewDesc(Waiting, 2), big64(4))
	require.NoError(t, err)

	drained, touched, err := l.DrainUserFunds(1, Waiting, big64(6), Unlimited)
	require.NoError(t, err)
	assert.Equal(t, big64(6), drained)
	assert.Equal(t, uint64(2), touched)
	assert.Equal(t, []int64{2}, userBalances(t, l, 1, Waiting))

	total, err := l.UserTotal(1)
	require.NoError(t, err)
	assert.Equal(t, big64(2), total)
	verifyAll(t, l, 1)
}

// TestMove_Conservation moves random amounts between types and checks that
// the user's total never changes.
func TestMove_Conservation(t *testing.T) {
	l, _ := newTestLedger(t)

	for i := uint64(0); i < 5; i++ {
		_, err := l.Append(1, NewDesc(Waiting, i), big64(int64(10+i)))
		require.NoError(t, err)
	}
	steps := []struct {
		from   Type
		to     Desc
		amount int64
	}{
		{Waiting, NewDesc(Active, 0), 23},
		{Active, NewDesc(UnStaked, 9), 11},
		{UnStaked, NewDesc(DeferredPayment, 9), 11},
		{Waiting, NewDesc(Active, 0), 37},
		{DeferredPayment, NewDesc(WithdrawOnly, 0), 4},
		{Active, NewDesc(DeferredPayment, 10), 49},
	}
	for _, s := range steps {
		fromBefore := new(big.Int).Set(sumOf(t, l, s.from))
		toBefore := new(big.Int).Set(sumOf(t, l, s.to.Type))

		moved, _, err := l.MoveUserFunds(1, s.from, s.to, big64(s.amount), Unlimited, nil)
		require.NoError(t, err)
		assert.Equal(t, big64(s.amount), moved)
		assert.Equal(t, fromBefore, new(big.Int).Add(sumOf(t, l, s.from), moved))
		assert.Equal(t, new(big.Int).Add(toBefore, moved), sumOf(t, l, s.to.Type))

		total, err := l.UserTotal(1)
		require.NoError(t, err)
		assert.Equal(t, big64(60), total)
		verifyAll(t, l, 1)
	}
}
