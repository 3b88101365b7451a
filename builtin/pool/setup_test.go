// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"errors"
	"maps"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/thor"
)

var (
	owner = thor.Address{0xff}
	alice = thor.Address{1}
	bob   = thor.Address{2}
	carol = thor.Address{3}

	errNotFound = errors.New("not found")
)

// memStore is a map backed kv.Store whose content can be compared between calls.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(key []byte) ([]byte, error) {
	v, ok := s.data[string(key)]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (s *memStore) Has(key []byte) (bool, error) {
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *memStore) IsNotFound(err error) bool { return errors.Is(err, errNotFound) }

func (s *memStore) Put(key, val []byte) error {
	s.data[string(key)] = append([]byte(nil), val...)
	return nil
}

func (s *memStore) Delete(key []byte) error {
	delete(s.data, string(key))
	return nil
}

func (s *memStore) NewBatch() kv.Batch {
	return &memBatch{store: s}
}

func (s *memStore) snapshot() map[string][]byte {
	return maps.Clone(s.data)
}

type memBatch struct {
	store *memStore
	ops   []func()
}

func (b *memBatch) Put(key, val []byte) error {
	k, v := string(key), append([]byte(nil), val...)
	b.ops = append(b.ops, func() { b.store.data[k] = v })
	return nil
}

func (b *memBatch) Delete(key []byte) error {
	k := string(key)
	b.ops = append(b.ops, func() { delete(b.store.data, k) })
	return nil
}

func (b *memBatch) Len() int { return len(b.ops) }

func (b *memBatch) Write() error {
	for _, op := range b.ops {
		op()
	}
	b.ops = nil
	return nil
}

type fakeAuthority struct {
	staked   *big.Int
	unstaked *big.Int
	err      error
}

func (a *fakeAuthority) Stake(_ []thor.Address, amount *big.Int) error {
	if a.err != nil {
		return a.err
	}
	a.staked.Add(a.staked, amount)
	return nil
}

func (a *fakeAuthority) Unstake(_ []thor.Address, amount *big.Int) error {
	if a.err != nil {
		return a.err
	}
	a.unstaked.Add(a.unstaked, amount)
	return nil
}

type fakeTransferer struct {
	sent map[thor.Address]*big.Int
	err  error
}

func (f *fakeTransferer) Send(to thor.Address, amount *big.Int) error {
	if f.err != nil {
		return f.err
	}
	if f.sent[to] == nil {
		f.sent[to] = new(big.Int)
	}
	f.sent[to].Add(f.sent[to], amount)
	return nil
}

type recordSink struct {
	events []Event
}

func (s *recordSink) Emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *recordSink) names() []string {
	var out []string
	for _, ev := range s.events {
		out = append(out, ev.Name)
	}
	return out
}

type testPool struct {
	*Pool
	store     *memStore
	authority *fakeAuthority
	transfer  *fakeTransferer
	sink      *recordSink
	now       uint64
}

func defaultParams() Params {
	return Params{
		DelegationCap:   big.NewInt(1000),
		MinStake:        big.NewInt(1),
		UnbondingWindow: 100,
	}
}

// newTestPool returns a pool initialized with params, owned by owner.
func newTestPool(t *testing.T, params Params) *testPool {
	tp := newUninitializedPool(t)
	require.NoError(t, tp.Initialize(owner, params))
	return tp
}

func newUninitializedPool(t *testing.T) *testPool {
	tp := &testPool{
		store:     newMemStore(),
		authority: &fakeAuthority{staked: new(big.Int), unstaked: new(big.Int)},
		transfer:  &fakeTransferer{sent: make(map[thor.Address]*big.Int)},
		sink:      &recordSink{},
		now:       1000,
	}
	p, err := New(tp.store,
		WithAuthority(tp.authority),
		WithTransferer(tp.transfer),
		WithEventSink(tp.sink),
		WithClock(func() uint64 { return tp.now }),
		WithCacheSize(0),
	)
	require.NoError(t, err)
	tp.Pool = p
	return tp
}

func big64(v int64) *big.Int {
	return big.NewInt(v)
}

func (tp *testPool) balance(t *testing.T, addr thor.Address, typ fund.Type) int64 {
	b, err := tp.UserBalance(addr, typ)
	require.NoError(t, err)
	return b.Int64()
}

func (tp *testPool) total(t *testing.T, typ fund.Type) int64 {
	info, err := tp.TotalOf(typ)
	require.NoError(t, err)
	return info.Sum.Int64()
}

// finish drives the global operation in progress to its end in calls of maxItems.
func (tp *testPool) finish(t *testing.T, maxItems uint64) (calls int) {
	for {
		progress, err := tp.ContinueOperation(maxItems)
		require.NoError(t, err)
		calls++
		if progress.Idle {
			return calls
		}
		require.Less(t, calls, 1000, "operation does not finish")
	}
}

func (tp *testPool) verify(t *testing.T) {
	complete, err := tp.Verify(1000)
	require.NoError(t, err)
	assert.True(t, complete)
}

// stakeAll deposits the amounts, one user each, and stakes them.
func (tp *testPool) stakeAll(t *testing.T, deposits map[thor.Address]int64) {
	total := int64(0)
	for _, addr := range []thor.Address{alice, bob, carol} {
		amount, ok := deposits[addr]
		if !ok {
			continue
		}
		require.NoError(t, tp.Deposit(addr, big64(amount), tp.now))
		total += amount
	}
	staked, err := tp.Stake(owner, big64(total), tp.now, 10)
	require.NoError(t, err)
	require.Equal(t, total, staked.Int64())
}
