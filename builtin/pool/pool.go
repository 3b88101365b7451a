// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/gascharger"
	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/builtin/pool/globalop"
	"github.com/vechain/stakepool/builtin/pool/rewards"
	"github.com/vechain/stakepool/builtin/pool/users"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/state"
	"github.com/vechain/stakepool/thor"
)

var logger = log.New("pkg", "pool")

func SetLogger(l log.Logger) {
	logger = l
}

// OwnerID is the user id of the pool owner.
const OwnerID = 1

// storeBucket prefixes every key the pool writes, the store can be shared.
const storeBucket = kv.Bucket("stakepool/")

var (
	slotParams     = []byte("pool-params")
	slotPaused     = []byte("pool-paused")
	slotNodes      = []byte("pool-nodes")
	slotCheckpoint = []byte("pool-checkpoint")
)

// Params are the pool parameters, set by Initialize.
type Params struct {
	DelegationCap   *big.Int // upper bound of active plus unstaked funds
	ServiceFee      uint64   // share of rewards taken by the owner, out of rewards.MaxServiceFee
	MinStake        *big.Int // smallest deposit
	UnbondingWindow uint64   // seconds a deferred payment waits before it can be claimed
}

// Pool is a delegation pool over a kv store. Each mutating call is atomic:
// it commits all its changes or none, except ContinueOperation which commits
// the work units finished before a failure.
type Pool struct {
	mu sync.Mutex

	state   *state.State
	charger *gascharger.Charger

	ledger     *fund.Ledger
	users      *users.Directory
	rewards    *rewards.Rewards
	params     *solidity.Raw[*Params]
	paused     *solidity.Raw[bool]
	nodes      *solidity.Raw[[]thor.Address]
	checkpoint *solidity.Bytes

	authority  Authority
	transferer Transferer
	sink       EventSink
	clock      func() uint64
	cacheSize  int

	events []Event
}

type Option func(*Pool)

func WithAuthority(a Authority) Option {
	return func(p *Pool) { p.authority = a }
}

func WithTransferer(t Transferer) Option {
	return func(p *Pool) { p.transferer = t }
}

func WithEventSink(s EventSink) Option {
	return func(p *Pool) { p.sink = s }
}

// WithClock sets the time source of ContinueOperation, in unix seconds.
func WithClock(now func() uint64) Option {
	return func(p *Pool) { p.clock = now }
}

// WithCacheSize sets the number of committed values cached in memory.
func WithCacheSize(n int) Option {
	return func(p *Pool) { p.cacheSize = n }
}

// New opens the pool stored in store.
func New(store kv.Store, opts ...Option) (*Pool, error) {
	p := &Pool{
		charger:    gascharger.New(),
		authority:  noopAuthority{},
		transferer: noopTransferer{},
		sink:       logSink{},
		clock:      func() uint64 { return uint64(time.Now().Unix()) },
		cacheSize:  4096,
	}
	for _, opt := range opts {
		opt(p)
	}

	st, err := state.New(storeBucket.NewStore(store), p.cacheSize)
	if err != nil {
		return nil, err
	}
	sctx := solidity.NewContext(st, p.charger.Charge)

	p.state = st
	p.ledger = fund.New(sctx)
	p.users = users.New(sctx)
	p.rewards = rewards.New(sctx)
	p.params = solidity.NewRaw[*Params](sctx, slotParams)
	p.paused = solidity.NewRaw[bool](sctx, slotPaused)
	p.nodes = solidity.NewRaw[[]thor.Address](sctx, slotNodes)
	p.checkpoint = solidity.NewBytes(sctx, slotCheckpoint)
	return p, nil
}

// exec runs fn as one atomic call.
func (p *Pool) exec(op string, fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.run(op, false, fn)
}

// run executes fn and commits its changes. With partial set, the changes fn
// kept before returning an error are committed as well.
func (p *Pool) run(op string, partial bool, fn func() error) error {
	p.charger.Reset()
	p.events = p.events[:0]

	rev := p.state.NewCheckpoint()
	err := fn()
	if err != nil {
		status := "failed"
		if reverts.IsRevertErr(err) {
			status = "rejected"
		}
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": status})
		logger.Debug("call failed", "op", op, "error", err)
		if !partial {
			p.state.RevertTo(rev)
			p.events = p.events[:0]
			return err
		}
	}

	if cerr := p.state.Commit(); cerr != nil {
		p.state.Discard()
		p.events = p.events[:0]
		return errors.Wrap(cerr, "commit")
	}
	if err == nil {
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})
	}
	metricStorageGas().ObserveWithLabels(int64(p.charger.TotalGas()), map[string]string{"op": op})
	logger.Debug("call committed", "op", op, "gas", p.charger.Breakdown())
	reportCacheStats(p.state.CacheStats())

	for _, ev := range p.events {
		p.sink.Emit(ev)
	}
	p.events = p.events[:0]
	return err
}

// view runs a read only fn.
func (p *Pool) view(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.state.Discard()
	return fn()
}

func (p *Pool) emit(name string, user thor.Address, amount *big.Int, detail string) {
	var a *big.Int
	if amount != nil {
		a = new(big.Int).Set(amount)
	}
	p.events = append(p.events, Event{Name: name, User: user, Amount: a, Detail: detail})
}

func (p *Pool) getParams() (*Params, error) {
	params, err := p.params.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get params")
	}
	if params == nil {
		return nil, reverts.InvalidState("pool is not initialized")
	}
	if params.DelegationCap == nil {
		params.DelegationCap = new(big.Int)
	}
	if params.MinStake == nil {
		params.MinStake = new(big.Int)
	}
	return params, nil
}

func (p *Pool) getCheckpoint() (*globalop.Checkpoint, error) {
	raw, err := p.checkpoint.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get checkpoint")
	}
	return globalop.Decode(raw)
}

func (p *Pool) setCheckpoint(cp *globalop.Checkpoint) error {
	raw, err := globalop.Encode(cp)
	if err != nil {
		return err
	}
	return errors.Wrap(p.checkpoint.Set(raw), "failed to set checkpoint")
}

// requireUserOp checks the pool accepts user fund operations: it is initialized,
// not paused and no global operation is in progress.
func (p *Pool) requireUserOp() (*Params, error) {
	params, err := p.getParams()
	if err != nil {
		return nil, err
	}
	paused, err := p.paused.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paused")
	}
	if paused {
		return nil, reverts.InvalidState("pool is paused")
	}
	cp, err := p.getCheckpoint()
	if err != nil {
		return nil, err
	}
	if !cp.IsIdle() {
		return nil, reverts.InvalidState("global operation %v in progress", cp.Kind)
	}
	return params, nil
}

func (p *Pool) requireOwner(caller thor.Address) (*Params, error) {
	params, err := p.getParams()
	if err != nil {
		return nil, err
	}
	id, err := p.users.Lookup(caller)
	if err != nil {
		return nil, err
	}
	if id != OwnerID {
		return nil, reverts.Unauthorized("%v is not the pool owner", caller)
	}
	return params, nil
}

// requireUser returns the id of a known address.
func (p *Pool) requireUser(addr thor.Address) (uint64, error) {
	id, err := p.users.Lookup(addr)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, reverts.NotFound("unknown user %v", addr)
	}
	return id, nil
}

func requireItems(maxItems uint64) error {
	if maxItems == 0 {
		return reverts.OutOfRange("max items must be positive")
	}
	return nil
}

// refresh settles the user's rewards up to the current accumulator.
// It must run before the user's active stake changes.
func (p *Pool) refresh(id uint64) error {
	acc, err := p.rewards.Accumulator()
	if err != nil {
		return err
	}
	_, err = p.refreshTo(id, acc)
	return err
}

func (p *Pool) refreshTo(id uint64, upTo *big.Int) (*users.User, error) {
	user, err := p.users.Get(id)
	if err != nil {
		return nil, err
	}
	active, err := p.ledger.UserInfo(id, fund.Active)
	if err != nil {
		return nil, err
	}
	if user.RewardCheckpoint.Cmp(upTo) >= 0 {
		return user, nil
	}
	rewards.Settle(user, active.Sum, upTo)
	return user, p.users.Set(id, user)
}

func (p *Pool) updateFundMeters() {
	for _, t := range fund.Types {
		info, err := p.ledger.TypeInfo(t)
		if err != nil {
			return
		}
		metricFundRecords().SetWithLabel(int64(info.Count), map[string]string{"type": t.String()})
	}
}
