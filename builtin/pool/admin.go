// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/builtin/pool/globalop"
	"github.com/vechain/stakepool/builtin/pool/rewards"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// Initialize sets the pool parameters and registers owner as user 1. It can run once.
func (p *Pool) Initialize(owner thor.Address, params Params) error {
	return p.exec("initialize", func() error {
		existing, err := p.params.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get params")
		}
		if existing != nil {
			return reverts.InvalidState("pool is already initialized")
		}
		if params.DelegationCap == nil || params.DelegationCap.Sign() < 0 {
			return reverts.OutOfRange("invalid delegation cap")
		}
		if params.MinStake == nil || params.MinStake.Sign() < 0 {
			return reverts.OutOfRange("invalid min stake")
		}
		if params.ServiceFee > rewards.MaxServiceFee {
			return reverts.OutOfRange("service fee %d exceeds %d", params.ServiceFee, rewards.MaxServiceFee)
		}
		id, _, err := p.users.GetOrCreate(owner, new(big.Int))
		if err != nil {
			return err
		}
		if id != OwnerID {
			return reverts.Inconsistent("owner got user id %d", id)
		}
		if err := p.params.Set(&params); err != nil {
			return errors.Wrap(err, "failed to set params")
		}
		if err := p.setCheckpoint(&globalop.Checkpoint{}); err != nil {
			return err
		}
		metricPhase().Set(0)

		logger.Info("pool initialized", "owner", owner, "cap", params.DelegationCap, "fee", params.ServiceFee,
			"minStake", params.MinStake, "unbonding", params.UnbondingWindow)
		return nil
	})
}

// SetNodes sets the validator nodes stake requests are made for.
func (p *Pool) SetNodes(caller thor.Address, nodes []thor.Address) error {
	return p.exec("set-nodes", func() error {
		if _, err := p.requireOwner(caller); err != nil {
			return err
		}
		if err := p.nodes.Set(nodes); err != nil {
			return errors.Wrap(err, "failed to set nodes")
		}
		logger.Info("nodes set", "count", len(nodes))
		return nil
	})
}

// Stake moves up to amount of waiting funds of all users, oldest first, into
// active funds. Free room under the delegation cap is filled first and staked
// with the authority, the rest replaces unstaked funds, which become deferred
// payments created at ts. It returns the staked amount. maxItems bounds the
// waiting and unstaked records touched together.
func (p *Pool) Stake(caller thor.Address, amount *big.Int, ts uint64, maxItems uint64) (*big.Int, error) {
	var staked *big.Int
	err := p.exec("stake", func() error {
		params, err := p.requireOwner(caller)
		if err != nil {
			return err
		}
		if _, err := p.requireUserOp(); err != nil {
			return err
		}
		if err := requireItems(maxItems); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.OutOfRange("stake amount must be positive")
		}

		active, err := p.ledger.TypeInfo(fund.Active)
		if err != nil {
			return err
		}
		unstaked, err := p.ledger.TypeInfo(fund.UnStaked)
		if err != nil {
			return err
		}
		room := new(big.Int).Sub(params.DelegationCap, active.Sum)
		room.Sub(room, unstaked.Sum)
		if room.Sign() < 0 {
			room.SetInt64(0)
		}
		if limit := new(big.Int).Add(room, unstaked.Sum); amount.Cmp(limit) > 0 {
			return reverts.OutOfRange("stake %v exceeds room %v under the delegation cap", amount, limit)
		}

		moved, touched, err := p.ledger.MoveTypeFunds(fund.Waiting, fund.NewDesc(fund.Active, 0), amount, maxItems, p.refresh)
		if err != nil {
			return err
		}
		fill := moved
		if fill.Cmp(room) > 0 {
			fill = room
		}
		replace := new(big.Int).Sub(moved, fill)
		if replace.Sign() > 0 {
			replaced, released, err := p.ledger.MoveTypeFunds(fund.UnStaked, fund.NewDesc(fund.DeferredPayment, ts), replace, maxItems-touched, nil)
			if err != nil {
				return err
			}
			if replaced.Cmp(replace) != 0 {
				return reverts.OutOfRange("max items %d cannot release %v unstaked funds", maxItems, replace)
			}
			touched += released
		}
		if fill.Sign() > 0 {
			nodes, err := p.nodes.Get()
			if err != nil {
				return errors.Wrap(err, "failed to get nodes")
			}
			if err := p.authority.Stake(nodes, fill); err != nil {
				return errors.Wrap(err, "authority stake")
			}
		}
		p.emit(EventStake, caller, moved, "")
		p.updateFundMeters()

		logger.Info("staked", "amount", moved, "filled", fill, "replaced", replace, "records", touched)
		staked = moved
		return nil
	})
	return staked, err
}

// AddRewards accounts reward currency received by the pool. It is accepted
// in every state of an initialized pool.
func (p *Pool) AddRewards(amount *big.Int) error {
	return p.exec("add-rewards", func() error {
		params, err := p.getParams()
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.OutOfRange("reward must be positive")
		}
		active, err := p.ledger.TypeInfo(fund.Active)
		if err != nil {
			return err
		}
		share, err := p.rewards.Distribute(amount, active.Sum, params.ServiceFee)
		if err != nil {
			return err
		}
		if active.Sum.Sign() <= 0 {
			// no active stake to share with, the owner takes it all
			metricUnsharedReward().Add(1)
		}
		if share.Sign() > 0 {
			owner, err := p.users.Get(OwnerID)
			if err != nil {
				return err
			}
			owner.Unclaimed.Add(owner.Unclaimed, share)
			if err := p.users.Set(OwnerID, owner); err != nil {
				return err
			}
		}
		p.emit(EventRewards, thor.Address{}, amount, "")

		logger.Info("rewards added", "amount", amount, "ownerShare", share, "active", active.Sum)
		return nil
	})
}

func (p *Pool) Pause(caller thor.Address) error {
	return p.setPaused("pause", caller, true)
}

func (p *Pool) Unpause(caller thor.Address) error {
	return p.setPaused("unpause", caller, false)
}

func (p *Pool) setPaused(op string, caller thor.Address, paused bool) error {
	return p.exec(op, func() error {
		if _, err := p.requireOwner(caller); err != nil {
			return err
		}
		current, err := p.paused.Get()
		if err != nil {
			return errors.Wrap(err, "failed to get paused")
		}
		if current == paused {
			return reverts.InvalidState("paused is already %v", paused)
		}
		if err := p.paused.Set(paused); err != nil {
			return errors.Wrap(err, "failed to set paused")
		}
		logger.Info("pause changed", "paused", paused)
		return nil
	})
}

// StartModifyCap begins changing the delegation cap. The operation is driven by ContinueOperation.
func (p *Pool) StartModifyCap(caller thor.Address, newCap *big.Int) error {
	return p.exec("start-modify-cap", func() error {
		if newCap == nil || newCap.Sign() < 0 {
			return reverts.OutOfRange("invalid delegation cap")
		}
		return p.start(caller, func(acc *big.Int) (*globalop.Checkpoint, error) {
			totals := make(map[fund.Type]*big.Int)
			for _, t := range []fund.Type{fund.Active, fund.Waiting, fund.UnStaked} {
				info, err := p.ledger.TypeInfo(t)
				if err != nil {
					return nil, err
				}
				totals[t] = info.Sum
			}
			swaps := globalop.CapSwaps(newCap, totals[fund.Active], totals[fund.Waiting], totals[fund.UnStaked])
			logger.Debug("cap swaps", "w2a", swaps.WaitingToActive, "u2d", swaps.UnstakedToDeferred,
				"a2d", swaps.ActiveToDeferred, "stake", swaps.ToStake, "unstake", swaps.ToUnstake)
			return globalop.NewModifyCap(newCap, swaps, acc), nil
		})
	})
}

// StartChangeFee begins changing the service fee. The operation is driven by ContinueOperation.
func (p *Pool) StartChangeFee(caller thor.Address, newFee uint64) error {
	return p.exec("start-change-fee", func() error {
		if newFee > rewards.MaxServiceFee {
			return reverts.OutOfRange("service fee %d exceeds %d", newFee, rewards.MaxServiceFee)
		}
		return p.start(caller, func(acc *big.Int) (*globalop.Checkpoint, error) {
			return globalop.NewChangeFee(newFee, acc), nil
		})
	})
}

func (p *Pool) start(caller thor.Address, build func(acc *big.Int) (*globalop.Checkpoint, error)) error {
	if _, err := p.requireOwner(caller); err != nil {
		return err
	}
	cp, err := p.getCheckpoint()
	if err != nil {
		return err
	}
	if !cp.IsIdle() {
		return reverts.InvalidState("global operation %v in progress", cp.Kind)
	}
	acc, err := p.rewards.Accumulator()
	if err != nil {
		return err
	}
	cp, err = build(acc)
	if err != nil {
		return err
	}
	if err := p.setCheckpoint(cp); err != nil {
		return err
	}
	p.emit(EventPhase, caller, nil, cp.Phase())
	metricPhase().Set(phaseValue(cp))

	logger.Info("global operation started", "kind", cp.Kind, "checkpoint", cp)
	return nil
}
