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
	"github.com/vechain/stakepool/thor"
)

// Progress reports the state of the global operation after a ContinueOperation call.
type Progress struct {
	Kind      globalop.Kind
	Phase     string
	Processed uint64 // work units done by the call
	Idle      bool
}

// ContinueOperation does up to maxItems units of work of the global operation
// in progress. A unit settles one user's rewards or moves one fund record.
// Phase changes and completion cost nothing but only happen while budget is left.
// Each unit is atomic: when one fails it is reverted, the units before it are
// committed and the error is returned. Without an operation in progress the
// call does nothing. A pool that was never initialized has no checkpoint yet
// and is rejected with InvalidState.
func (p *Pool) ContinueOperation(maxItems uint64) (*Progress, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress := &Progress{}
	err := p.run("continue", true, func() error {
		cp, err := p.getParamsAndCheckpoint()
		if err != nil {
			return err
		}
		if cp.IsIdle() {
			return nil
		}
		if err := requireItems(maxItems); err != nil {
			return err
		}
		logger.Debug("continuing global operation", "kind", cp.Kind, "phase", cp.Phase(), "maxItems", maxItems)
		return p.continueOperation(maxItems, progress)
	})

	// report where the operation stands, whatever the outcome
	if cp, cerr := p.getCheckpoint(); cerr == nil {
		progress.Kind = cp.Kind
		progress.Phase = cp.Phase()
		progress.Idle = cp.IsIdle()
	}
	p.state.Discard()
	metricChunkItems().Observe(int64(progress.Processed))
	return progress, err
}

func (p *Pool) getParamsAndCheckpoint() (*globalop.Checkpoint, error) {
	if _, err := p.getParams(); err != nil {
		return nil, err
	}
	return p.getCheckpoint()
}

func (p *Pool) continueOperation(budget uint64, progress *Progress) error {
	for budget > 0 {
		cp, err := p.getCheckpoint()
		if err != nil {
			return err
		}
		if cp.IsIdle() {
			return nil
		}

		if compute := cp.Compute(); compute != nil {
			count, err := p.users.Count()
			if err != nil {
				return err
			}
			if compute.LastID >= count {
				if err := p.unit(func() error { return p.finishCompute(cp) }); err != nil {
					return err
				}
				continue
			}
			if err := p.unit(func() error { return p.computeNext(cp, compute) }); err != nil {
				return err
			}
			budget--
			progress.Processed++
			continue
		}

		// swap phases of a cap change
		from, to, remaining := p.swapOf(cp.ModifyCap)
		if remaining.Sign() == 0 {
			if err := p.unit(func() error { return p.nextStep(cp) }); err != nil {
				return err
			}
			continue
		}
		var touched uint64
		if err := p.unit(func() error {
			moved, n, err := p.ledger.MoveTypeFunds(from, to, remaining, 1, p.refresh)
			if err != nil {
				return err
			}
			touched = n
			remaining.Sub(remaining, moved)
			return p.setCheckpoint(cp)
		}); err != nil {
			return err
		}
		budget--
		progress.Processed += touched
	}
	return nil
}

// unit runs fn inside its own checkpoint, a failing fn leaves no trace.
func (p *Pool) unit(fn func() error) error {
	rev := p.state.NewCheckpoint()
	n := len(p.events)
	if err := fn(); err != nil {
		p.state.RevertTo(rev)
		p.events = p.events[:n]
		return err
	}
	return nil
}

// computeNext settles the rewards of the user after LastID.
func (p *Pool) computeNext(cp *globalop.Checkpoint, compute *globalop.ComputeRewardsData) error {
	id := compute.LastID + 1
	user, err := p.refreshTo(id, compute.RewardsCheckpoint)
	if err != nil {
		return err
	}
	compute.LastID = id
	compute.SumUnclaimed.Add(compute.SumUnclaimed, user.Unclaimed)
	return p.setCheckpoint(cp)
}

func (p *Pool) finishCompute(cp *globalop.Checkpoint) error {
	compute := cp.Compute()
	logger.Info("rewards settled", "kind", cp.Kind, "users", compute.LastID, "unclaimed", compute.SumUnclaimed)

	switch cp.Kind {
	case globalop.ChangeFee:
		params, err := p.getParams()
		if err != nil {
			return err
		}
		old := params.ServiceFee
		params.ServiceFee = cp.ChangeFee.NewFee
		if err := p.params.Set(params); err != nil {
			return errors.Wrap(err, "failed to set params")
		}
		logger.Info("service fee changed", "from", old, "to", params.ServiceFee)
		return p.complete(cp)
	case globalop.ModifyCap:
		return p.nextStep(cp)
	}
	return errors.Errorf("unexpected checkpoint kind %v", cp.Kind)
}

// nextStep moves a cap change to its next phase, or completes it after the last one.
func (p *Pool) nextStep(cp *globalop.Checkpoint) error {
	d := cp.ModifyCap
	switch d.Step.Kind {
	case globalop.ComputeAllRewards:
		d.Step = globalop.Step{Kind: globalop.SwapWaitingToActive}
	case globalop.SwapWaitingToActive:
		d.Step = globalop.Step{Kind: globalop.SwapUnstakedToDeferredPayment}
	case globalop.SwapUnstakedToDeferredPayment:
		d.Step = globalop.Step{Kind: globalop.SwapActiveToDeferredPayment}
	case globalop.SwapActiveToDeferredPayment:
		return p.completeModifyCap(cp)
	}
	if err := p.setCheckpoint(cp); err != nil {
		return err
	}
	p.emit(EventPhase, thor.Address{}, nil, cp.Phase())
	metricPhase().Set(phaseValue(cp))
	logger.Info("global operation phase", "kind", cp.Kind, "phase", cp.Phase())
	return nil
}

func (p *Pool) completeModifyCap(cp *globalop.Checkpoint) error {
	d := cp.ModifyCap
	params, err := p.getParams()
	if err != nil {
		return err
	}
	old := params.DelegationCap
	params.DelegationCap = new(big.Int).Set(d.NewCap)
	if err := p.params.Set(params); err != nil {
		return errors.Wrap(err, "failed to set params")
	}

	nodes, err := p.nodes.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get nodes")
	}
	if d.ToUnstake != nil && d.ToUnstake.Sign() > 0 {
		if err := p.authority.Unstake(nodes, d.ToUnstake); err != nil {
			return errors.Wrap(err, "authority unstake")
		}
	}
	if d.ToStake != nil && d.ToStake.Sign() > 0 {
		if err := p.authority.Stake(nodes, d.ToStake); err != nil {
			return errors.Wrap(err, "authority stake")
		}
	}
	logger.Info("delegation cap changed", "from", old, "to", params.DelegationCap)
	return p.complete(cp)
}

func (p *Pool) complete(cp *globalop.Checkpoint) error {
	if err := p.setCheckpoint(&globalop.Checkpoint{}); err != nil {
		return err
	}
	p.emit(EventOperationDone, thor.Address{}, nil, cp.Kind.String())
	p.updateFundMeters()
	metricPhase().Set(0)
	logger.Info("global operation done", "kind", cp.Kind)
	return nil
}

// swapOf returns the fund movement of the current swap phase and the amount left to move.
func (p *Pool) swapOf(d *globalop.ModifyCapData) (fund.Type, fund.Desc, *big.Int) {
	switch d.Step.Kind {
	case globalop.SwapWaitingToActive:
		return fund.Waiting, fund.NewDesc(fund.Active, 0), d.RemainingWaitingToActive
	case globalop.SwapUnstakedToDeferredPayment:
		return fund.UnStaked, fund.NewDesc(fund.DeferredPayment, p.clock()), d.RemainingUnstakedToDeferred
	default:
		return fund.Active, fund.NewDesc(fund.DeferredPayment, p.clock()), d.RemainingActiveToDeferred
	}
}

// phaseValue maps the checkpoint to the phase gauge: 0 when idle, 1 while
// settling rewards, then one value per swap phase.
func phaseValue(cp *globalop.Checkpoint) int64 {
	switch {
	case cp.IsIdle():
		return 0
	case cp.Kind == globalop.ModifyCap:
		return int64(cp.ModifyCap.Step.Kind) + 1
	default:
		return 1
	}
}
