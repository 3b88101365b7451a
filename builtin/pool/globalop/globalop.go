// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalop defines the persisted progress of administrative operations
// that run over many calls.
package globalop

import (
	"fmt"
	"math/big"
)

// Kind is the operation in progress.
type Kind uint8

const (
	None Kind = iota
	ModifyCap
	ChangeFee
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case ModifyCap:
		return "modify-cap"
	case ChangeFee:
		return "change-fee"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// StepKind is the phase of a cap change.
type StepKind uint8

const (
	ComputeAllRewards StepKind = iota
	SwapWaitingToActive
	SwapUnstakedToDeferredPayment
	SwapActiveToDeferredPayment
)

func (s StepKind) String() string {
	switch s {
	case ComputeAllRewards:
		return "compute-all-rewards"
	case SwapWaitingToActive:
		return "swap-waiting-to-active"
	case SwapUnstakedToDeferredPayment:
		return "swap-unstaked-to-deferred-payment"
	case SwapActiveToDeferredPayment:
		return "swap-active-to-deferred-payment"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// ComputeRewardsData is the resume position of a reward settlement pass over all users.
type ComputeRewardsData struct {
	LastID            uint64   // last settled user id
	SumUnclaimed      *big.Int // unclaimed rewards of the settled users
	RewardsCheckpoint *big.Int // accumulator value users are settled up to
}

func NewComputeRewardsData(checkpoint *big.Int) *ComputeRewardsData {
	return &ComputeRewardsData{
		SumUnclaimed:      new(big.Int),
		RewardsCheckpoint: new(big.Int).Set(checkpoint),
	}
}

// Step is a phase of a cap change, only ComputeAllRewards carries data.
type Step struct {
	Kind    StepKind
	Compute *ComputeRewardsData
}

type ModifyCapData struct {
	NewCap                      *big.Int
	RemainingWaitingToActive    *big.Int
	RemainingUnstakedToDeferred *big.Int
	RemainingActiveToDeferred   *big.Int
	ToStake                     *big.Int // asked from the authority on completion
	ToUnstake                   *big.Int // released to the authority on completion
	Step                        Step
}

type ChangeFeeData struct {
	NewFee         uint64
	ComputeRewards *ComputeRewardsData
}

// Checkpoint is the singleton operation record. The zero value is idle.
type Checkpoint struct {
	Kind      Kind
	ModifyCap *ModifyCapData
	ChangeFee *ChangeFeeData
}

func (c *Checkpoint) IsIdle() bool {
	return c == nil || c.Kind == None
}

// Compute returns the reward settlement progress when the operation is
// settling rewards, nil otherwise.
func (c *Checkpoint) Compute() *ComputeRewardsData {
	switch {
	case c.IsIdle():
		return nil
	case c.Kind == ModifyCap && c.ModifyCap.Step.Kind == ComputeAllRewards:
		return c.ModifyCap.Step.Compute
	case c.Kind == ChangeFee:
		return c.ChangeFee.ComputeRewards
	}
	return nil
}

// Phase names the current phase.
func (c *Checkpoint) Phase() string {
	switch {
	case c.IsIdle():
		return "idle"
	case c.Kind == ModifyCap:
		return c.ModifyCap.Step.Kind.String()
	default:
		return ComputeAllRewards.String()
	}
}

func (c *Checkpoint) String() string {
	switch {
	case c.IsIdle():
		return "Checkpoint(idle)"
	case c.Kind == ModifyCap:
		d := c.ModifyCap
		return fmt.Sprintf("Checkpoint(%v cap=%v step=%v w2a=%v u2d=%v a2d=%v)",
			c.Kind, d.NewCap, d.Step.Kind, d.RemainingWaitingToActive, d.RemainingUnstakedToDeferred, d.RemainingActiveToDeferred)
	default:
		return fmt.Sprintf("Checkpoint(%v fee=%d last=%d)", c.Kind, c.ChangeFee.NewFee, c.ChangeFee.ComputeRewards.LastID)
	}
}

// NewModifyCap starts a cap change settling rewards up to checkpoint, the swap amounts come from CapSwaps.
func NewModifyCap(newCap *big.Int, swaps *Swaps, checkpoint *big.Int) *Checkpoint {
	return &Checkpoint{
		Kind: ModifyCap,
		ModifyCap: &ModifyCapData{
			NewCap:                      new(big.Int).Set(newCap),
			RemainingWaitingToActive:    swaps.WaitingToActive,
			RemainingUnstakedToDeferred: swaps.UnstakedToDeferred,
			RemainingActiveToDeferred:   swaps.ActiveToDeferred,
			ToStake:                     swaps.ToStake,
			ToUnstake:                   swaps.ToUnstake,
			Step:                        Step{Kind: ComputeAllRewards, Compute: NewComputeRewardsData(checkpoint)},
		},
	}
}

func NewChangeFee(newFee uint64, checkpoint *big.Int) *Checkpoint {
	return &Checkpoint{
		Kind: ChangeFee,
		ChangeFee: &ChangeFeeData{
			NewFee:         newFee,
			ComputeRewards: NewComputeRewardsData(checkpoint),
		},
	}
}

// Swaps are the fund movements that bring active plus unstaked funds under a cap.
type Swaps struct {
	WaitingToActive    *big.Int
	UnstakedToDeferred *big.Int
	ActiveToDeferred   *big.Int
	ToStake            *big.Int
	ToUnstake          *big.Int
}

// CapSwaps computes the swaps for a new cap. Funds held by the authority are
// active plus unstaked. Holdings over the cap release unstaked funds first,
// then active ones. Free room and the place of still unstaked funds are then
// filled from waiting funds, each waiting unit replacing an unstaked unit
// releases that unit. The net change of holdings is what the authority is
// asked to stake or unstake.
func CapSwaps(newCap, active, waiting, unstaked *big.Int) *Swaps {
	occupied := new(big.Int).Add(active, unstaked)

	over := new(big.Int).Sub(occupied, newCap)
	if over.Sign() < 0 {
		over.SetInt64(0)
	}
	released := minInt(unstaked, over)
	a2d := new(big.Int).Sub(over, released)

	room := new(big.Int).Sub(newCap, occupied)
	if room.Sign() < 0 {
		room.SetInt64(0)
	}
	unstakedLeft := new(big.Int).Sub(unstaked, released)
	w2a := minInt(waiting, new(big.Int).Add(room, unstakedLeft))

	replaced := new(big.Int).Sub(w2a, room)
	if replaced.Sign() < 0 {
		replaced.SetInt64(0)
	}

	return &Swaps{
		WaitingToActive:    w2a,
		UnstakedToDeferred: new(big.Int).Add(released, replaced),
		ActiveToDeferred:   a2d,
		ToStake:            new(big.Int).Sub(w2a, replaced),
		ToUnstake:          over,
	}
}

func minInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
