// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool/users"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/builtin/solidity"
)

// MaxServiceFee is the fee denominator, a fee of MaxServiceFee takes all rewards.
const MaxServiceFee = 10000

// Scale is the fixed point multiplier of the accumulator.
var Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(36), nil)

var (
	slotAccumulator = []byte("rewards-acc")
	slotReceived    = []byte("rewards-received")
	slotFees        = []byte("rewards-fees")
)

// State is the global reward state.
type State struct {
	Accumulator *big.Int // rewards per unit of active stake, scaled
	Carry       *big.Int // scaled remainder of the last distribution
	Received    *big.Int // total reward currency received
	Fees        *big.Int // total taken as service fee, including undistributable rewards
}

// accumulator is the part of State rewritten by every distribution.
type accumulator struct {
	Value *big.Int
	Carry *big.Int
}

type Rewards struct {
	acc      *solidity.Raw[*accumulator]
	received *solidity.Uint256
	fees     *solidity.Uint256
}

func New(sctx *solidity.Context) *Rewards {
	return &Rewards{
		acc:      solidity.NewRaw[*accumulator](sctx, slotAccumulator),
		received: solidity.NewUint256(sctx, slotReceived),
		fees:     solidity.NewUint256(sctx, slotFees),
	}
}

func (r *Rewards) getAccumulator() (*accumulator, error) {
	a, err := r.acc.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward accumulator")
	}
	if a == nil {
		a = &accumulator{}
	}
	if a.Value == nil {
		a.Value = new(big.Int)
	}
	if a.Carry == nil {
		a.Carry = new(big.Int)
	}
	return a, nil
}

func (r *Rewards) State() (*State, error) {
	a, err := r.getAccumulator()
	if err != nil {
		return nil, err
	}
	received, err := r.received.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rewards received")
	}
	fees, err := r.fees.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rewards fees")
	}
	return &State{Accumulator: a.Value, Carry: a.Carry, Received: received, Fees: fees}, nil
}

// Accumulator returns the current reward per unit of active stake.
func (r *Rewards) Accumulator() (*big.Int, error) {
	a, err := r.getAccumulator()
	if err != nil {
		return nil, err
	}
	return a.Value, nil
}

// Distribute accounts amount of reward currency against totalActive stake.
// The fee share, or everything when nothing is active, is returned for the
// caller to credit to the pool owner. The rest raises the accumulator, the
// part that does not divide evenly is carried to the next distribution.
func (r *Rewards) Distribute(amount, totalActive *big.Int, fee uint64) (ownerShare *big.Int, err error) {
	if amount.Sign() < 0 {
		return nil, reverts.OutOfRange("negative reward")
	}
	if fee > MaxServiceFee {
		return nil, reverts.OutOfRange("service fee %d exceeds %d", fee, MaxServiceFee)
	}
	if err := r.received.Add(amount); err != nil {
		return nil, errors.Wrap(err, "failed to add rewards received")
	}

	if totalActive.Sign() <= 0 {
		ownerShare = new(big.Int).Set(amount)
	} else {
		ownerShare = new(big.Int).Mul(amount, new(big.Int).SetUint64(fee))
		ownerShare.Quo(ownerShare, big.NewInt(MaxServiceFee))

		a, err := r.getAccumulator()
		if err != nil {
			return nil, err
		}
		scaled := new(big.Int).Sub(amount, ownerShare)
		scaled.Mul(scaled, Scale)
		scaled.Add(scaled, a.Carry)

		inc, carry := new(big.Int).QuoRem(scaled, totalActive, new(big.Int))
		a.Value.Add(a.Value, inc)
		a.Carry = carry
		if err := r.acc.Set(a); err != nil {
			return nil, errors.Wrap(err, "failed to set reward accumulator")
		}
	}
	if err := r.fees.Add(ownerShare); err != nil {
		return nil, errors.Wrap(err, "failed to add rewards fees")
	}
	return ownerShare, nil
}

// Earned returns the rewards of stake between two accumulator values,
// rounded down. Each settlement leaves less than one unit behind, so what users
// are credited plus fees falls short of what was received by less than one unit
// per settlement and never exceeds it. The shortfall stays in the pool balance.
func Earned(from, to, stake *big.Int) *big.Int {
	delta := new(big.Int).Sub(to, from)
	if delta.Sign() <= 0 || stake.Sign() <= 0 {
		return new(big.Int)
	}
	delta.Mul(delta, stake)
	return delta.Quo(delta, Scale)
}

// Settle credits the user with what stake earned since the user's checkpoint
// and advances the checkpoint to upTo. Returns the credited amount.
// A checkpoint at or beyond upTo is left untouched.
func Settle(user *users.User, stake, upTo *big.Int) *big.Int {
	if user.RewardCheckpoint.Cmp(upTo) >= 0 {
		return new(big.Int)
	}
	earned := Earned(user.RewardCheckpoint, upTo, stake)
	user.Unclaimed.Add(user.Unclaimed, earned)
	user.RewardCheckpoint = new(big.Int).Set(upTo)
	return earned
}
