// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/builtin/reverts"
	"github.com/vechain/stakepool/thor"
)

// Deposit queues amount for staking on behalf of addr, registering the address
// when it is new. ts is the deposit time.
func (p *Pool) Deposit(addr thor.Address, amount *big.Int, ts uint64) error {
	return p.exec("deposit", func() error {
		logger.Debug("depositing", "user", addr, "amount", amount)

		params, err := p.requireUserOp()
		if err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.OutOfRange("deposit must be positive")
		}
		if amount.Cmp(params.MinStake) < 0 {
			return reverts.OutOfRange("deposit %v is below min stake %v", amount, params.MinStake)
		}
		acc, err := p.rewards.Accumulator()
		if err != nil {
			return err
		}
		id, created, err := p.users.GetOrCreate(addr, acc)
		if err != nil {
			return err
		}
		if _, err := p.ledger.Append(id, fund.NewDesc(fund.Waiting, ts), amount); err != nil {
			return err
		}
		p.emit(EventDeposit, addr, amount, "")
		p.updateFundMeters()

		logger.Info("deposited", "user", addr, "id", id, "new", created, "amount", amount)
		return nil
	})
}

// Withdraw pays out up to amount of the caller's withdrawable or waiting funds,
// oldest first, touching at most maxItems records. It returns the amount paid.
func (p *Pool) Withdraw(addr thor.Address, typ fund.Type, amount *big.Int, maxItems uint64) (*big.Int, error) {
	var paid *big.Int
	err := p.exec("withdraw", func() error {
		logger.Debug("withdrawing", "user", addr, "type", typ, "amount", amount)

		if _, err := p.requireUserOp(); err != nil {
			return err
		}
		if typ != fund.WithdrawOnly && typ != fund.Waiting {
			return reverts.InvalidState("cannot withdraw %v funds", typ)
		}
		if err := requireItems(maxItems); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.OutOfRange("withdrawal must be positive")
		}
		id, err := p.requireUser(addr)
		if err != nil {
			return err
		}
		drained, touched, err := p.ledger.DrainUserFunds(id, typ, amount, maxItems)
		if err != nil {
			return err
		}
		if err := p.transferer.Send(addr, drained); err != nil {
			return errors.Wrap(err, "send withdrawal")
		}
		p.emit(EventWithdraw, addr, drained, typ.String())
		p.updateFundMeters()

		logger.Info("withdrawn", "user", addr, "type", typ, "amount", drained, "records", touched)
		paid = drained
		return nil
	})
	return paid, err
}

// Unstake moves up to amount of the caller's active funds to unstaked funds
// created at ts. It returns the moved amount.
func (p *Pool) Unstake(addr thor.Address, amount *big.Int, ts uint64, maxItems uint64) (*big.Int, error) {
	var moved *big.Int
	err := p.exec("unstake", func() error {
		logger.Debug("unstaking", "user", addr, "amount", amount)

		if _, err := p.requireUserOp(); err != nil {
			return err
		}
		if err := requireItems(maxItems); err != nil {
			return err
		}
		if amount == nil || amount.Sign() <= 0 {
			return reverts.OutOfRange("unstake amount must be positive")
		}
		id, err := p.requireUser(addr)
		if err != nil {
			return err
		}
		if err := p.refresh(id); err != nil {
			return err
		}
		m, _, err := p.ledger.MoveUserFunds(id, fund.Active, fund.NewDesc(fund.UnStaked, ts), amount, maxItems, nil)
		if err != nil {
			return err
		}
		p.emit(EventUnstake, addr, m, "")
		p.updateFundMeters()

		logger.Info("unstaked", "user", addr, "amount", m)
		moved = m
		return nil
	})
	return moved, err
}

// ClaimDeferredPayments turns the caller's deferred payments that waited the
// unbonding window at ts into withdrawable funds. It returns the claimed amount.
func (p *Pool) ClaimDeferredPayments(addr thor.Address, ts uint64, maxItems uint64) (*big.Int, error) {
	var claimed *big.Int
	err := p.exec("claim-deferred", func() error {
		params, err := p.requireUserOp()
		if err != nil {
			return err
		}
		if err := requireItems(maxItems); err != nil {
			return err
		}
		id, err := p.requireUser(addr)
		if err != nil {
			return err
		}

		// deferred payments are queued by creation time, matured ones are at the front
		matured := new(big.Int)
		it, err := p.ledger.IterateUser(id, fund.DeferredPayment)
		if err != nil {
			return err
		}
		for n := uint64(0); n < maxItems && it.Next(); n++ {
			item := it.Item()
			if item.Desc.Created+params.UnbondingWindow > ts {
				break
			}
			matured.Add(matured, item.Balance)
		}
		if err := it.Error(); err != nil {
			return err
		}

		m, _, err := p.ledger.MoveUserFunds(id, fund.DeferredPayment, fund.NewDesc(fund.WithdrawOnly, 0), matured, maxItems, nil)
		if err != nil {
			return err
		}
		if m.Sign() > 0 {
			p.emit(EventDeferredClaimed, addr, m, "")
			p.updateFundMeters()
		}
		logger.Info("deferred payments claimed", "user", addr, "amount", m)
		claimed = m
		return nil
	})
	return claimed, err
}

// Claim pays the caller's unclaimed rewards. It returns the paid amount.
func (p *Pool) Claim(addr thor.Address) (*big.Int, error) {
	var paid *big.Int
	err := p.exec("claim", func() error {
		if _, err := p.requireUserOp(); err != nil {
			return err
		}
		id, err := p.requireUser(addr)
		if err != nil {
			return err
		}
		if err := p.refresh(id); err != nil {
			return err
		}
		user, err := p.users.Get(id)
		if err != nil {
			return err
		}
		amount := user.Unclaimed
		if amount.Sign() > 0 {
			user.Unclaimed = new(big.Int)
			if err := p.users.Set(id, user); err != nil {
				return err
			}
			if err := p.transferer.Send(addr, amount); err != nil {
				return errors.Wrap(err, "send rewards")
			}
			p.emit(EventClaim, addr, amount, "")
		}
		logger.Info("rewards claimed", "user", addr, "amount", amount)
		paid = amount
		return nil
	})
	return paid, err
}
