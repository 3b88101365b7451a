// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/log"

	"github.com/vechain/stakepool/thor"
)

// Authority registers pool stake with the validator nodes. A returned error
// rejects the calling operation, funds stay where they were.
type Authority interface {
	Stake(nodes []thor.Address, amount *big.Int) error
	Unstake(nodes []thor.Address, amount *big.Int) error
}

// Transferer sends settlement currency out of the pool.
type Transferer interface {
	Send(to thor.Address, amount *big.Int) error
}

// EventSink receives the events of committed calls.
type EventSink interface {
	Emit(ev Event)
}

// Event names.
const (
	EventDeposit         = "deposit"
	EventWithdraw        = "withdraw"
	EventUnstake         = "unstake"
	EventClaim           = "claim"
	EventDeferredClaimed = "deferred-claimed"
	EventStake           = "stake"
	EventRewards         = "rewards"
	EventPhase           = "phase"
	EventOperationDone   = "operation-done"
)

type Event struct {
	Name   string
	User   thor.Address
	Amount *big.Int
	Detail string
}

type noopAuthority struct{}

func (noopAuthority) Stake([]thor.Address, *big.Int) error   { return nil }
func (noopAuthority) Unstake([]thor.Address, *big.Int) error { return nil }

type noopTransferer struct{}

func (noopTransferer) Send(thor.Address, *big.Int) error { return nil }

type logSink struct{}

func (logSink) Emit(ev Event) {
	logger.Debug("event", "name", ev.Name, "user", ev.User, "amount", ev.Amount, "detail", ev.Detail)
}

// LogAuthority accepts every request and logs it.
type LogAuthority struct {
	Logger log.Logger
}

func (a *LogAuthority) Stake(nodes []thor.Address, amount *big.Int) error {
	a.Logger.Info("stake requested", "nodes", len(nodes), "amount", amount)
	return nil
}

func (a *LogAuthority) Unstake(nodes []thor.Address, amount *big.Int) error {
	a.Logger.Info("unstake requested", "nodes", len(nodes), "amount", amount)
	return nil
}
