// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gascharger accounts storage work done by pool operations.
package gascharger

import "fmt"

// Storage work units, priced the way contract storage is priced.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
)

// Charger counts storage operations. It never refuses work, the totals are
// reported to the caller as a cost estimate.
type Charger struct {
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	customGas      uint64
	totalGas       uint64
}

func New() *Charger {
	return &Charger{}
}

func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	case gas%SstoreSetGas == 0 && gas > 0:
		c.sstoreSetOps += gas / SstoreSetGas

	case gas%SstoreResetGas == 0 && gas > 0:
		c.sstoreResetOps += gas / SstoreResetGas

	case gas%SloadGas == 0 && gas > 0:
		c.sloadOps += gas / SloadGas

	default:
		c.customGas += gas
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*SstoreResetGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

func (c *Charger) Reset() {
	*c = Charger{}
}
