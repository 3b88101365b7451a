// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/stakepool/builtin/gascharger"
	"github.com/vechain/stakepool/state"
)

type UseGasFunc func(gas uint64)

// Context binds storage slots to a state and a gas charger.
type Context struct {
	state   *state.State
	charger UseGasFunc
}

func NewContext(state *state.State, charger UseGasFunc) *Context {
	return &Context{
		state:   state,
		charger: charger,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

// load reads a slot and charges one SLOAD per 32 byte word, absent slots cost a single word.
func (c *Context) load(key []byte) ([]byte, error) {
	raw, err := c.state.Get(key)
	if err != nil {
		return nil, err
	}
	c.UseGas(toWordSize(len(raw)) * gascharger.SloadGas)
	return raw, nil
}

// store writes a slot. Writing to an empty slot is charged as SSTORE_SET, otherwise SSTORE_RESET.
// Empty values clear the slot.
func (c *Context) store(key, val []byte) error {
	prev, err := c.state.Get(key)
	if err != nil {
		return err
	}
	words := toWordSize(len(val))
	if len(prev) == 0 && len(val) > 0 {
		c.UseGas(words * gascharger.SstoreSetGas)
	} else {
		c.UseGas(words * gascharger.SstoreResetGas)
	}
	c.state.Set(key, val)
	return nil
}

func toWordSize(length int) uint64 {
	if length <= 32 {
		return 1
	}
	return (uint64(length) + 31) / 32
}
