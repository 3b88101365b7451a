// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/builtin/gascharger"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/state"
)

// newTestContext returns a fresh Context with in-memory DB and a new charger.
func newTestContext(t *testing.T) (*Context, *gascharger.Charger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, 0)
	require.NoError(t, err)

	charger := gascharger.New()
	return NewContext(st, charger.Charge), charger
}
