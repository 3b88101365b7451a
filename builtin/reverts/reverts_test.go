// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		err  *ErrRevert
		kind Kind
		msg  string
	}{
		{InvalidState("paused"), InvalidStateKind, "invalid state: paused"},
		{Unauthorized("not owner"), UnauthorizedKind, "unauthorized: not owner"},
		{OutOfRange("amount %d", 5), OutOfRangeKind, "out of range: amount 5"},
		{Inconsistent("sum"), InconsistentKind, "inconsistent: sum"},
		{NotFound("user"), NotFoundKind, "not found: user"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.msg, tt.err.Error())
		assert.Equal(t, tt.kind, KindOf(tt.err))
		assert.True(t, Is(tt.err, tt.kind))
		assert.True(t, IsRevertErr(tt.err))
	}
}

func TestWrapped(t *testing.T) {
	err := errors.Wrap(OutOfRange("too much"), "withdraw")
	assert.True(t, Is(err, OutOfRangeKind))
	assert.True(t, IsRevertErr(err))

	err = fmt.Errorf("chunk: %w", InvalidState("busy"))
	assert.Equal(t, InvalidStateKind, KindOf(err))
}

func TestNotRevert(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr("string"))
	assert.False(t, IsRevertErr(errors.New("io")))
	assert.Equal(t, Kind(0), KindOf(errors.New("io")))
	assert.Equal(t, "kind(9)", Kind(9).String())
}
