// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why a call was rejected.
type Kind uint8

const (
	InvalidStateKind Kind = iota + 1
	UnauthorizedKind
	OutOfRangeKind
	InconsistentKind
	NotFoundKind
)

func (k Kind) String() string {
	switch k {
	case InvalidStateKind:
		return "invalid state"
	case UnauthorizedKind:
		return "unauthorized"
	case OutOfRangeKind:
		return "out of range"
	case InconsistentKind:
		return "inconsistent"
	case NotFoundKind:
		return "not found"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrRevert is a rejection of a call. State touched by the call is reverted
// when it is returned.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{kind: kind, message: message}
}

func (e *ErrRevert) Error() string {
	return e.kind.String() + ": " + e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

func InvalidState(format string, args ...any) *ErrRevert {
	return New(InvalidStateKind, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) *ErrRevert {
	return New(UnauthorizedKind, fmt.Sprintf(format, args...))
}

func OutOfRange(format string, args ...any) *ErrRevert {
	return New(OutOfRangeKind, fmt.Sprintf(format, args...))
}

// Inconsistent reports a broken ledger invariant, never a bad input.
func Inconsistent(format string, args ...any) *ErrRevert {
	return New(InconsistentKind, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *ErrRevert {
	return New(NotFoundKind, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the revert in err's chain, 0 if there is none.
func KindOf(err error) Kind {
	var re *ErrRevert
	if errors.As(err, &re) && re != nil {
		return re.kind
	}
	return 0
}

// Is reports whether err carries a revert of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *ErrRevert
	if errors.As(e, &re) {
		return re != nil
	}
	return false
}
