// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fund

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Type is the lifecycle stage of a fund.
type Type uint8

const (
	WithdrawOnly Type = iota
	Waiting
	Active
	UnStaked
	DeferredPayment
)

// Types lists every fund type in discriminant order.
var Types = []Type{WithdrawOnly, Waiting, Active, UnStaked, DeferredPayment}

func (t Type) Valid() bool {
	return t <= DeferredPayment
}

// IsTimed reports whether funds of this type carry a creation time, their lists are FIFO queues.
func (t Type) IsTimed() bool {
	return t == Waiting || t == UnStaked || t == DeferredPayment
}

// AllowCoalesce reports whether a deposit may merge into an existing record.
func (t Type) AllowCoalesce() bool {
	return t == WithdrawOnly || t == DeferredPayment
}

// IsStake reports whether funds of this type are held by the staking authority or queued for it.
func (t Type) IsStake() bool {
	return t == Waiting || t == Active || t == UnStaked
}

// Bytes implements solidity.Key.
func (t Type) Bytes() []byte {
	return []byte{byte(t)}
}

func (t Type) String() string {
	switch t {
	case WithdrawOnly:
		return "withdraw-only"
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	case UnStaked:
		return "unstaked"
	case DeferredPayment:
		return "deferred-payment"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// ParseType parses the name returned by Type.String.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown fund type %q", s)
}

// Desc describes a fund record: its type and, for timed types, its creation time.
type Desc struct {
	Type    Type
	Created uint64
}

// NewDesc builds the desc of a type, the timestamp is dropped for untimed types.
func NewDesc(t Type, created uint64) Desc {
	if !t.IsTimed() {
		created = 0
	}
	return Desc{Type: t, Created: created}
}

func (d Desc) String() string {
	if d.Type.IsTimed() {
		return fmt.Sprintf("%v@%d", d.Type, d.Created)
	}
	return d.Type.String()
}

// MarshalBinary returns the discriminant byte, followed by the big endian
// creation time for timed types.
func (d Desc) MarshalBinary() ([]byte, error) {
	if !d.Type.Valid() {
		return nil, errors.Errorf("invalid fund type %d", d.Type)
	}
	if !d.Type.IsTimed() {
		return []byte{byte(d.Type)}, nil
	}
	b := make([]byte, 9)
	b[0] = byte(d.Type)
	binary.BigEndian.PutUint64(b[1:], d.Created)
	return b, nil
}

// UnmarshalBinary rejects empty input, there is no implicit default variant.
func (d *Desc) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return errors.New("empty fund desc")
	}
	t := Type(b[0])
	if !t.Valid() {
		return errors.Errorf("invalid fund type %d", b[0])
	}
	if !t.IsTimed() {
		if len(b) != 1 {
			return errors.Errorf("fund desc %v: unexpected payload", t)
		}
		*d = Desc{Type: t}
		return nil
	}
	if len(b) != 9 {
		return errors.Errorf("fund desc %v: want 9 bytes, got %d", t, len(b))
	}
	*d = Desc{Type: t, Created: binary.BigEndian.Uint64(b[1:])}
	return nil
}

// EncodeRLP implements rlp.Encoder, the desc is a byte string.
func (d Desc) EncodeRLP(w io.Writer) error {
	b, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	return rlp.Encode(w, b)
}

// DecodeRLP implements rlp.Decoder.
func (d *Desc) DecodeRLP(s *rlp.Stream) error {
	b, err := s.Bytes()
	if err != nil {
		return err
	}
	return d.UnmarshalBinary(b)
}

// Item is a fund record. It is a node of its type list and of its
// (user, type) list. Id 0 is the "no node" sentinel.
type Item struct {
	Desc     Desc
	UserID   uint64
	Balance  *big.Int
	TypeNext uint64
	TypePrev uint64
	UserNext uint64
	UserPrev uint64
}

// ListInfo is the aggregate of a list.
type ListInfo struct {
	Head  uint64
	Tail  uint64
	Count uint64
	Sum   *big.Int
}

func (l *ListInfo) IsEmpty() bool {
	return l.Count == 0
}

func newListInfo() *ListInfo {
	return &ListInfo{Sum: new(big.Int)}
}
