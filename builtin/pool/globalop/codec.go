// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package globalop

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Encode returns the persisted form of c: nothing for an idle checkpoint,
// otherwise the kind byte followed by the rlp encoded operation data.
func Encode(c *Checkpoint) ([]byte, error) {
	if c.IsIdle() {
		return nil, nil
	}
	var payload any
	switch c.Kind {
	case ModifyCap:
		if c.ModifyCap == nil {
			return nil, errors.New("modify-cap checkpoint without data")
		}
		payload = c.ModifyCap
	case ChangeFee:
		if c.ChangeFee == nil || c.ChangeFee.ComputeRewards == nil {
			return nil, errors.New("change-fee checkpoint without data")
		}
		payload = c.ChangeFee
	default:
		return nil, errors.Errorf("unknown checkpoint kind %d", c.Kind)
	}
	data, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode checkpoint")
	}
	return append([]byte{byte(c.Kind)}, data...), nil
}

// Decode parses the output of Encode. Only empty input decodes to idle.
func Decode(b []byte) (*Checkpoint, error) {
	if len(b) == 0 {
		return &Checkpoint{}, nil
	}
	switch kind := Kind(b[0]); kind {
	case ModifyCap:
		var d ModifyCapData
		if err := rlp.DecodeBytes(b[1:], &d); err != nil {
			return nil, errors.Wrap(err, "decode modify-cap checkpoint")
		}
		return &Checkpoint{Kind: kind, ModifyCap: &d}, nil
	case ChangeFee:
		var d ChangeFeeData
		if err := rlp.DecodeBytes(b[1:], &d); err != nil {
			return nil, errors.Wrap(err, "decode change-fee checkpoint")
		}
		if d.ComputeRewards == nil {
			return nil, errors.New("decode change-fee checkpoint: missing compute data")
		}
		return &Checkpoint{Kind: kind, ChangeFee: &d}, nil
	default:
		return nil, errors.Errorf("invalid checkpoint kind %d", b[0])
	}
}

// EncodeRLP implements rlp.Encoder. The step is a byte string holding the step
// byte, followed by the rlp encoded settlement data for ComputeAllRewards.
func (s Step) EncodeRLP(w io.Writer) error {
	b := []byte{byte(s.Kind)}
	if s.Kind == ComputeAllRewards {
		if s.Compute == nil {
			return errors.New("compute step without data")
		}
		data, err := rlp.EncodeToBytes(s.Compute)
		if err != nil {
			return err
		}
		b = append(b, data...)
	}
	return rlp.Encode(w, b)
}

// DecodeRLP implements rlp.Decoder.
func (s *Step) DecodeRLP(st *rlp.Stream) error {
	b, err := st.Bytes()
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return errors.New("empty step")
	}
	kind := StepKind(b[0])
	switch kind {
	case ComputeAllRewards:
		var d ComputeRewardsData
		if err := rlp.DecodeBytes(b[1:], &d); err != nil {
			return errors.Wrap(err, "decode compute step")
		}
		*s = Step{Kind: kind, Compute: &d}
	case SwapWaitingToActive, SwapUnstakedToDeferredPayment, SwapActiveToDeferredPayment:
		if len(b) != 1 {
			return errors.Errorf("step %v: unexpected payload", kind)
		}
		*s = Step{Kind: kind}
	default:
		return errors.Errorf("invalid step %d", b[0])
	}
	return nil
}
