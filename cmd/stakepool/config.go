// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/thor"
)

// config is the YAML file layout, flags override its values.
type config struct {
	Owner           string   `yaml:"owner"`
	DelegationCap   string   `yaml:"delegation-cap"`
	ServiceFee      uint64   `yaml:"service-fee"`
	MinStake        string   `yaml:"min-stake"`
	UnbondingWindow uint64   `yaml:"unbonding-window"`
	Nodes           []string `yaml:"nodes"`
	MaxItems        uint64   `yaml:"max-items"`
}

func loadConfig(path string) (*config, error) {
	cfg := &config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %v", path)
	}
	return cfg, nil
}

// params returns the owner and the pool parameters of the config.
func (c *config) params() (thor.Address, pool.Params, error) {
	var params pool.Params
	if c.Owner == "" {
		return thor.Address{}, params, errors.New("owner is required")
	}
	owner, err := thor.ParseAddress(c.Owner)
	if err != nil {
		return thor.Address{}, params, errors.Wrap(err, "owner")
	}
	if params.DelegationCap, err = parseAmount(c.DelegationCap); err != nil {
		return thor.Address{}, params, errors.Wrap(err, "delegation cap")
	}
	if params.MinStake, err = parseAmount(c.MinStake); err != nil {
		return thor.Address{}, params, errors.Wrap(err, "min stake")
	}
	params.ServiceFee = c.ServiceFee
	params.UnbondingWindow = c.UnbondingWindow
	return *owner, params, nil
}

func (c *config) nodes() ([]thor.Address, error) {
	nodes := make([]thor.Address, 0, len(c.Nodes))
	for _, s := range c.Nodes {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.Wrapf(err, "node %v", s)
		}
		nodes = append(nodes, *addr)
	}
	return nodes, nil
}

// parseAmount parses a decimal or 0x prefixed hex amount, empty reads as zero.
func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid amount %q", s)
	}
	return v, nil
}
