// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the pool database",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3, // info
		Usage: "log verbosity (0-5)",
	}
	maxItemsFlag = cli.Uint64Flag{
		Name:  "max-items",
		Value: 100,
		Usage: "maximum records or users touched by one call",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 4096,
		Usage: "number of ledger values cached in memory",
	}
	printMetricsFlag = cli.BoolFlag{
		Name:  "print-metrics",
		Usage: "print gathered metrics in prometheus text format on exit",
	}

	addrFlag = cli.StringFlag{
		Name:  "addr",
		Usage: "address of the caller",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "amount in wei, decimal or 0x prefixed hex",
	}
	typeFlag = cli.StringFlag{
		Name:  "type",
		Value: "withdraw-only",
		Usage: "fund type (withdraw-only|waiting)",
	}
	timeFlag = cli.Uint64Flag{
		Name:  "time",
		Usage: "timestamp of the call in unix seconds, now if unset",
	}
	capFlag = cli.StringFlag{
		Name:  "cap",
		Usage: "delegation cap in wei",
	}
	feeFlag = cli.Uint64Flag{
		Name:  "fee",
		Usage: "service fee out of 10000",
	}
	minStakeFlag = cli.StringFlag{
		Name:  "min-stake",
		Usage: "smallest deposit in wei",
	}
	unbondingFlag = cli.Uint64Flag{
		Name:  "unbonding-window",
		Usage: "seconds a deferred payment waits before it can be claimed",
	}
	nodesFlag = cli.StringSliceFlag{
		Name:  "node",
		Usage: "validator node address, can be repeated",
	}
	untilIdleFlag = cli.BoolFlag{
		Name:  "until-idle",
		Usage: "keep continuing until the global operation is done",
	}
	dumpFlag = cli.BoolFlag{
		Name:  "dump",
		Usage: "dump the global operation checkpoint",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100000,
		Usage: "maximum records walked per list",
	}
)
