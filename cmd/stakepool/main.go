// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakepool",
		Usage:     "Pooled stake delegation ledger",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			configFlag,
			verbosityFlag,
			maxItemsFlag,
			cacheFlag,
			printMetricsFlag,
		},
		Before: beforeAction,
		After:  afterAction,
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "initialize the pool, parameters come from the config file and flags",
				Flags:  []cli.Flag{addrFlag, capFlag, feeFlag, minStakeFlag, unbondingFlag},
				Action: initAction,
			},
			{
				Name:   "deposit",
				Usage:  "deposit funds waiting to be staked",
				Flags:  []cli.Flag{addrFlag, amountFlag, timeFlag},
				Action: depositAction,
			},
			{
				Name:   "withdraw",
				Usage:  "withdraw waiting or withdrawable funds",
				Flags:  []cli.Flag{addrFlag, amountFlag, typeFlag},
				Action: withdrawAction,
			},
			{
				Name:   "unstake",
				Usage:  "unstake active funds",
				Flags:  []cli.Flag{addrFlag, amountFlag, timeFlag},
				Action: unstakeAction,
			},
			{
				Name:   "claim",
				Usage:  "claim rewards",
				Flags:  []cli.Flag{addrFlag},
				Action: claimAction,
			},
			{
				Name:   "claim-deferred",
				Usage:  "turn matured deferred payments into withdrawable funds",
				Flags:  []cli.Flag{addrFlag, timeFlag},
				Action: claimDeferredAction,
			},
			{
				Name:   "stake",
				Usage:  "stake waiting funds (owner only)",
				Flags:  []cli.Flag{addrFlag, amountFlag, timeFlag},
				Action: stakeAction,
			},
			{
				Name:   "set-nodes",
				Usage:  "set the validator nodes (owner only)",
				Flags:  []cli.Flag{addrFlag, nodesFlag},
				Action: setNodesAction,
			},
			{
				Name:   "add-rewards",
				Usage:  "account rewards received by the pool",
				Flags:  []cli.Flag{amountFlag},
				Action: addRewardsAction,
			},
			{
				Name:   "modify-cap",
				Usage:  "start changing the delegation cap (owner only)",
				Flags:  []cli.Flag{addrFlag, capFlag},
				Action: modifyCapAction,
			},
			{
				Name:   "change-fee",
				Usage:  "start changing the service fee (owner only)",
				Flags:  []cli.Flag{addrFlag, feeFlag},
				Action: changeFeeAction,
			},
			{
				Name:   "continue",
				Usage:  "continue the global operation in progress",
				Flags:  []cli.Flag{untilIdleFlag},
				Action: continueAction,
			},
			{
				Name:   "pause",
				Usage:  "pause user fund operations (owner only)",
				Flags:  []cli.Flag{addrFlag},
				Action: pauseAction,
			},
			{
				Name:   "unpause",
				Usage:  "resume user fund operations (owner only)",
				Flags:  []cli.Flag{addrFlag},
				Action: unpauseAction,
			},
			{
				Name:   "status",
				Usage:  "show the pool state, or a user's when addr is set",
				Flags:  []cli.Flag{addrFlag, dumpFlag},
				Action: statusAction,
			},
			{
				Name:   "verify",
				Usage:  "check the fund lists against their aggregates",
				Flags:  []cli.Flag{limitFlag},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
