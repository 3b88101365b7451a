// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/builtin/pool/fund"
	"github.com/vechain/stakepool/thor"
)

func initAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		// flags override the config file
		if ctx.IsSet(addrFlag.Name) {
			cfg.Owner = ctx.String(addrFlag.Name)
		}
		if ctx.IsSet(capFlag.Name) {
			cfg.DelegationCap = ctx.String(capFlag.Name)
		}
		if ctx.IsSet(feeFlag.Name) {
			cfg.ServiceFee = ctx.Uint64(feeFlag.Name)
		}
		if ctx.IsSet(minStakeFlag.Name) {
			cfg.MinStake = ctx.String(minStakeFlag.Name)
		}
		if ctx.IsSet(unbondingFlag.Name) {
			cfg.UnbondingWindow = ctx.Uint64(unbondingFlag.Name)
		}
		owner, params, err := cfg.params()
		if err != nil {
			return err
		}
		nodes, err := cfg.nodes()
		if err != nil {
			return err
		}
		if err := p.Initialize(owner, params); err != nil {
			return err
		}
		if len(nodes) > 0 {
			if err := p.SetNodes(owner, nodes); err != nil {
				return err
			}
		}
		fmt.Printf("pool initialized, owner %v\n", owner)
		return nil
	})
}

func depositAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		amount, err := amountArg(ctx, amountFlag)
		if err != nil {
			return err
		}
		return p.Deposit(addr, amount, timeArg(ctx))
	})
}

func withdrawAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		amount, err := amountArg(ctx, amountFlag)
		if err != nil {
			return err
		}
		typ, err := fund.ParseType(ctx.String(typeFlag.Name))
		if err != nil {
			return err
		}
		paid, err := p.Withdraw(addr, typ, amount, maxItems(ctx, cfg))
		if err != nil {
			return err
		}
		fmt.Printf("withdrawn %v\n", paid)
		return nil
	})
}

func unstakeAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		amount, err := amountArg(ctx, amountFlag)
		if err != nil {
			return err
		}
		moved, err := p.Unstake(addr, amount, timeArg(ctx), maxItems(ctx, cfg))
		if err != nil {
			return err
		}
		fmt.Printf("unstaked %v\n", moved)
		return nil
	})
}

func claimAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		paid, err := p.Claim(addr)
		if err != nil {
			return err
		}
		fmt.Printf("claimed %v\n", paid)
		return nil
	})
}

func claimDeferredAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		claimed, err := p.ClaimDeferredPayments(addr, timeArg(ctx), maxItems(ctx, cfg))
		if err != nil {
			return err
		}
		fmt.Printf("claimed %v deferred\n", claimed)
		return nil
	})
}

func stakeAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		amount, err := amountArg(ctx, amountFlag)
		if err != nil {
			return err
		}
		staked, err := p.Stake(addr, amount, timeArg(ctx), maxItems(ctx, cfg))
		if err != nil {
			return err
		}
		fmt.Printf("staked %v\n", staked)
		return nil
	})
}

func setNodesAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		if values := ctx.StringSlice(nodesFlag.Name); len(values) > 0 {
			cfg.Nodes = values
		}
		nodes, err := cfg.nodes()
		if err != nil {
			return err
		}
		return p.SetNodes(addr, nodes)
	})
}

func addRewardsAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		amount, err := amountArg(ctx, amountFlag)
		if err != nil {
			return err
		}
		return p.AddRewards(amount)
	})
}

func modifyCapAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		newCap, err := amountArg(ctx, capFlag)
		if err != nil {
			return err
		}
		return p.StartModifyCap(addr, newCap)
	})
}

func changeFeeAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		if !ctx.IsSet(feeFlag.Name) {
			return errors.Errorf("-%s is required", feeFlag.Name)
		}
		return p.StartChangeFee(addr, ctx.Uint64(feeFlag.Name))
	})
}

func continueAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, cfg *config) error {
		items := maxItems(ctx, cfg)
		if !ctx.Bool(untilIdleFlag.Name) {
			progress, err := p.ContinueOperation(items)
			if err != nil {
				return err
			}
			printProgress(progress)
			return nil
		}

		work, err := estimateWork(p)
		if err != nil {
			return err
		}
		bar := pb.New64(int64(work)).
			SetMaxWidth(90).
			Start()
		defer func() { bar.NotPrint = true }()

		for {
			progress, err := p.ContinueOperation(items)
			if err != nil {
				return err
			}
			bar.Add64(int64(progress.Processed))
			if progress.Idle {
				break
			}
		}
		bar.Set64(bar.Total)
		bar.Finish()
		fmt.Println("global operation done")
		return nil
	})
}

// estimateWork bounds the work left: every user once, then every record of the swapped types.
func estimateWork(p *pool.Pool) (uint64, error) {
	work, err := p.UserCount()
	if err != nil {
		return 0, err
	}
	for _, t := range []fund.Type{fund.Waiting, fund.UnStaked, fund.Active} {
		info, err := p.TotalOf(t)
		if err != nil {
			return 0, err
		}
		work += info.Count
	}
	return work, nil
}

func printProgress(progress *pool.Progress) {
	if progress.Idle {
		fmt.Printf("idle, processed %d\n", progress.Processed)
		return
	}
	fmt.Printf("%v in %v, processed %d\n", progress.Kind, progress.Phase, progress.Processed)
}

func pauseAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		return p.Pause(addr)
	})
}

func unpauseAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		addr, err := addrArg(ctx)
		if err != nil {
			return err
		}
		return p.Unpause(addr)
	})
}

func statusAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		if ctx.IsSet(addrFlag.Name) {
			addr, err := addrArg(ctx)
			if err != nil {
				return err
			}
			return printUser(p, addr)
		}

		params, err := p.Params()
		if err != nil {
			return err
		}
		paused, err := p.Paused()
		if err != nil {
			return err
		}
		users, err := p.UserCount()
		if err != nil {
			return err
		}
		cp, err := p.Checkpoint()
		if err != nil {
			return err
		}
		rewards, err := p.RewardsState()
		if err != nil {
			return err
		}

		fmt.Printf("delegation cap    %v\n", params.DelegationCap)
		fmt.Printf("service fee       %d\n", params.ServiceFee)
		fmt.Printf("min stake         %v\n", params.MinStake)
		fmt.Printf("unbonding window  %ds\n", params.UnbondingWindow)
		fmt.Printf("paused            %v\n", paused)
		fmt.Printf("users             %d\n", users)
		fmt.Printf("rewards received  %v (fees %v)\n", rewards.Received, rewards.Fees)
		for _, t := range fund.Types {
			info, err := p.TotalOf(t)
			if err != nil {
				return err
			}
			fmt.Printf("%-17s %v in %d records\n", t, info.Sum, info.Count)
		}
		fmt.Printf("global operation  %v\n", cp.Phase())
		if ctx.Bool(dumpFlag.Name) {
			spew.Fdump(os.Stdout, cp)
		}
		return nil
	})
}

func printUser(p *pool.Pool, addr thor.Address) error {
	for _, t := range fund.Types {
		balance, err := p.UserBalance(addr, t)
		if err != nil {
			return err
		}
		fmt.Printf("%-17s %v\n", t, balance)
	}
	total, err := p.UserTotal(addr)
	if err != nil {
		return err
	}
	pending, err := p.PendingRewards(addr)
	if err != nil {
		return err
	}
	fmt.Printf("%-17s %v\n", "total", total)
	fmt.Printf("%-17s %v\n", "rewards", pending)
	return nil
}

func verifyAction(ctx *cli.Context) error {
	return withPool(ctx, func(p *pool.Pool, _ *config) error {
		complete, err := p.Verify(ctx.Uint64(limitFlag.Name))
		if err != nil {
			return err
		}
		if !complete {
			fmt.Printf("lists are consistent up to %d records\n", ctx.Uint64(limitFlag.Name))
			return nil
		}
		fmt.Println("lists are consistent")
		return nil
	})
}

