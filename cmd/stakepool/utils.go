// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/builtin/pool"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/thor"
)

var logger = log.New("pkg", "main")

func beforeAction(ctx *cli.Context) error {
	if ctx.GlobalBool(printMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}
	return initLogger(ctx)
}

func afterAction(ctx *cli.Context) error {
	if ctx.GlobalBool(printMetricsFlag.Name) {
		return metrics.WriteText(os.Stdout)
	}
	return nil
}

func initLogger(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.GlobalUint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(lvl), useColor)
	log.SetDefault(log.NewLogger(handler))

	// package loggers are bound when created, rebind them to the new handler
	logger = log.New("pkg", "main")
	pool.SetLogger(log.New("pkg", "pool"))
	return nil
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, max allowed %d", val, math.MaxInt)
	}
	return int(val), nil
}

// copy from go-ethereum
func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakepool")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakepool")
		default:
			return filepath.Join(home, ".org.vechain.stakepool")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// withPool opens the pool database, runs fn and closes the database.
func withPool(ctx *cli.Context, fn func(p *pool.Pool, cfg *config) error) error {
	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return err
	}
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if dataDir == "" {
		return errors.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return errors.Wrapf(err, "create data dir at '%v'", dataDir)
	}

	cacheSize := ctx.GlobalInt(cacheFlag.Name)
	dir := filepath.Join(dataDir, "pool.db")
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		return errors.Wrapf(err, "open pool database at '%v'", dir)
	}
	defer func() {
		logger.Debug("closing pool database...")
		db.Close()
	}()

	p, err := pool.New(db,
		pool.WithAuthority(&pool.LogAuthority{Logger: log.New("pkg", "authority")}),
		pool.WithTransferer(&printTransferer{w: os.Stdout}),
		pool.WithEventSink(&printSink{w: os.Stdout}),
		pool.WithCacheSize(cacheSize),
	)
	if err != nil {
		return err
	}
	return fn(p, cfg)
}

func maxItems(ctx *cli.Context, cfg *config) uint64 {
	if !ctx.GlobalIsSet(maxItemsFlag.Name) && cfg.MaxItems > 0 {
		return cfg.MaxItems
	}
	return ctx.GlobalUint64(maxItemsFlag.Name)
}

func addrArg(ctx *cli.Context) (thor.Address, error) {
	s := ctx.String(addrFlag.Name)
	if s == "" {
		return thor.Address{}, errors.Errorf("-%s is required", addrFlag.Name)
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, addrFlag.Name)
	}
	return *addr, nil
}

func amountArg(ctx *cli.Context, flag cli.StringFlag) (*big.Int, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return nil, errors.Errorf("-%s is required", flag.Name)
	}
	return parseAmount(s)
}

func timeArg(ctx *cli.Context) uint64 {
	if ctx.IsSet(timeFlag.Name) {
		return ctx.Uint64(timeFlag.Name)
	}
	return uint64(time.Now().Unix())
}

// printTransferer reports the payments the pool makes, settlement happens off line.
type printTransferer struct {
	w io.Writer
}

func (t *printTransferer) Send(to thor.Address, amount *big.Int) error {
	_, err := fmt.Fprintf(t.w, "send %v to %v\n", amount, to)
	return err
}

type printSink struct {
	w io.Writer
}

func (s *printSink) Emit(ev pool.Event) {
	fmt.Fprintf(s.w, "event %-16s", ev.Name)
	if !ev.User.IsZero() {
		fmt.Fprintf(s.w, " user=%v", ev.User)
	}
	if ev.Amount != nil {
		fmt.Fprintf(s.w, " amount=%v", ev.Amount)
	}
	if ev.Detail != "" {
		fmt.Fprintf(s.w, " detail=%v", ev.Detail)
	}
	fmt.Fprintln(s.w)
}
