// Copyright 2020 The The 420Integrated Development Group
// This file is part of the go-420coin library.
//
// The go-420coin library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-420coin library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-420coin library. If not, see <http://www.gnu.org/licenses/>.

// Command bcnode is the block-engine node entrypoint: it loads
// configuration, opens persistence, bootstraps genesis if needed, and wires
// the engine, multiverse, block pool, pub/sub bus, and peer RPC server
// together (spec.md §6), the same shape as the teacher's cmd/g420.
//
// Rover adapters (the real external-chain watchers) and peer discovery
// remain external collaborators referenced only by interface -- this
// binary exposes the engine's OnRoverTip/OnPeerBlock entry points for them
// to call, but does not itself dial any external chain.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/multiverse-labs/bcengine/blockpool"
	"github.com/multiverse-labs/bcengine/chain"
	"github.com/multiverse-labs/bcengine/clock"
	"github.com/multiverse-labs/bcengine/config"
	"github.com/multiverse-labs/bcengine/engine"
	"github.com/multiverse-labs/bcengine/internal/log"
	"github.com/multiverse-labs/bcengine/multiverse"
	"github.com/multiverse-labs/bcengine/peer"
	"github.com/multiverse-labs/bcengine/pubsub"
	"github.com/multiverse-labs/bcengine/store"
)

const (
	exitOK                = 0
	exitGenesisWriteFailed = 1
	exitDBVersionTooOld    = 8
	exitBootstrapFailed    = 64
)

var (
	configFileFlag = cli.StringFlag{Name: "config", Usage: "TOML configuration file"}
	dataDirFlag    = cli.StringFlag{Name: "datadir", Usage: "data directory (overrides BC_DATA_DIR)"}
	passiveFlag    = cli.BoolFlag{Name: "passive", Usage: "run with no outbound peer dials"}
)

func main() {
	app := cli.NewApp()
	app.Name = "bcnode"
	app.Usage = "aggregating-chain block engine node"
	app.Flags = []cli.Flag{configFileFlag, dataDirFlag, passiveFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Crit("bcnode exited", "err", err)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String(configFileFlag.Name))
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(exitBootstrapFailed)
	}
	if d := ctx.String(dataDirFlag.Name); d != "" {
		cfg.DataDir = d
	}
	if ctx.Bool(passiveFlag.Name) {
		cfg.P2PPassive = true
	}

	st, err := store.OpenLevelDB(cfg.DataDir)
	if err != nil {
		log.Error("failed to open store", "dir", cfg.DataDir, "err", err)
		os.Exit(exitBootstrapFailed)
	}
	defer st.Close()

	if err := checkDBVersion(st); err != nil {
		log.Error("db version check failed", "err", err)
		os.Exit(exitDBVersionTooOld)
	}

	genesis, err := bootstrapGenesis(st)
	if err != nil {
		log.Error("genesis bootstrap failed", "err", err)
		os.Exit(exitGenesisWriteFailed)
	}

	bus := pubsub.New()
	pool := blockpool.New(st, bus, genesis.Hash)
	mv := multiverse.New()
	mv.Add(genesis, true)

	clk := clock.New(nil, 0)
	clk.Start()
	defer clk.Stop()

	var peerClient peer.Client
	if !cfg.P2PPassive && len(cfg.PeerAddrs) > 0 {
		peerClient = dialFirstPeer(cfg.PeerAddrs)
	}

	e := engine.New(st, bus, pool, mv, peerClient, clk, engine.Options{
		MinerKey:    cfg.MinerKey,
		MinerBinary: cfg.MinerBinary,
		MinerArgs:   cfg.MinerArgs,
		Depth:       cfg.MultiverseDepth,
	})

	// This is the engine's single state-owning goroutine: it drains every
	// worker message the mining worker's own goroutine enqueues through
	// e.Events(). Rover/peer adapters are external collaborators, but
	// whatever wires them in must call e.OnRoverTip/e.OnPeerBlock from this
	// same goroutine rather than from their own -- see the engine package
	// doc comment.
	go func() {
		for fn := range e.Events() {
			fn()
		}
	}()

	srv := peer.NewServer(st, mv)
	log.Info("bcnode listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv); err != nil {
		log.Error("peer server exited", "err", err)
		os.Exit(exitBootstrapFailed)
	}
	return nil
}

// checkDBVersion enforces spec.md §6: a persisted db_version below
// config.MinimumDBVersion is a fatal exit-8 condition. A missing
// appversion key (fresh data directory) is not an error.
func checkDBVersion(st store.Store) error {
	var v config.AppVersion
	if err := store.GetJSON(st, store.KeyAppVersion, &v); err != nil {
		return nil
	}
	if v.DBVersion == "" {
		return nil
	}
	if compareDottedVersions(v.DBVersion, config.MinimumDBVersion) < 0 {
		return fmt.Errorf("db_version %s below minimum %s", v.DBVersion, config.MinimumDBVersion)
	}
	return nil
}

// compareDottedVersions compares two "major.minor.patch"-shaped strings
// numerically component by component, returning -1/0/1. No ecosystem
// semver library appears anywhere in the pack; a three-field numeric
// compare is simple enough that pulling one in would be unjustified.
func compareDottedVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			fmt.Sscanf(as[i], "%d", &av)
		}
		if i < len(bs) {
			fmt.Sscanf(bs[i], "%d", &bv)
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// bootstrapGenesis writes the genesis block if persistence is empty,
// otherwise returns the persisted height-1 block unchanged (spec.md §8
// scenario 1).
func bootstrapGenesis(st store.Store) (*chain.ParentBlock, error) {
	var existing chain.ParentBlock
	if err := store.GetJSON(st, store.KeyBlockHeight(1), &existing); err == nil {
		return &existing, nil
	}

	genesis := chain.Genesis()
	if err := store.PutJSON(st, store.KeyBlockHeight(1), genesis); err != nil {
		return nil, err
	}
	if err := store.PutJSON(st, store.KeyBlockLatest, genesis); err != nil {
		return nil, err
	}
	return genesis, nil
}

func dialFirstPeer(addrs []string) peer.Client {
	for _, addr := range addrs {
		c, err := peer.Dial(context.Background(), addr)
		if err != nil {
			log.Warn("failed to dial peer", "addr", addr, "err", err)
			continue
		}
		return c
	}
	return nil
}
