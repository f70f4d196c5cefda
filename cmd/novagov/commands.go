// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/aut-labs/nova-governance/governance"
	"github.com/aut-labs/nova-governance/internal/config"
	"github.com/aut-labs/nova-governance/internal/node"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var (
	daoFlag = &cli.StringFlag{
		Name:     "dao",
		Usage:    "DAO address whose proposals are listed",
		Required: true,
	}

	demoCommand = &cli.Command{
		Name:   "demo",
		Usage:  "Run a governance round on the built-in simulator",
		Flags:  []cli.Flag{datadirFlag},
		Action: runDemo,
	}
	inspectCommand = &cli.Command{
		Name:   "inspect",
		Usage:  "List the proposals and tallies of a DAO stored in a database",
		Flags:  []cli.Flag{datadirFlag, daoFlag},
		Action: runInspect,
	}
)

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(datadirFlag.Name) {
		cfg.Storage.DataDir = ctx.String(datadirFlag.Name)
	}
	return cfg, cfg.Validate()
}

func runDemo(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Chain.RPCURL != "" {
		return errors.New("demo runs on the simulator, unset chain.rpc_url")
	}
	n, err := node.New(ctx.Context, cfg, uint64(time.Now().Unix()))
	if err != nil {
		return err
	}
	defer n.Close()

	res, err := node.RunDemo(ctx.Context, n, ctx.App.Writer)
	if err != nil {
		return err
	}
	if cfg.Storage.DataDir != "" {
		fmt.Fprintf(ctx.App.Writer, "State written to %s, inspect with --dao %s\n", cfg.Storage.DataDir, res.DAO.Hex())
	}
	return nil
}

func runInspect(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Storage.DataDir == "" {
		return errors.New("inspect needs a database, set --datadir")
	}
	daoHex := ctx.String(daoFlag.Name)
	if !common.IsHexAddress(daoHex) {
		return fmt.Errorf("invalid DAO address %q", daoHex)
	}
	dao := common.HexToAddress(daoHex)

	db, err := node.OpenDatabase(cfg.Storage)
	if err != nil {
		return err
	}
	defer db.Close()

	policies := governance.PoliciesFromConfig(cfg.PluginConfig())
	store := governance.NewProposalStore(db, dao)
	engine := governance.NewVotingEngine(db, dao, policies.Tally)

	proposals, err := store.All()
	if err != nil {
		return err
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "DAO %s: %d proposals\n", dao.Hex(), len(proposals))
	for _, p := range proposals {
		tally, err := engine.Tally(p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "#%d creator=%s window=[%d,%d) metadata=%q for=%s against=%s voters=%d score=%s\n",
			p.ID, p.Creator.Hex(), p.StartTime, p.EndTime, p.Metadata,
			tally.For, tally.Against, tally.Voters, policies.Tally.Score(tally))
	}
	return nil
}
