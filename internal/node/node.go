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

package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/aut-labs/nova-governance/chain"
	"github.com/aut-labs/nova-governance/dao"
	"github.com/aut-labs/nova-governance/governance"
	"github.com/aut-labs/nova-governance/internal/config"
	"github.com/aut-labs/nova-governance/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/log"
)

// ErrNotSimulated is returned by operations that need the built-in simulator
var ErrNotSimulated = errors.New("node is connected to a remote chain")

// Node bundles the collaborators governance plugins run against: storage,
// the clock, the membership oracle and the registries.
type Node struct {
	config *config.Config
	db     ethdb.KeyValueStore

	clock  governance.Clock
	oracle governance.MembershipOracle

	// Only set when running against the simulator
	sim      *chain.Simulator
	autID    *dao.AutID
	modules  *registry.ModuleRegistry
	registry *registry.PluginRegistry
	deployer common.Address

	closers []func()
}

// OpenDatabase opens the key-value store described by the storage config
func OpenDatabase(cfg config.StorageConfig) (ethdb.KeyValueStore, error) {
	if cfg.DataDir == "" {
		return memorydb.New(), nil
	}
	db, err := leveldb.New(cfg.DataDir, cfg.Cache, cfg.Handles, "novagov/db/", false)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", cfg.DataDir, err)
	}
	return db, nil
}

// New creates a node. Without an RPC URL a simulator with the given genesis
// time backs the clock, and an in-process AutID backs membership.
func New(ctx context.Context, cfg *config.Config, genesisTime uint64) (*Node, error) {
	db, err := OpenDatabase(cfg.Storage)
	if err != nil {
		return nil, err
	}
	n := &Node{config: cfg, db: db}
	n.closers = append(n.closers, func() { db.Close() })

	if cfg.Chain.RPCURL != "" {
		if err := n.connect(ctx); err != nil {
			n.Close()
			return nil, err
		}
		return n, nil
	}
	if err := n.simulate(genesisTime); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) connect(ctx context.Context) error {
	clock, err := chain.DialRPCClock(ctx, n.config.Chain.RPCURL)
	if err != nil {
		return err
	}
	n.closers = append(n.closers, clock.Close)

	oracle, err := chain.NewContractOracle(clock.Client(), n.config.Chain.Registry)
	if err != nil {
		return err
	}
	n.clock, n.oracle = clock, oracle
	log.Info("Node connected to chain", "url", n.config.Chain.RPCURL, "registry", n.config.Chain.Registry)
	return nil
}

func (n *Node) simulate(genesisTime uint64) error {
	n.sim = chain.NewSimulator(genesisTime)
	acc, err := n.sim.NewAccount()
	if err != nil {
		return err
	}
	n.deployer = acc.Address

	n.modules = registry.NewModuleRegistry(n.sim.Deploy(n.deployer))
	n.autID = dao.NewAutID(n.sim.Deploy(n.deployer), n.config.WeightFormula())
	n.registry = registry.NewPluginRegistry(n.sim.Deploy(n.deployer), n.modules, n.autID)
	n.closers = append(n.closers, n.autID.Close, n.registry.Close)

	n.clock, n.oracle = n.sim.Clock, n.autID
	log.Info("Node running on simulator", "genesis", genesisTime, "autid", n.autID.Address(), "registry", n.registry.Address())
	return nil
}

// DB returns the node database
func (n *Node) DB() ethdb.KeyValueStore { return n.db }

// Clock returns the clock plugins are bound to
func (n *Node) Clock() governance.Clock { return n.clock }

// Oracle returns the membership oracle plugins are bound to
func (n *Node) Oracle() governance.MembershipOracle { return n.oracle }

// Simulator returns the simulator, or nil on a remote chain
func (n *Node) Simulator() *chain.Simulator { return n.sim }

// AutID returns the in-process identity registry, or nil on a remote chain
func (n *Node) AutID() *dao.AutID { return n.autID }

// Modules returns the module registry, or nil on a remote chain
func (n *Node) Modules() *registry.ModuleRegistry { return n.modules }

// PluginRegistry returns the plugin registry, or nil on a remote chain
func (n *Node) PluginRegistry() *registry.PluginRegistry { return n.registry }

// DeployDAO deploys a Nova DAO administered by admin on the simulator
func (n *Node) DeployDAO(admin common.Address, market uint8, metadataURI string, commitment uint8) (*dao.Nova, error) {
	if n.sim == nil {
		return nil, ErrNotSimulated
	}
	return dao.Deploy(n.sim.Deploy(admin), admin, n.autID, market, metadataURI, commitment, n.registry.Address())
}

// NewGovernancePlugin creates the governance plugin deployed at address for
// daoAddr, with policies taken from the node configuration
func (n *Node) NewGovernancePlugin(address, daoAddr common.Address) *governance.Plugin {
	policies := governance.PoliciesFromConfig(n.config.PluginConfig())
	p := governance.NewPlugin(n.db, address, daoAddr, n.oracle, n.clock, policies)
	n.closers = append(n.closers, p.Close)
	return p
}

// DeployGovernancePlugin deploys a governance plugin for daoAddr on the
// simulator, deployed by deployer
func (n *Node) DeployGovernancePlugin(deployer, daoAddr common.Address) (*governance.Plugin, error) {
	if n.sim == nil {
		return nil, ErrNotSimulated
	}
	return n.NewGovernancePlugin(n.sim.Deploy(deployer), daoAddr), nil
}

// Close releases the node resources in reverse order of acquisition
func (n *Node) Close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		n.closers[i]()
	}
	n.closers = nil
}
