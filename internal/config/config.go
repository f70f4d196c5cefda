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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aut-labs/nova-governance/dao"
	"github.com/aut-labs/nova-governance/governance"
	"github.com/ethereum/go-ethereum/common"
)

// Config is the configuration of a governance node
type Config struct {
	Governance GovernanceConfig `toml:"governance"`
	Weight     WeightConfig     `toml:"weight"`
	Storage    StorageConfig    `toml:"storage"`
	Chain      ChainConfig      `toml:"chain"`
}

// GovernanceConfig holds the policy hooks of the plugin
type GovernanceConfig struct {
	MinProposerWeight uint64 `toml:"min_proposer_weight"` // 0 disables the threshold
	ProposalCooldown  uint64 `toml:"proposal_cooldown"`   // seconds, 0 disables the cooldown
	TallyMode         string `toml:"tally_mode"`          // "separate" or "affirmative"
}

// WeightConfig holds the parameters of the voting weight formula
type WeightConfig struct {
	Base   uint64 `toml:"base"`
	Factor uint64 `toml:"factor"`
}

// StorageConfig selects where proposals and votes are kept
type StorageConfig struct {
	DataDir string `toml:"datadir"` // empty keeps everything in memory
	Cache   int    `toml:"cache"`   // MB
	Handles int    `toml:"handles"`
}

// ChainConfig points the node at an execution client. Both fields empty means
// the built-in simulator is used.
type ChainConfig struct {
	RPCURL   string         `toml:"rpc_url"`
	Registry common.Address `toml:"registry"`
}

const (
	TallySeparate    = "separate"
	TallyAffirmative = "affirmative"

	envDataDir = "NOVAGOV_DATADIR"
	envRPCURL  = "NOVAGOV_RPC_URL"
)

// Default returns the default configuration
func Default() *Config {
	formula := dao.DefaultWeightFormula()
	return &Config{
		Governance: GovernanceConfig{TallyMode: TallySeparate},
		Weight:     WeightConfig{Base: formula.Base, Factor: formula.Factor},
		Storage:    StorageConfig{Cache: 16, Handles: 16},
	}
}

// Load reads the TOML file at path on top of the defaults and applies
// environment overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.Storage.DataDir = getEnvOrDefault(envDataDir, cfg.Storage.DataDir)
	cfg.Chain.RPCURL = getEnvOrDefault(envRPCURL, cfg.Chain.RPCURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Governance.TallyMode {
	case TallySeparate, TallyAffirmative:
	default:
		return fmt.Errorf("invalid tally mode %q", c.Governance.TallyMode)
	}
	if c.Weight.Base == 0 && c.Weight.Factor == 0 {
		return errors.New("weight formula gives every member zero weight")
	}
	if c.Storage.DataDir != "" && (c.Storage.Cache <= 0 || c.Storage.Handles <= 0) {
		return errors.New("storage cache and handles must be positive")
	}
	if c.Chain.RPCURL != "" && c.Chain.Registry == (common.Address{}) {
		return errors.New("chain registry address required with rpc_url")
	}
	return nil
}

// PluginConfig converts the governance section to the plugin configuration
func (c *Config) PluginConfig() *governance.PluginConfig {
	pc := governance.DefaultPluginConfig()
	pc.MinProposerWeight = c.Governance.MinProposerWeight
	pc.ProposalCooldown = c.Governance.ProposalCooldown
	if c.Governance.TallyMode == TallyAffirmative {
		pc.TallyMode = governance.TallyAffirmativeOnly
	}
	return pc
}

// WeightFormula converts the weight section to the formula used by AutID
func (c *Config) WeightFormula() dao.WeightFormula {
	return dao.WeightFormula{Base: c.Weight.Base, Factor: c.Weight.Factor}
}

// getEnvOrDefault retrieves an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
