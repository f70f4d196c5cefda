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

package governance

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// NoThreshold lets every member create proposals
type NoThreshold struct{}

func (NoThreshold) CheckProposer(context.Context, common.Address, common.Address, *uint256.Int) error {
	return nil
}

// MinWeightThreshold requires the creator to hold at least Min voting weight
type MinWeightThreshold struct {
	Min *uint256.Int
}

func (t MinWeightThreshold) CheckProposer(_ context.Context, _ common.Address, _ common.Address, weight *uint256.Int) error {
	if t.Min == nil {
		return nil
	}
	if weight == nil || weight.Lt(t.Min) {
		return ErrBelowThreshold
	}
	return nil
}

// NoCooldown never rejects a proposal
type NoCooldown struct{}

func (NoCooldown) CheckCooldown(common.Address, uint64, bool, uint64) error {
	return nil
}

// FixedCooldown requires Period seconds between two proposals of one creator
type FixedCooldown struct {
	Period uint64
}

func (c FixedCooldown) CheckCooldown(_ common.Address, lastCreatedAt uint64, hasPrevious bool, now uint64) error {
	if !hasPrevious || c.Period == 0 {
		return nil
	}
	if now < lastCreatedAt || now-lastCreatedAt < c.Period {
		return ErrCooldownActive
	}
	return nil
}

// SeparateTally adds "yes" weight to For and "no" weight to Against. The
// voting score is the For weight, so it never decreases.
type SeparateTally struct{}

func (SeparateTally) Apply(tally *Tally, support bool, weight *uint256.Int) error {
	side := tally.Against
	if support {
		side = tally.For
	}
	if err := addWeight(side, weight); err != nil {
		return err
	}
	tally.Voters++
	return nil
}

func (SeparateTally) Score(tally *Tally) *uint256.Int {
	return new(uint256.Int).Set(tally.For)
}

// AffirmativeOnly only accumulates "yes" weight. A "no" vote still uses up the
// voter's single vote.
type AffirmativeOnly struct{}

func (AffirmativeOnly) Apply(tally *Tally, support bool, weight *uint256.Int) error {
	if support {
		if err := addWeight(tally.For, weight); err != nil {
			return err
		}
	}
	tally.Voters++
	return nil
}

func (AffirmativeOnly) Score(tally *Tally) *uint256.Int {
	return new(uint256.Int).Set(tally.For)
}

// addWeight adds weight to sum in place, leaving sum unchanged on overflow
func addWeight(sum, weight *uint256.Int) error {
	total, overflow := new(uint256.Int).AddOverflow(sum, weight)
	if overflow {
		return ErrTallyOverflow
	}
	sum.Set(total)
	return nil
}

// Policies bundles the pluggable rules of a governance plugin
type Policies struct {
	Threshold ThresholdPolicy
	Cooldown  CooldownPolicy
	Tally     TallyPolicy
}

// PoliciesFromConfig builds the policy set described by the configuration.
func PoliciesFromConfig(config *PluginConfig) Policies {
	p := DefaultPolicies()
	if config == nil {
		return p
	}
	if config.MinProposerWeight > 0 {
		p.Threshold = MinWeightThreshold{Min: uint256.NewInt(config.MinProposerWeight)}
	}
	if config.ProposalCooldown > 0 {
		p.Cooldown = FixedCooldown{Period: config.ProposalCooldown}
	}
	if config.TallyMode == TallyAffirmativeOnly {
		p.Tally = AffirmativeOnly{}
	}
	return p
}

// DefaultPolicies returns policies that accept every member and keep separate
// yes/no tallies.
func DefaultPolicies() Policies {
	return Policies{
		Threshold: NoThreshold{},
		Cooldown:  NoCooldown{},
		Tally:     SeparateTally{},
	}
}

func (p Policies) withDefaults() Policies {
	if p.Threshold == nil {
		p.Threshold = NoThreshold{}
	}
	if p.Cooldown == nil {
		p.Cooldown = NoCooldown{}
	}
	if p.Tally == nil {
		p.Tally = SeparateTally{}
	}
	return p
}
