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

// MembershipOracle answers membership and voting weight queries for DAO instances
type MembershipOracle interface {
	// IsMember reports whether addr is a member of the DAO
	IsMember(ctx context.Context, dao common.Address, addr common.Address) (bool, error)

	// WeightOf returns the current voting weight of addr in the DAO
	WeightOf(ctx context.Context, dao common.Address, addr common.Address) (*uint256.Int, error)
}

// Clock supplies the current block timestamp. It never goes backwards.
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// ThresholdPolicy decides whether a member may create proposals
type ThresholdPolicy interface {
	CheckProposer(ctx context.Context, dao common.Address, creator common.Address, weight *uint256.Int) error
}

// CooldownPolicy limits how often a member may create proposals
type CooldownPolicy interface {
	// CheckCooldown is called with the creation time of the creator's previous
	// proposal, hasPrevious is false for a first proposal
	CheckCooldown(creator common.Address, lastCreatedAt uint64, hasPrevious bool, now uint64) error
}

// TallyPolicy defines how a vote changes a tally and how the voting score is
// read from it. Apply leaves the tally untouched when it returns an error.
type TallyPolicy interface {
	Apply(tally *Tally, support bool, weight *uint256.Int) error
	Score(tally *Tally) *uint256.Int
}
