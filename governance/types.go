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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ProposalStatus represents the voting phase of a proposal. It is derived from
// the clock on every read and never persisted.
type ProposalStatus uint8

const (
	ProposalStatusPending ProposalStatus = 0x00 // before startTime
	ProposalStatusOpen    ProposalStatus = 0x01 // startTime <= now < endTime
	ProposalStatusClosed  ProposalStatus = 0x02 // now >= endTime
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalStatusPending:
		return "pending"
	case ProposalStatusOpen:
		return "open"
	case ProposalStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Proposal represents a governance proposal of one DAO instance
type Proposal struct {
	ID        uint64         // sequential, starts at 1
	DAO       common.Address // DAO instance the proposal belongs to
	Creator   common.Address // member that created it
	StartTime uint64         // first second votes are accepted
	EndTime   uint64         // first second votes are rejected
	Metadata  []byte         // opaque payload, usually a URL or content hash
	CreatedAt uint64         // clock reading at creation
}

// Status returns the voting phase of the proposal at the given time.
func (p *Proposal) Status(now uint64) ProposalStatus {
	switch {
	case now < p.StartTime:
		return ProposalStatusPending
	case now < p.EndTime:
		return ProposalStatusOpen
	default:
		return ProposalStatusClosed
	}
}

// Copy returns a deep copy of the proposal.
func (p *Proposal) Copy() *Proposal {
	cpy := *p
	cpy.Metadata = common.CopyBytes(p.Metadata)
	return &cpy
}

// Vote represents a single vote on a proposal
type Vote struct {
	ProposalID uint64
	Voter      common.Address
	Support    bool
	Weight     *uint256.Int // weight snapshotted from the oracle at vote time
	Timestamp  uint64
}

// Tally holds the accumulated weights of a proposal
type Tally struct {
	For     *uint256.Int
	Against *uint256.Int
	Voters  uint64
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{For: new(uint256.Int), Against: new(uint256.Int)}
}

// Copy returns a deep copy of the tally.
func (t *Tally) Copy() *Tally {
	return &Tally{
		For:     new(uint256.Int).Set(t.For),
		Against: new(uint256.Int).Set(t.Against),
		Voters:  t.Voters,
	}
}

// ProposalCreatedEvent is emitted after a proposal has been stored
type ProposalCreatedEvent struct {
	ProposalID uint64
	Creator    common.Address
	StartTime  uint64
	EndTime    uint64
	Metadata   []byte
}

// VotedEvent is emitted after a vote has been committed
type VotedEvent struct {
	ProposalID uint64
	Voter      common.Address
	Support    bool
	Weight     *uint256.Int
}

// TallyMode selects how "no" votes affect the voting score
type TallyMode uint8

const (
	TallySeparate        TallyMode = 0x00 // "no" weight kept in Against, score = For
	TallyAffirmativeOnly TallyMode = 0x01 // "no" votes are recorded but carry no weight
)

// PluginConfig holds the configuration of a governance plugin
type PluginConfig struct {
	MinProposerWeight uint64    // threshold policy, 0 disables it
	ProposalCooldown  uint64    // seconds between proposals of one creator, 0 disables it
	TallyMode         TallyMode // negative vote handling
}

// DefaultPluginConfig returns the default plugin configuration: no threshold,
// no cooldown, separate yes/no tallies.
func DefaultPluginConfig() *PluginConfig {
	return &PluginConfig{
		MinProposerWeight: 0,
		ProposalCooldown:  0,
		TallyMode:         TallySeparate,
	}
}
