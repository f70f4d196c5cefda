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
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	votePrefix  = []byte("gov-v") // votePrefix + dao + id + voter -> voteData
	tallyPrefix = []byte("gov-t") // tallyPrefix + dao + id -> tallyData
)

type voteData struct {
	Support   bool
	Weight    []byte
	Timestamp uint64
}

type tallyData struct {
	For     []byte
	Against []byte
	Voters  uint64
}

// VotingEngine validates votes against a proposal's window and accumulates
// their weight. It owns the vote records and is the only writer of tallies.
// Engines opened for the same DAO on the same database share one lock.
type VotingEngine struct {
	dao    common.Address
	db     ethdb.KeyValueStore
	policy TallyPolicy
	mu     *sync.Mutex // shared by all engines of the DAO on db
}

// NewVotingEngine creates a voting engine for the DAO on top of db
func NewVotingEngine(db ethdb.KeyValueStore, dao common.Address, policy TallyPolicy) *VotingEngine {
	if policy == nil {
		policy = SeparateTally{}
	}
	return &VotingEngine{
		dao:    dao,
		db:     db,
		policy: policy,
		mu:     daoLock(db, dao, voteLock),
	}
}

// CastVote records a vote of voter on proposal and returns the new voting score.
// The vote record and the updated tally are committed in a single batch.
func (e *VotingEngine) CastVote(proposal *Proposal, voter common.Address, support bool, weight *uint256.Int, now uint64) (*uint256.Int, error) {
	if now < proposal.StartTime {
		return nil, ErrVotingNotStarted
	}
	if now >= proposal.EndTime {
		return nil, ErrVotingEnded
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	voted, err := e.db.Has(e.voteKey(proposal.ID, voter))
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, ErrAlreadyVoted
	}
	if weight == nil || weight.IsZero() {
		return nil, ErrZeroWeight
	}

	tally, err := e.tally(proposal.ID)
	if err != nil {
		return nil, err
	}
	if err := e.policy.Apply(tally, support, weight); err != nil {
		return nil, err
	}

	encodedVote, err := rlp.EncodeToBytes(&voteData{
		Support:   support,
		Weight:    weight.Bytes(),
		Timestamp: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode vote: %w", err)
	}
	encodedTally, err := rlp.EncodeToBytes(&tallyData{
		For:     tally.For.Bytes(),
		Against: tally.Against.Bytes(),
		Voters:  tally.Voters,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode tally: %w", err)
	}

	batch := e.db.NewBatch()
	if err := batch.Put(e.voteKey(proposal.ID, voter), encodedVote); err != nil {
		return nil, err
	}
	if err := batch.Put(e.tallyKey(proposal.ID), encodedTally); err != nil {
		return nil, err
	}
	if err := batch.Write(); err != nil {
		return nil, fmt.Errorf("failed to write vote: %w", err)
	}
	return e.policy.Score(tally), nil
}

// ScoreOf returns the current voting score of a proposal. Proposals without
// votes score zero.
func (e *VotingEngine) ScoreOf(proposalID uint64) (*uint256.Int, error) {
	tally, err := e.Tally(proposalID)
	if err != nil {
		return nil, err
	}
	return e.policy.Score(tally), nil
}

// Tally returns a copy of the tally of a proposal
func (e *VotingEngine) Tally(proposalID uint64) (*Tally, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tally(proposalID)
}

// HasVoted reports whether voter already voted on the proposal
func (e *VotingEngine) HasVoted(proposalID uint64, voter common.Address) (bool, error) {
	return e.db.Has(e.voteKey(proposalID, voter))
}

// GetVote returns the vote of voter on the proposal, or ErrVoteNotFound
func (e *VotingEngine) GetVote(proposalID uint64, voter common.Address) (*Vote, error) {
	key := e.voteKey(proposalID, voter)
	ok, err := e.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVoteNotFound
	}
	encoded, err := e.db.Get(key)
	if err != nil {
		return nil, err
	}
	return decodeVote(proposalID, voter, encoded)
}

// Votes returns all votes cast on a proposal, ordered by voter address
func (e *VotingEngine) Votes(proposalID uint64) ([]*Vote, error) {
	prefix := makeKey(votePrefix, e.dao.Bytes(), encodeUint64(proposalID))
	it := e.db.NewIterator(prefix, nil)
	defer it.Release()

	votes := make([]*Vote, 0)
	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+common.AddressLength {
			continue
		}
		voter := common.BytesToAddress(key[len(prefix):])
		vote, err := decodeVote(proposalID, voter, it.Value())
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, it.Error()
}

func (e *VotingEngine) tally(proposalID uint64) (*Tally, error) {
	key := e.tallyKey(proposalID)
	ok, err := e.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewTally(), nil
	}
	encoded, err := e.db.Get(key)
	if err != nil {
		return nil, err
	}
	var data tallyData
	if err := rlp.DecodeBytes(encoded, &data); err != nil {
		return nil, fmt.Errorf("failed to decode tally %d: %w", proposalID, err)
	}
	return &Tally{
		For:     new(uint256.Int).SetBytes(data.For),
		Against: new(uint256.Int).SetBytes(data.Against),
		Voters:  data.Voters,
	}, nil
}

func (e *VotingEngine) voteKey(proposalID uint64, voter common.Address) []byte {
	return makeKey(votePrefix, e.dao.Bytes(), encodeUint64(proposalID), voter.Bytes())
}

func (e *VotingEngine) tallyKey(proposalID uint64) []byte {
	return makeKey(tallyPrefix, e.dao.Bytes(), encodeUint64(proposalID))
}

func decodeVote(proposalID uint64, voter common.Address, encoded []byte) (*Vote, error) {
	var data voteData
	if err := rlp.DecodeBytes(encoded, &data); err != nil {
		return nil, fmt.Errorf("failed to decode vote: %w", err)
	}
	return &Vote{
		ProposalID: proposalID,
		Voter:      voter,
		Support:    data.Support,
		Weight:     new(uint256.Int).SetBytes(data.Weight),
		Timestamp:  data.Timestamp,
	}, nil
}
