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
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
)

var (
	// Storage key prefixes
	proposalPrefix      = []byte("gov-p") // proposalPrefix + dao + id -> proposalData
	proposalCountPrefix = []byte("gov-n") // proposalCountPrefix + dao -> last id
	lastCreatedPrefix   = []byte("gov-l") // lastCreatedPrefix + dao + creator -> timestamp
)

// proposalData is the persisted form of a Proposal
type proposalData struct {
	Creator   common.Address
	StartTime uint64
	EndTime   uint64
	Metadata  []byte
	CreatedAt uint64
}

// ProposalStore holds the proposals of one DAO instance. Proposals are only
// ever appended, never updated or deleted. Stores opened for the same DAO on
// the same database share one lock, so ids stay unique.
type ProposalStore struct {
	dao common.Address
	db  ethdb.KeyValueStore
	mu  *sync.Mutex // shared by all stores of the DAO on db
}

// NewProposalStore creates a proposal store for the DAO on top of db
func NewProposalStore(db ethdb.KeyValueStore, dao common.Address) *ProposalStore {
	return &ProposalStore{
		dao: dao,
		db:  db,
		mu:  daoLock(db, dao, proposalLock),
	}
}

// DAO returns the DAO instance this store belongs to
func (s *ProposalStore) DAO() common.Address {
	return s.dao
}

// Create stores a new proposal and returns its id
func (s *ProposalStore) Create(startTime, endTime uint64, metadata []byte, creator common.Address, now uint64) (uint64, error) {
	if startTime >= endTime {
		return 0, ErrInvalidWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.count()
	if err != nil {
		return 0, err
	}
	id := count + 1

	encoded, err := rlp.EncodeToBytes(&proposalData{
		Creator:   creator,
		StartTime: startTime,
		EndTime:   endTime,
		Metadata:  common.CopyBytes(metadata),
		CreatedAt: now,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode proposal: %w", err)
	}

	batch := s.db.NewBatch()
	if err := batch.Put(s.proposalKey(id), encoded); err != nil {
		return 0, err
	}
	if err := batch.Put(s.countKey(), encodeUint64(id)); err != nil {
		return 0, err
	}
	if err := batch.Put(s.lastCreatedKey(creator), encodeUint64(now)); err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, fmt.Errorf("failed to write proposal: %w", err)
	}
	return id, nil
}

// Get returns the proposal with the given id
func (s *ProposalStore) Get(id uint64) (*Proposal, error) {
	if id == 0 {
		return nil, ErrProposalNotFound
	}
	ok, err := s.db.Has(s.proposalKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotFound
	}
	encoded, err := s.db.Get(s.proposalKey(id))
	if err != nil {
		return nil, err
	}

	var data proposalData
	if err := rlp.DecodeBytes(encoded, &data); err != nil {
		return nil, fmt.Errorf("failed to decode proposal %d: %w", id, err)
	}
	return &Proposal{
		ID:        id,
		DAO:       s.dao,
		Creator:   data.Creator,
		StartTime: data.StartTime,
		EndTime:   data.EndTime,
		Metadata:  data.Metadata,
		CreatedAt: data.CreatedAt,
	}, nil
}

// Count returns the number of proposals created so far, which is also the
// highest proposal id
func (s *ProposalStore) Count() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.count()
}

// LastCreated returns the creation time of the most recent proposal of creator
func (s *ProposalStore) LastCreated(creator common.Address) (uint64, bool, error) {
	key := s.lastCreatedKey(creator)
	ok, err := s.db.Has(key)
	if err != nil || !ok {
		return 0, false, err
	}
	value, err := s.db.Get(key)
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(value), true, nil
}

// All returns every proposal in id order
func (s *ProposalStore) All() ([]*Proposal, error) {
	count, err := s.Count()
	if err != nil {
		return nil, err
	}
	proposals := make([]*Proposal, 0, count)
	for id := uint64(1); id <= count; id++ {
		p, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, nil
}

func (s *ProposalStore) count() (uint64, error) {
	ok, err := s.db.Has(s.countKey())
	if err != nil || !ok {
		return 0, err
	}
	value, err := s.db.Get(s.countKey())
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(value), nil
}

func (s *ProposalStore) proposalKey(id uint64) []byte {
	return makeKey(proposalPrefix, s.dao.Bytes(), encodeUint64(id))
}

func (s *ProposalStore) countKey() []byte {
	return makeKey(proposalCountPrefix, s.dao.Bytes())
}

func (s *ProposalStore) lastCreatedKey(creator common.Address) []byte {
	return makeKey(lastCreatedPrefix, s.dao.Bytes(), creator.Bytes())
}

// makeKey concatenates a prefix with the given key parts
func makeKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, part := range parts {
		size += len(part)
	}
	key := make([]byte, 0, size)
	key = append(key, prefix...)
	for _, part := range parts {
		key = append(key, part...)
	}
	return key
}

func encodeUint64(n uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, n)
	return enc
}
