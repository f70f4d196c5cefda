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
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
)

func TestProposalStore_Create(t *testing.T) {
	dao := common.HexToAddress("0xda0")
	store := NewProposalStore(memorydb.New(), dao)
	creator := common.HexToAddress("0x1")

	for want := uint64(1); want <= 3; want++ {
		id, err := store.Create(100, 200, []byte("https://something"), creator, 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != want {
			t.Errorf("expected id %d, got %d", want, id)
		}
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("failed to count proposals: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 proposals, got %d", count)
	}

	p, err := store.Get(2)
	if err != nil {
		t.Fatalf("failed to get proposal: %v", err)
	}
	if p.ID != 2 || p.DAO != dao || p.Creator != creator {
		t.Errorf("unexpected proposal identity: %+v", p)
	}
	if p.StartTime != 100 || p.EndTime != 200 || p.CreatedAt != 50 {
		t.Errorf("unexpected proposal times: %+v", p)
	}
	if !bytes.Equal(p.Metadata, []byte("https://something")) {
		t.Errorf("unexpected metadata %q", p.Metadata)
	}
}

func TestProposalStore_InvalidWindow(t *testing.T) {
	store := NewProposalStore(memorydb.New(), common.HexToAddress("0xda0"))
	creator := common.HexToAddress("0x1")

	tests := []struct {
		name       string
		start, end uint64
	}{
		{"equal", 100, 100},
		{"reversed", 200, 100},
		{"zero length at zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(tt.start, tt.end, nil, creator, 0); err != ErrInvalidWindow {
				t.Errorf("expected error %v, got %v", ErrInvalidWindow, err)
			}
		})
	}

	count, _ := store.Count()
	if count != 0 {
		t.Errorf("rejected proposals must not be stored, count %d", count)
	}
}

func TestProposalStore_NotFound(t *testing.T) {
	store := NewProposalStore(memorydb.New(), common.HexToAddress("0xda0"))
	if _, err := store.Create(1, 2, nil, common.HexToAddress("0x1"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []uint64{0, 2, 1000} {
		if _, err := store.Get(id); err != ErrProposalNotFound {
			t.Errorf("id %d: expected error %v, got %v", id, ErrProposalNotFound, err)
		}
	}
}

func TestProposalStore_MetadataIsCopied(t *testing.T) {
	store := NewProposalStore(memorydb.New(), common.HexToAddress("0xda0"))
	metadata := []byte("ipfs://hash")
	id, err := store.Create(1, 2, metadata, common.HexToAddress("0x1"), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	metadata[0] = 'X'

	p, _ := store.Get(id)
	if string(p.Metadata) != "ipfs://hash" {
		t.Errorf("metadata changed after creation: %q", p.Metadata)
	}
}

func TestProposalStore_PartitionedByDAO(t *testing.T) {
	db := memorydb.New()
	storeA := NewProposalStore(db, common.HexToAddress("0xa"))
	storeB := NewProposalStore(db, common.HexToAddress("0xb"))
	creator := common.HexToAddress("0x1")

	storeA.Create(1, 2, nil, creator, 0)
	storeA.Create(1, 2, nil, creator, 0)
	id, err := storeB.Create(1, 2, nil, creator, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("each DAO numbers proposals from 1, got %d", id)
	}
	if _, err := storeB.Get(2); err != ErrProposalNotFound {
		t.Errorf("expected error %v, got %v", ErrProposalNotFound, err)
	}
}

func TestProposalStore_LastCreated(t *testing.T) {
	store := NewProposalStore(memorydb.New(), common.HexToAddress("0xda0"))
	creator := common.HexToAddress("0x1")

	if _, ok, err := store.LastCreated(creator); err != nil || ok {
		t.Fatalf("expected no previous proposal, got ok=%v err=%v", ok, err)
	}
	store.Create(10, 20, nil, creator, 5)
	store.Create(10, 20, nil, creator, 7)

	last, ok, err := store.LastCreated(creator)
	if err != nil || !ok {
		t.Fatalf("expected previous proposal, got ok=%v err=%v", ok, err)
	}
	if last != 7 {
		t.Errorf("expected last creation at 7, got %d", last)
	}

	all, err := store.All()
	if err != nil {
		t.Fatalf("failed to list proposals: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Errorf("unexpected proposal list: %v", all)
	}
}
