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

package dao

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Member represents the membership of an address in a DAO
type Member struct {
	Address    common.Address
	Role       uint8
	Commitment uint8
	TokenID    uint64 // AutID token of the member
}

// Nova is a DAO instance. Members join through the AutID registry.
type Nova struct {
	address        common.Address
	autID          common.Address
	pluginRegistry common.Address
	market         uint8
	commitment     uint8

	mu          sync.RWMutex
	metadataURI string
	admins      map[common.Address]struct{}
	members     map[common.Address]*Member
	memberList  []common.Address
}

// NewNova creates a DAO instance deployed at address with admin as its first admin
func NewNova(address, admin, autID common.Address, market uint8, metadataURI string, commitment uint8, pluginRegistry common.Address) (*Nova, error) {
	if market < MinMarket || market > MaxMarket {
		return nil, ErrInvalidMarket
	}
	if commitment < MinCommitment || commitment > MaxCommitment {
		return nil, ErrInvalidCommitment
	}
	return &Nova{
		address:        address,
		autID:          autID,
		pluginRegistry: pluginRegistry,
		market:         market,
		commitment:     commitment,
		metadataURI:    metadataURI,
		admins:         map[common.Address]struct{}{admin: {}},
		members:        make(map[common.Address]*Member),
	}, nil
}

// Deploy creates a DAO instance and registers it with the AutID registry so
// that identities can join it.
func Deploy(address, admin common.Address, autID *AutID, market uint8, metadataURI string, commitment uint8, pluginRegistry common.Address) (*Nova, error) {
	nova, err := NewNova(address, admin, autID.Address(), market, metadataURI, commitment, pluginRegistry)
	if err != nil {
		return nil, err
	}
	if err := autID.RegisterDAO(nova); err != nil {
		return nil, err
	}
	log.Info("DAO deployed", "address", address, "admin", admin, "market", market)
	return nova, nil
}

// Address returns the DAO address, which is also its instance id
func (n *Nova) Address() common.Address { return n.address }

// AutID returns the identity registry the DAO is bound to
func (n *Nova) AutID() common.Address { return n.autID }

// PluginRegistry returns the plugin registry the DAO is bound to
func (n *Nova) PluginRegistry() common.Address { return n.pluginRegistry }

func (n *Nova) Market() uint8     { return n.market }
func (n *Nova) Commitment() uint8 { return n.commitment }

func (n *Nova) MetadataURI() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.metadataURI
}

// SetMetadataURI replaces the DAO metadata, admins only
func (n *Nova) SetMetadataURI(caller common.Address, uri string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.admins[caller]; !ok {
		return ErrNotAdmin
	}
	n.metadataURI = uri
	return nil
}

// IsAdmin reports whether addr administers the DAO
func (n *Nova) IsAdmin(addr common.Address) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.admins[addr]
	return ok
}

// AddAdmin grants admin rights to addr. Only members can become admins.
func (n *Nova) AddAdmin(caller, addr common.Address) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.admins[caller]; !ok {
		return ErrNotAdmin
	}
	if _, ok := n.members[addr]; !ok {
		return ErrMemberNotFound
	}
	n.admins[addr] = struct{}{}
	return nil
}

// IsMember reports whether addr joined the DAO
func (n *Nova) IsMember(addr common.Address) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.members[addr]
	return ok
}

// GetMember returns the membership record of addr
func (n *Nova) GetMember(addr common.Address) (*Member, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	m, ok := n.members[addr]
	if !ok {
		return nil, ErrMemberNotFound
	}
	cpy := *m
	return &cpy, nil
}

// Members returns the member addresses in join order
func (n *Nova) Members() []common.Address {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]common.Address, len(n.memberList))
	copy(out, n.memberList)
	return out
}

// join adds a member, called by the AutID registry
func (n *Nova) join(m *Member) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.members[m.Address]; ok {
		return ErrAlreadyMember
	}
	n.members[m.Address] = m
	n.memberList = append(n.memberList, m.Address)
	return nil
}
