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
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Identity is the AutID held by one address
type Identity struct {
	TokenID     uint64
	Holder      common.Address
	Username    string
	MetadataURI string
	DAOs        []common.Address
}

// MintedEvent is emitted when an AutID is minted
type MintedEvent struct {
	Holder  common.Address
	TokenID uint64
	DAO     common.Address
}

// JoinedEvent is emitted whenever a holder joins a DAO
type JoinedEvent struct {
	Holder     common.Address
	DAO        common.Address
	Role       uint8
	Commitment uint8
}

// AutID is the identity registry. Every holder owns at most one AutID and
// joins DAOs with a role and a commitment level, which together determine its
// voting weight. AutID answers membership queries for governance plugins.
type AutID struct {
	address common.Address
	formula WeightFormula

	mu          sync.RWMutex
	daos        map[common.Address]*Nova
	identities  map[common.Address]*Identity
	usernames   map[string]common.Address
	lastTokenID uint64

	sendMu   sync.Mutex // orders event delivery after mu is released
	mintFeed event.Feed
	joinFeed event.Feed
	scope    event.SubscriptionScope
}

// NewAutID creates the identity registry deployed at address
func NewAutID(address common.Address, formula WeightFormula) *AutID {
	return &AutID{
		address:    address,
		formula:    formula,
		daos:       make(map[common.Address]*Nova),
		identities: make(map[common.Address]*Identity),
		usernames:  make(map[string]common.Address),
	}
}

// Address returns the registry address
func (a *AutID) Address() common.Address {
	return a.address
}

// RegisterDAO makes a DAO joinable through this registry
func (a *AutID) RegisterDAO(nova *Nova) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.daos[nova.Address()]; ok {
		return ErrDAOAlreadyRegistered
	}
	a.daos[nova.Address()] = nova
	return nil
}

// GetDAO returns a registered DAO
func (a *AutID) GetDAO(dao common.Address) (*Nova, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	nova, ok := a.daos[dao]
	if !ok {
		return nil, ErrUnknownDAO
	}
	return nova, nil
}

// Mint issues a new AutID to holder and joins it to dao
func (a *AutID) Mint(holder common.Address, username, metadataURI string, role, commitment uint8, dao common.Address) (uint64, error) {
	a.mu.Lock()
	tokenID, err := a.mint(holder, username, metadataURI, role, commitment, dao)
	if err != nil {
		a.mu.Unlock()
		return 0, err
	}
	a.sendMu.Lock()
	a.mu.Unlock()
	defer a.sendMu.Unlock()

	log.Info("AutID minted", "holder", holder, "token", tokenID, "dao", dao, "role", role, "commitment", commitment)
	a.mintFeed.Send(MintedEvent{Holder: holder, TokenID: tokenID, DAO: dao})
	a.joinFeed.Send(JoinedEvent{Holder: holder, DAO: dao, Role: role, Commitment: commitment})
	return tokenID, nil
}

func (a *AutID) mint(holder common.Address, username, metadataURI string, role, commitment uint8, dao common.Address) (uint64, error) {
	if _, ok := a.identities[holder]; ok {
		return 0, ErrAlreadyMinted
	}
	key := strings.ToLower(strings.TrimSpace(username))
	if key == "" {
		return 0, ErrInvalidUsername
	}
	if _, ok := a.usernames[key]; ok {
		return 0, ErrUsernameTaken
	}
	nova, err := a.checkJoin(role, commitment, dao)
	if err != nil {
		return 0, err
	}

	tokenID := a.lastTokenID + 1
	if err := nova.join(&Member{Address: holder, Role: role, Commitment: commitment, TokenID: tokenID}); err != nil {
		return 0, err
	}
	a.lastTokenID = tokenID
	a.usernames[key] = holder
	a.identities[holder] = &Identity{
		TokenID:     tokenID,
		Holder:      holder,
		Username:    username,
		MetadataURI: metadataURI,
		DAOs:        []common.Address{dao},
	}
	return tokenID, nil
}

// JoinDAO joins an existing AutID holder to another DAO
func (a *AutID) JoinDAO(holder common.Address, role, commitment uint8, dao common.Address) error {
	a.mu.Lock()
	if err := a.joinDAO(holder, role, commitment, dao); err != nil {
		a.mu.Unlock()
		return err
	}
	a.sendMu.Lock()
	a.mu.Unlock()
	defer a.sendMu.Unlock()

	log.Info("AutID joined DAO", "holder", holder, "dao", dao, "role", role, "commitment", commitment)
	a.joinFeed.Send(JoinedEvent{Holder: holder, DAO: dao, Role: role, Commitment: commitment})
	return nil
}

func (a *AutID) joinDAO(holder common.Address, role, commitment uint8, dao common.Address) error {
	identity, ok := a.identities[holder]
	if !ok {
		return ErrNotMinted
	}
	nova, err := a.checkJoin(role, commitment, dao)
	if err != nil {
		return err
	}
	if err := nova.join(&Member{Address: holder, Role: role, Commitment: commitment, TokenID: identity.TokenID}); err != nil {
		return err
	}
	identity.DAOs = append(identity.DAOs, dao)
	return nil
}

// GetIdentity returns the AutID of holder
func (a *AutID) GetIdentity(holder common.Address) (*Identity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	identity, ok := a.identities[holder]
	if !ok {
		return nil, ErrNotMinted
	}
	cpy := *identity
	cpy.DAOs = append([]common.Address(nil), identity.DAOs...)
	return &cpy, nil
}

// IsMember implements governance.MembershipOracle
func (a *AutID) IsMember(_ context.Context, dao common.Address, addr common.Address) (bool, error) {
	nova, err := a.GetDAO(dao)
	if errors.Is(err, ErrUnknownDAO) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return nova.IsMember(addr), nil
}

// WeightOf implements governance.MembershipOracle. Non-members weigh zero.
func (a *AutID) WeightOf(_ context.Context, dao common.Address, addr common.Address) (*uint256.Int, error) {
	nova, err := a.GetDAO(dao)
	if errors.Is(err, ErrUnknownDAO) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	member, err := nova.GetMember(addr)
	if errors.Is(err, ErrMemberNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return a.formula.Weight(member.Role, member.Commitment), nil
}

// IsDAOAdmin reports whether addr administers a registered DAO
func (a *AutID) IsDAOAdmin(dao common.Address, addr common.Address) (bool, error) {
	nova, err := a.GetDAO(dao)
	if err != nil {
		return false, err
	}
	return nova.IsAdmin(addr), nil
}

// SubscribeMinted registers a subscription for MintedEvent. Delivery is
// synchronous and happens after the registry lock is released, so a stalled
// subscriber holds up later Mint and JoinDAO calls but not lookups.
func (a *AutID) SubscribeMinted(ch chan<- MintedEvent) event.Subscription {
	return a.scope.Track(a.mintFeed.Subscribe(ch))
}

// SubscribeJoined registers a subscription for JoinedEvent
func (a *AutID) SubscribeJoined(ch chan<- JoinedEvent) event.Subscription {
	return a.scope.Track(a.joinFeed.Subscribe(ch))
}

// Close unsubscribes all event subscribers
func (a *AutID) Close() {
	a.scope.Close()
}

func (a *AutID) checkJoin(role, commitment uint8, dao common.Address) (*Nova, error) {
	if role < MinRole || role > MaxRole {
		return nil, ErrInvalidRole
	}
	if commitment < MinCommitment || commitment > MaxCommitment {
		return nil, ErrInvalidCommitment
	}
	nova, ok := a.daos[dao]
	if !ok {
		return nil, ErrUnknownDAO
	}
	return nova, nil
}
