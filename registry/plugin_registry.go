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

package registry

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Plugin is a deployed plugin bound to a DAO instance
type Plugin interface {
	Address() common.Address
	DAO() common.Address
}

// AdminChecker tells whether an address administers a DAO
type AdminChecker interface {
	IsDAOAdmin(dao common.Address, addr common.Address) (bool, error)
}

// PluginDefinition describes a type of plugin DAOs can install
type PluginDefinition struct {
	ID                uint64
	Creator           common.Address
	MetadataURI       string
	Price             *uint256.Int
	Active            bool
	DependencyModules []uint64
}

// Installation records a plugin added to a DAO. The token id identifies the
// installation.
type Installation struct {
	TokenID      uint64
	PluginTypeID uint64
	Plugin       common.Address
	DAO          common.Address
}

// PluginDefinitionAddedEvent is emitted when a plugin type is defined
type PluginDefinitionAddedEvent struct {
	PluginTypeID uint64
	Creator      common.Address
}

// PluginAddedToDAOEvent is emitted when a plugin is installed in a DAO
type PluginAddedToDAOEvent struct {
	TokenID      uint64
	PluginTypeID uint64
	DAO          common.Address
}

// PluginRegistry assigns plugin types and binds deployed plugins to DAOs
type PluginRegistry struct {
	address common.Address
	modules *ModuleRegistry
	admins  AdminChecker

	mu            sync.RWMutex
	definitions   []*PluginDefinition
	installations map[common.Address]*Installation
	lastTokenID   uint64

	sendMu         sync.Mutex // orders event delivery after mu is released
	definitionFeed event.Feed
	installFeed    event.Feed
	scope          event.SubscriptionScope
}

// NewPluginRegistry creates a plugin registry
func NewPluginRegistry(address common.Address, modules *ModuleRegistry, admins AdminChecker) *PluginRegistry {
	return &PluginRegistry{
		address:       address,
		modules:       modules,
		admins:        admins,
		installations: make(map[common.Address]*Installation),
	}
}

func (r *PluginRegistry) Address() common.Address { return r.address }

// AddPluginDefinition defines a new plugin type and returns its id
func (r *PluginRegistry) AddPluginDefinition(creator common.Address, metadataURI string, price *uint256.Int, active bool, dependencyModules []uint64) (uint64, error) {
	if metadataURI == "" {
		return 0, ErrInvalidMetadata
	}
	for _, m := range dependencyModules {
		if !r.modules.Exists(m) {
			return 0, ErrUnknownModule
		}
	}
	if price == nil {
		price = new(uint256.Int)
	}

	r.mu.Lock()
	id := uint64(len(r.definitions) + 1)
	r.definitions = append(r.definitions, &PluginDefinition{
		ID:                id,
		Creator:           creator,
		MetadataURI:       metadataURI,
		Price:             new(uint256.Int).Set(price),
		Active:            active,
		DependencyModules: append([]uint64(nil), dependencyModules...),
	})
	r.sendMu.Lock()
	r.mu.Unlock()
	defer r.sendMu.Unlock()

	log.Info("Plugin definition added", "type", id, "creator", creator, "active", active)

	r.definitionFeed.Send(PluginDefinitionAddedEvent{PluginTypeID: id, Creator: creator})
	return id, nil
}

// SetActive enables or disables a plugin type, creator only
func (r *PluginRegistry) SetActive(caller common.Address, pluginTypeID uint64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, err := r.definition(pluginTypeID)
	if err != nil {
		return err
	}
	if def.Creator != caller {
		return ErrNotPluginCreator
	}
	def.Active = active
	return nil
}

// GetPluginDefinition returns a plugin type
func (r *PluginRegistry) GetPluginDefinition(pluginTypeID uint64) (*PluginDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, err := r.definition(pluginTypeID)
	if err != nil {
		return nil, err
	}
	cpy := *def
	cpy.Price = new(uint256.Int).Set(def.Price)
	cpy.DependencyModules = append([]uint64(nil), def.DependencyModules...)
	return &cpy, nil
}

// AddPluginToDAO installs a deployed plugin into the DAO it is bound to. The
// caller must be an admin of that DAO.
func (r *PluginRegistry) AddPluginToDAO(caller common.Address, plugin Plugin, pluginTypeID uint64) (uint64, error) {
	r.mu.Lock()
	tokenID, err := r.addPluginToDAO(caller, plugin, pluginTypeID)
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.sendMu.Lock()
	r.mu.Unlock()
	defer r.sendMu.Unlock()

	log.Info("Plugin added to DAO", "token", tokenID, "type", pluginTypeID, "plugin", plugin.Address(), "dao", plugin.DAO())
	r.installFeed.Send(PluginAddedToDAOEvent{TokenID: tokenID, PluginTypeID: pluginTypeID, DAO: plugin.DAO()})
	return tokenID, nil
}

func (r *PluginRegistry) addPluginToDAO(caller common.Address, plugin Plugin, pluginTypeID uint64) (uint64, error) {
	def, err := r.definition(pluginTypeID)
	if err != nil {
		return 0, err
	}
	if !def.Active {
		return 0, ErrPluginTypeInactive
	}
	dao := plugin.DAO()
	ok, err := r.admins.IsDAOAdmin(dao, caller)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotDAOAdmin
	}
	if _, ok := r.installations[plugin.Address()]; ok {
		return 0, ErrPluginAlreadyInstalled
	}

	tokenID := r.lastTokenID + 1
	r.lastTokenID = tokenID
	r.installations[plugin.Address()] = &Installation{
		TokenID:      tokenID,
		PluginTypeID: pluginTypeID,
		Plugin:       plugin.Address(),
		DAO:          dao,
	}
	return tokenID, nil
}

// GetInstallation returns the installation record of a plugin
func (r *PluginRegistry) GetInstallation(plugin common.Address) (*Installation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.installations[plugin]
	if !ok {
		return nil, ErrPluginNotFound
	}
	cpy := *inst
	return &cpy, nil
}

// PluginsOfDAO returns the installations of a DAO ordered by token id
func (r *PluginRegistry) PluginsOfDAO(dao common.Address) []*Installation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Installation, 0)
	for _, inst := range r.installations {
		if inst.DAO == dao {
			cpy := *inst
			out = append(out, &cpy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

// SubscribePluginDefinitionAdded registers a subscription for PluginDefinitionAddedEvent.
// Events are delivered synchronously once the registry lock is released; a
// stalled subscriber holds up later registrations but not lookups.
func (r *PluginRegistry) SubscribePluginDefinitionAdded(ch chan<- PluginDefinitionAddedEvent) event.Subscription {
	return r.scope.Track(r.definitionFeed.Subscribe(ch))
}

// SubscribePluginAddedToDAO registers a subscription for PluginAddedToDAOEvent
func (r *PluginRegistry) SubscribePluginAddedToDAO(ch chan<- PluginAddedToDAOEvent) event.Subscription {
	return r.scope.Track(r.installFeed.Subscribe(ch))
}

// Close unsubscribes all event subscribers
func (r *PluginRegistry) Close() {
	r.scope.Close()
}

func (r *PluginRegistry) definition(id uint64) (*PluginDefinition, error) {
	if id == 0 || id > uint64(len(r.definitions)) {
		return nil, ErrUnknownPluginType
	}
	return r.definitions[id-1], nil
}
