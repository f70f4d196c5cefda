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
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Module is a category of functionality plugins can depend on
type Module struct {
	ID          uint64
	MetadataURI string
}

// ModuleRegistry holds the module definitions known to the plugin registry.
// Module 1 is always the governance module.
type ModuleRegistry struct {
	address common.Address

	mu      sync.RWMutex
	modules []*Module
}

// GovernanceModuleID is the id of the built-in governance module
const GovernanceModuleID = 1

// NewModuleRegistry creates a module registry containing the governance module
func NewModuleRegistry(address common.Address) *ModuleRegistry {
	return &ModuleRegistry{
		address: address,
		modules: []*Module{{ID: GovernanceModuleID, MetadataURI: "governance"}},
	}
}

func (r *ModuleRegistry) Address() common.Address { return r.address }

// AddModule registers a new module and returns its id
func (r *ModuleRegistry) AddModule(metadataURI string) (uint64, error) {
	if metadataURI == "" {
		return 0, ErrInvalidMetadata
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uint64(len(r.modules) + 1)
	r.modules = append(r.modules, &Module{ID: id, MetadataURI: metadataURI})
	return id, nil
}

// GetModule returns a module definition
func (r *ModuleRegistry) GetModule(id uint64) (*Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id == 0 || id > uint64(len(r.modules)) {
		return nil, ErrUnknownModule
	}
	m := *r.modules[id-1]
	return &m, nil
}

// Exists reports whether a module id is defined
func (r *ModuleRegistry) Exists(id uint64) bool {
	_, err := r.GetModule(id)
	return err == nil
}
