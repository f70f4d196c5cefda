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
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
)

// Lock domains of a DAO. A plugin call holds pluginLock while it calls into
// the store and the engine, so those take separate locks.
const (
	pluginLock uint8 = iota
	proposalLock
	voteLock
)

type lockKey struct {
	db     ethdb.KeyValueStore
	dao    common.Address
	domain uint8
}

// daoLocks holds one mutex per database, DAO and lock domain. Database
// handles are compared by identity, every ethdb implementation is a pointer.
var daoLocks sync.Map // lockKey -> *sync.Mutex

// daoLock returns the mutex guarding a lock domain of dao on db
func daoLock(db ethdb.KeyValueStore, dao common.Address, domain uint8) *sync.Mutex {
	mu, _ := daoLocks.LoadOrStore(lockKey{db: db, dao: dao, domain: domain}, new(sync.Mutex))
	return mu.(*sync.Mutex)
}
