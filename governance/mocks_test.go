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
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var errOracleDown = errors.New("oracle unavailable")

// mockOracle is a MembershipOracle backed by a map of member weights
type mockOracle struct {
	mu      sync.Mutex
	dao     common.Address
	members map[common.Address]*uint256.Int
	fail    bool
}

func newMockOracle(dao common.Address) *mockOracle {
	return &mockOracle{
		dao:     dao,
		members: make(map[common.Address]*uint256.Int),
	}
}

func (m *mockOracle) addMember(addr common.Address, weight uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[addr] = uint256.NewInt(weight)
}

func (m *mockOracle) IsMember(_ context.Context, dao common.Address, addr common.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errOracleDown
	}
	if dao != m.dao {
		return false, nil
	}
	_, ok := m.members[addr]
	return ok, nil
}

func (m *mockOracle) WeightOf(_ context.Context, dao common.Address, addr common.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errOracleDown
	}
	w, ok := m.members[addr]
	if !ok || dao != m.dao {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Set(w), nil
}

// mockClock is a Clock that only moves when told to
type mockClock struct {
	mu  sync.Mutex
	now uint64
}

func (c *mockClock) Now(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now, nil
}

func (c *mockClock) set(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *mockClock) advance(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}
