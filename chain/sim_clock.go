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

package chain

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// SimClock is a block clock for simulations and tests. Like a development
// chain, time only moves when a block is mined: IncreaseTime schedules an
// offset that the next Mine applies.
type SimClock struct {
	mu        sync.Mutex
	number    uint64
	timestamp uint64
	pending   uint64
}

// NewSimClock creates a clock whose genesis block has the given timestamp
func NewSimClock(genesisTime uint64) *SimClock {
	return &SimClock{timestamp: genesisTime}
}

// Now returns the timestamp of the latest block
func (c *SimClock) Now(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timestamp, nil
}

// BlockNumber returns the number of the latest block
func (c *SimClock) BlockNumber() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.number
}

// IncreaseTime adds seconds to the timestamp of the next mined block
func (c *SimClock) IncreaseTime(seconds uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending += seconds
}

// Mine produces a block. Its timestamp is the previous one plus the pending
// offset, or plus one second when no offset was scheduled.
func (c *SimClock) Mine() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.pending
	if step == 0 {
		step = 1
	}
	c.pending = 0
	c.number++
	c.timestamp += step
	log.Debug("Simulated block mined", "number", c.number, "time", c.timestamp)
	return c.timestamp
}
