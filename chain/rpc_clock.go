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
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCClock reads the time from the latest block of a node
type RPCClock struct {
	client *ethclient.Client

	mu   sync.Mutex
	last uint64
}

// NewRPCClock creates a clock on top of an RPC client
func NewRPCClock(client *ethclient.Client) *RPCClock {
	return &RPCClock{client: client}
}

// DialRPCClock connects to rawurl and returns a clock reading from it
func DialRPCClock(ctx context.Context, rawurl string) (*RPCClock, error) {
	client, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawurl, err)
	}
	return NewRPCClock(client), nil
}

// Now returns the timestamp of the latest block. A node that reorgs to a block
// with an older timestamp does not make the clock go backwards.
func (c *RPCClock) Now(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch latest header: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if header.Time > c.last {
		c.last = header.Time
	}
	return c.last, nil
}

// Client returns the underlying RPC client
func (c *RPCClock) Client() *ethclient.Client {
	return c.client
}

// Close closes the underlying client
func (c *RPCClock) Close() {
	c.client.Close()
}
