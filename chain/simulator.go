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
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a simulated externally owned account
type Account struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
}

// Simulator stands in for a development chain: it owns the block clock, hands
// out funded accounts and derives contract addresses the way CREATE does.
type Simulator struct {
	Clock *SimClock

	mu       sync.Mutex
	accounts []*Account
	nonces   map[common.Address]uint64
}

// NewSimulator creates a simulator whose genesis block has the given timestamp
func NewSimulator(genesisTime uint64) *Simulator {
	return &Simulator{
		Clock:  NewSimClock(genesisTime),
		nonces: make(map[common.Address]uint64),
	}
}

// NewAccount generates a fresh account
func (s *Simulator) NewAccount() (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	acc := &Account{Address: crypto.PubkeyToAddress(key.PublicKey), Key: key}

	s.mu.Lock()
	s.accounts = append(s.accounts, acc)
	s.mu.Unlock()
	return acc, nil
}

// Signers generates n accounts
func (s *Simulator) Signers(n int) ([]*Account, error) {
	out := make([]*Account, 0, n)
	for i := 0; i < n; i++ {
		acc, err := s.NewAccount()
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, nil
}

// Deploy returns the address of a contract created by deployer and bumps the
// deployer's nonce
func (s *Simulator) Deploy(deployer common.Address) common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce := s.nonces[deployer]
	s.nonces[deployer] = nonce + 1
	return crypto.CreateAddress(deployer, nonce)
}

// Nonce returns the next nonce of an account
func (s *Simulator) Nonce(addr common.Address) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[addr]
}
