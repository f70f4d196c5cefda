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
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"
)

// Membership view functions of the on-chain identity registry
const membershipABI = `[
	{
		"name": "isMemberOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"type": "address", "name": "dao"}, {"type": "address", "name": "member"}],
		"outputs": [{"type": "bool"}]
	},
	{
		"name": "votingWeight",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"type": "address", "name": "dao"}, {"type": "address", "name": "member"}],
		"outputs": [{"type": "uint256"}]
	}
]`

// MembershipABI returns the parsed ABI used by ContractOracle
func MembershipABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(membershipABI))
}

// ContractOracle answers membership queries by calling an identity registry
// contract through eth_call
type ContractOracle struct {
	client  *ethclient.Client
	address common.Address
	abi     abi.ABI
}

// NewContractOracle creates an oracle for the registry contract at address
func NewContractOracle(client *ethclient.Client, address common.Address) (*ContractOracle, error) {
	parsedABI, err := MembershipABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &ContractOracle{
		client:  client,
		address: address,
		abi:     parsedABI,
	}, nil
}

// IsMember implements governance.MembershipOracle
func (o *ContractOracle) IsMember(ctx context.Context, dao common.Address, addr common.Address) (bool, error) {
	result, err := o.call(ctx, "isMemberOf", dao, addr)
	if err != nil {
		return false, err
	}
	var member bool
	if err := o.abi.UnpackIntoInterface(&member, "isMemberOf", result); err != nil {
		return false, fmt.Errorf("failed to unpack result: %w", err)
	}
	return member, nil
}

// WeightOf implements governance.MembershipOracle
func (o *ContractOracle) WeightOf(ctx context.Context, dao common.Address, addr common.Address) (*uint256.Int, error) {
	result, err := o.call(ctx, "votingWeight", dao, addr)
	if err != nil {
		return nil, err
	}
	var weight *big.Int
	if err := o.abi.UnpackIntoInterface(&weight, "votingWeight", result); err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}
	w, overflow := uint256.FromBig(weight)
	if overflow {
		return nil, fmt.Errorf("voting weight overflows uint256: %v", weight)
	}
	return w, nil
}

func (o *ContractOracle) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	data, err := o.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack function call: %w", err)
	}
	msg := ethereum.CallMsg{
		To:   &o.address,
		Data: data,
	}
	result, err := o.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	return result, nil
}
