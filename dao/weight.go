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

import "github.com/holiman/uint256"

const (
	MinRole       = 1
	MaxRole       = 3
	MinCommitment = 1
	MaxCommitment = 10
	MinMarket     = 1
	MaxMarket     = 3
)

// WeightFormula derives a member's voting weight from the role and commitment
// level it joined the DAO with:
//
//	weight = Base + Factor * role * commitment
//
// With the default parameters a member with role 2 and commitment 5 holds a
// weight of 21.
type WeightFormula struct {
	Base   uint64
	Factor uint64
}

// DefaultWeightFormula returns the default weight parameters
func DefaultWeightFormula() WeightFormula {
	return WeightFormula{Base: 1, Factor: 2}
}

// Weight returns the voting weight for role and commitment
func (f WeightFormula) Weight(role, commitment uint8) *uint256.Int {
	w := uint256.NewInt(uint64(role))
	w.Mul(w, uint256.NewInt(uint64(commitment)))
	w.Mul(w, uint256.NewInt(f.Factor))
	return w.Add(w, uint256.NewInt(f.Base))
}
