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

import "errors"

// DAO errors
var (
	ErrNotAdmin          = errors.New("not an admin")
	ErrInvalidMarket     = errors.New("invalid market")
	ErrInvalidCommitment = errors.New("invalid commitment")
	ErrMemberNotFound    = errors.New("member not found")
	ErrAlreadyMember     = errors.New("already a member")
)

// AutID errors
var (
	ErrAlreadyMinted        = errors.New("AutID already minted")
	ErrNotMinted            = errors.New("AutID not minted")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidUsername      = errors.New("invalid username")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUnknownDAO           = errors.New("DAO not registered")
	ErrDAOAlreadyRegistered = errors.New("DAO already registered")
)
