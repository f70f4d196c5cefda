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

import "errors"

// Proposal errors
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidWindow    = errors.New("invalid voting window: start must be before end")
)

// Membership errors
var (
	ErrNotAMember     = errors.New("not a member")
	ErrBelowThreshold = errors.New("proposer weight below threshold")
	ErrCooldownActive = errors.New("proposal cooldown still active")
)

// Voting errors
var (
	ErrVotingNotStarted = errors.New("voting has not started")
	ErrVotingEnded      = errors.New("voting period has ended")
	ErrAlreadyVoted     = errors.New("voter has already voted on this proposal")
	ErrZeroWeight       = errors.New("voter has zero voting weight")
	ErrTallyOverflow    = errors.New("tally exceeds uint256")
	ErrVoteNotFound     = errors.New("vote not found")
)
