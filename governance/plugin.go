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
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Plugin is the governance plugin of one DAO instance. It gates proposal
// creation and voting on DAO membership and forwards to the ProposalStore and
// VotingEngine.
//
// All mutating calls on a DAO are serialized, also across plugins bound to the
// same DAO on the same database. A call either passes every check, commits its
// state change and then emits its event, or fails without changing anything.
// Events are emitted after the DAO lock is released, in commit order.
type Plugin struct {
	address common.Address
	dao     common.Address

	oracle   MembershipOracle
	clock    Clock
	policies Policies

	store  *ProposalStore
	engine *VotingEngine

	mu     *sync.Mutex // DAO lock, shared with other plugins of the DAO on db
	sendMu sync.Mutex  // orders event delivery

	proposalFeed event.Feed
	voteFeed     event.Feed
	scope        event.SubscriptionScope
}

// NewPlugin creates the governance plugin deployed at address and bound to dao.
// The binding is fixed for the lifetime of the plugin.
func NewPlugin(db ethdb.KeyValueStore, address, dao common.Address, oracle MembershipOracle, clock Clock, policies Policies) *Plugin {
	policies = policies.withDefaults()
	return &Plugin{
		address:  address,
		dao:      dao,
		oracle:   oracle,
		clock:    clock,
		policies: policies,
		mu:       daoLock(db, dao, pluginLock),
		store:    NewProposalStore(db, dao),
		engine:   NewVotingEngine(db, dao, policies.Tally),
	}
}

// Address returns the address the plugin is deployed at
func (p *Plugin) Address() common.Address {
	return p.address
}

// DAO returns the DAO instance the plugin is bound to
func (p *Plugin) DAO() common.Address {
	return p.dao
}

// CreateProposal creates a proposal on behalf of caller. Membership is checked
// before anything else, so a stranger always gets ErrNotAMember.
func (p *Plugin) CreateProposal(ctx context.Context, caller common.Address, startTime, endTime uint64, metadata []byte) (uint64, error) {
	p.mu.Lock()
	id, err := p.createProposal(ctx, caller, startTime, endTime, metadata)
	if err != nil {
		p.mu.Unlock()
		proposalRejectedMeter.Mark(1)
		log.Debug("Governance: proposal rejected", "dao", p.dao, "creator", caller, "err", err)
		return 0, err
	}
	p.sendMu.Lock()
	p.mu.Unlock()
	defer p.sendMu.Unlock()

	proposalCreatedMeter.Mark(1)
	log.Info("Governance: proposal created", "dao", p.dao, "id", id, "creator", caller, "start", startTime, "end", endTime)

	p.proposalFeed.Send(ProposalCreatedEvent{
		ProposalID: id,
		Creator:    caller,
		StartTime:  startTime,
		EndTime:    endTime,
		Metadata:   common.CopyBytes(metadata),
	})
	return id, nil
}

func (p *Plugin) createProposal(ctx context.Context, caller common.Address, startTime, endTime uint64, metadata []byte) (uint64, error) {
	if err := p.checkMember(ctx, caller); err != nil {
		return 0, err
	}
	if startTime >= endTime {
		return 0, ErrInvalidWindow
	}
	now, err := p.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read clock: %w", err)
	}

	weight, err := p.oracle.WeightOf(ctx, p.dao, caller)
	if err != nil {
		return 0, fmt.Errorf("failed to read voting weight: %w", err)
	}
	if err := p.policies.Threshold.CheckProposer(ctx, p.dao, caller, weight); err != nil {
		return 0, err
	}

	last, hasPrevious, err := p.store.LastCreated(caller)
	if err != nil {
		return 0, err
	}
	if err := p.policies.Cooldown.CheckCooldown(caller, last, hasPrevious, now); err != nil {
		return 0, err
	}
	return p.store.Create(startTime, endTime, metadata, caller, now)
}

// Vote casts the vote of caller on a proposal. The weight is read from the
// membership oracle at the time of the vote.
func (p *Plugin) Vote(ctx context.Context, caller common.Address, proposalID uint64, support bool) error {
	p.mu.Lock()
	weight, score, err := p.vote(ctx, caller, proposalID, support)
	if err != nil {
		p.mu.Unlock()
		voteRejectedMeter.Mark(1)
		log.Debug("Governance: vote rejected", "dao", p.dao, "id", proposalID, "voter", caller, "err", err)
		return err
	}
	p.sendMu.Lock()
	p.mu.Unlock()
	defer p.sendMu.Unlock()

	voteCastMeter.Mark(1)
	log.Info("Governance: vote cast", "dao", p.dao, "id", proposalID, "voter", caller, "support", support, "weight", weight, "score", score)

	p.voteFeed.Send(VotedEvent{
		ProposalID: proposalID,
		Voter:      caller,
		Support:    support,
		Weight:     new(uint256.Int).Set(weight),
	})
	return nil
}

func (p *Plugin) vote(ctx context.Context, caller common.Address, proposalID uint64, support bool) (*uint256.Int, *uint256.Int, error) {
	if err := p.checkMember(ctx, caller); err != nil {
		return nil, nil, err
	}
	proposal, err := p.store.Get(proposalID)
	if err != nil {
		return nil, nil, err
	}
	weight, err := p.oracle.WeightOf(ctx, p.dao, caller)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read voting weight: %w", err)
	}
	now, err := p.clock.Now(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read clock: %w", err)
	}
	score, err := p.engine.CastVote(proposal, caller, support, weight, now)
	if err != nil {
		return nil, nil, err
	}
	return weight, score, nil
}

// GetVotingScore returns the current voting score of a proposal
func (p *Plugin) GetVotingScore(proposalID uint64) (*uint256.Int, error) {
	if _, err := p.store.Get(proposalID); err != nil {
		return nil, err
	}
	return p.engine.ScoreOf(proposalID)
}

// GetProposal returns a proposal
func (p *Plugin) GetProposal(proposalID uint64) (*Proposal, error) {
	return p.store.Get(proposalID)
}

// GetTally returns the yes/no tally of a proposal
func (p *Plugin) GetTally(proposalID uint64) (*Tally, error) {
	if _, err := p.store.Get(proposalID); err != nil {
		return nil, err
	}
	return p.engine.Tally(proposalID)
}

// GetProposalVotes returns all votes for a proposal
func (p *Plugin) GetProposalVotes(proposalID uint64) ([]*Vote, error) {
	if _, err := p.store.Get(proposalID); err != nil {
		return nil, err
	}
	return p.engine.Votes(proposalID)
}

// ProposalStatus returns the voting phase of a proposal at the current clock time
func (p *Plugin) ProposalStatus(ctx context.Context, proposalID uint64) (ProposalStatus, error) {
	proposal, err := p.store.Get(proposalID)
	if err != nil {
		return 0, err
	}
	now, err := p.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read clock: %w", err)
	}
	return proposal.Status(now), nil
}

// GetActiveProposals returns all proposals that currently accept votes
func (p *Plugin) GetActiveProposals(ctx context.Context) ([]*Proposal, error) {
	now, err := p.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read clock: %w", err)
	}
	all, err := p.store.All()
	if err != nil {
		return nil, err
	}
	active := make([]*Proposal, 0)
	for _, proposal := range all {
		if proposal.Status(now) == ProposalStatusOpen {
			active = append(active, proposal)
		}
	}
	return active, nil
}

// ProposalCount returns the number of proposals created so far
func (p *Plugin) ProposalCount() (uint64, error) {
	return p.store.Count()
}

// SubscribeProposalCreated registers a subscription for ProposalCreatedEvent.
// Delivery is synchronous: a subscriber that stops reading its channel stalls
// every later mutating call on the DAO until it drains or unsubscribes.
// Reads are not affected, the state is committed before the event is sent.
func (p *Plugin) SubscribeProposalCreated(ch chan<- ProposalCreatedEvent) event.Subscription {
	return p.scope.Track(p.proposalFeed.Subscribe(ch))
}

// SubscribeVoted registers a subscription for VotedEvent. Delivery follows the
// same rules as SubscribeProposalCreated.
func (p *Plugin) SubscribeVoted(ch chan<- VotedEvent) event.Subscription {
	return p.scope.Track(p.voteFeed.Subscribe(ch))
}

// Close unsubscribes all event subscribers
func (p *Plugin) Close() {
	p.scope.Close()
}

func (p *Plugin) checkMember(ctx context.Context, caller common.Address) error {
	ok, err := p.oracle.IsMember(ctx, p.dao, caller)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return ErrNotAMember
	}
	return nil
}
