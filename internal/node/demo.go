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

package node

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aut-labs/nova-governance/governance"
	"github.com/aut-labs/nova-governance/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const demoURL = "https://something"

// DemoResult summarizes a demo run
type DemoResult struct {
	DAO          common.Address
	Plugin       common.Address
	Member       common.Address
	PluginTypeID uint64
	TokenID      uint64
	ProposalID   uint64
	Score        *uint256.Int
}

// RunDemo walks through the lifecycle of a governance plugin on the simulator:
// a DAO is deployed, a member with role 2 and commitment 5 joins, the plugin
// is installed, a stranger is turned away, and the member creates a proposal
// and votes on it once its window opens. Progress is written to w.
func RunDemo(ctx context.Context, n *Node, w io.Writer) (*DemoResult, error) {
	if n.sim == nil {
		return nil, ErrNotSimulated
	}
	signers, err := n.sim.Signers(4)
	if err != nil {
		return nil, err
	}
	admin, verifier, member, stranger := signers[0].Address, signers[1].Address, signers[2].Address, signers[3].Address

	pluginTypeID, err := n.registry.AddPluginDefinition(verifier, demoURL, nil, true, []uint64{registry.GovernanceModuleID})
	if err != nil {
		return nil, fmt.Errorf("plugin definition: %w", err)
	}
	nova, err := n.DeployDAO(admin, 1, demoURL, 10)
	if err != nil {
		return nil, fmt.Errorf("dao deployment: %w", err)
	}
	fmt.Fprintf(w, "DAO deployed at %s (admin %s)\n", nova.Address().Hex(), admin.Hex())

	tokenID, err := n.autID.Mint(member, "username1", demoURL, 2, 5, nova.Address())
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	weight, err := n.autID.WeightOf(ctx, nova.Address(), member)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "AutID #%d minted for %s, voting weight %s\n", tokenID, member.Hex(), weight)

	start, err := n.clock.Now(ctx)
	if err != nil {
		return nil, err
	}

	plugin, err := n.DeployGovernancePlugin(admin, nova.Address())
	if err != nil {
		return nil, err
	}
	created := make(chan governance.ProposalCreatedEvent, 4)
	voted := make(chan governance.VotedEvent, 4)
	createdSub := plugin.SubscribeProposalCreated(created)
	defer createdSub.Unsubscribe()
	votedSub := plugin.SubscribeVoted(voted)
	defer votedSub.Unsubscribe()

	installed, err := n.registry.AddPluginToDAO(admin, plugin, pluginTypeID)
	if err != nil {
		return nil, fmt.Errorf("plugin installation: %w", err)
	}
	fmt.Fprintf(w, "PluginAddedToDAO(%d, %d, %s)\n", installed, pluginTypeID, nova.Address().Hex())

	if _, err := plugin.CreateProposal(ctx, member, start+100, start+101, []byte(demoURL)); err != nil {
		return nil, err
	}
	printCreated(w, <-created)

	if _, err := plugin.CreateProposal(ctx, stranger, start+100, start+101, []byte(demoURL)); !errors.Is(err, governance.ErrNotAMember) {
		return nil, fmt.Errorf("stranger proposal: expected %v, got %v", governance.ErrNotAMember, err)
	}
	fmt.Fprintf(w, "Stranger %s rejected: %v\n", stranger.Hex(), governance.ErrNotAMember)

	n.sim.Clock.IncreaseTime(3600)
	n.sim.Clock.Mine()

	id, err := plugin.CreateProposal(ctx, member, start+3600+100, start+3600+1000, []byte(demoURL))
	if err != nil {
		return nil, err
	}
	printCreated(w, <-created)

	n.sim.Clock.IncreaseTime(100)
	n.sim.Clock.Mine()

	if err := plugin.Vote(ctx, member, id, true); err != nil {
		return nil, err
	}
	ev := <-voted
	fmt.Fprintf(w, "Voted(%d, %s, %t, %s)\n", ev.ProposalID, ev.Voter.Hex(), ev.Support, ev.Weight)

	score, err := plugin.GetVotingScore(id)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Voting score of proposal %d: %s\n", id, score)

	return &DemoResult{
		DAO:          nova.Address(),
		Plugin:       plugin.Address(),
		Member:       member,
		PluginTypeID: pluginTypeID,
		TokenID:      installed,
		ProposalID:   id,
		Score:        score,
	}, nil
}

func printCreated(w io.Writer, ev governance.ProposalCreatedEvent) {
	fmt.Fprintf(w, "ProposalCreated(%d, %s, %d, %d, %q)\n", ev.ProposalID, ev.Creator.Hex(), ev.StartTime, ev.EndTime, ev.Metadata)
}
