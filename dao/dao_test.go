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

import (
	"context"
	"testing"
	"time"

	"github.com/aut-labs/nova-governance/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var _ governance.MembershipOracle = (*AutID)(nil)

var (
	autIDAddr    = common.HexToAddress("0x00000000000000000000000000000000000a0710")
	novaAddr     = common.HexToAddress("0x000000000000000000000000000000000000da00")
	registryAddr = common.HexToAddress("0x0000000000000000000000000000000000000e91")
	admin        = common.HexToAddress("0xad00000000000000000000000000000000000000")
	holder1      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	holder2      = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

const url = "https://something"

func deployTestDAO(t *testing.T) (*AutID, *Nova) {
	t.Helper()
	autID := NewAutID(autIDAddr, DefaultWeightFormula())
	t.Cleanup(autID.Close)
	nova, err := Deploy(novaAddr, admin, autID, 1, url, 10, registryAddr)
	require.NoError(t, err)
	return autID, nova
}

func TestWeightFormula(t *testing.T) {
	f := DefaultWeightFormula()
	require.Equal(t, "21", f.Weight(2, 5).String())
	require.Equal(t, uint64(3), f.Weight(1, 1).Uint64())
	require.Equal(t, uint64(61), f.Weight(3, 10).Uint64())

	custom := WeightFormula{Base: 0, Factor: 1}
	require.Equal(t, uint64(10), custom.Weight(2, 5).Uint64())
}

func TestDeploy(t *testing.T) {
	autID, nova := deployTestDAO(t)

	require.Equal(t, novaAddr, nova.Address())
	require.Equal(t, autIDAddr, nova.AutID())
	require.Equal(t, registryAddr, nova.PluginRegistry())
	require.Equal(t, uint8(1), nova.Market())
	require.Equal(t, uint8(10), nova.Commitment())
	require.Equal(t, url, nova.MetadataURI())
	require.True(t, nova.IsAdmin(admin))
	require.False(t, nova.IsAdmin(holder1))

	got, err := autID.GetDAO(novaAddr)
	require.NoError(t, err)
	require.Same(t, nova, got)

	_, err = Deploy(novaAddr, admin, autID, 1, url, 10, registryAddr)
	require.ErrorIs(t, err, ErrDAOAlreadyRegistered)

	_, err = NewNova(novaAddr, admin, autIDAddr, 0, url, 10, registryAddr)
	require.ErrorIs(t, err, ErrInvalidMarket)
	_, err = NewNova(novaAddr, admin, autIDAddr, 1, url, 11, registryAddr)
	require.ErrorIs(t, err, ErrInvalidCommitment)
}

func TestMint(t *testing.T) {
	autID, nova := deployTestDAO(t)
	ctx := context.Background()

	minted := make(chan MintedEvent, 1)
	sub := autID.SubscribeMinted(minted)
	defer sub.Unsubscribe()

	tokenID, err := autID.Mint(holder1, "username1", url, 2, 5, novaAddr)
	require.NoError(t, err)
	require.Equal(t, uint64(1), tokenID)
	require.Equal(t, MintedEvent{Holder: holder1, TokenID: 1, DAO: novaAddr}, <-minted)

	require.True(t, nova.IsMember(holder1))
	require.Equal(t, []common.Address{holder1}, nova.Members())

	ok, err := autID.IsMember(ctx, novaAddr, holder1)
	require.NoError(t, err)
	require.True(t, ok)

	weight, err := autID.WeightOf(ctx, novaAddr, holder1)
	require.NoError(t, err)
	require.Equal(t, "21", weight.String())

	identity, err := autID.GetIdentity(holder1)
	require.NoError(t, err)
	require.Equal(t, "username1", identity.Username)
	require.Equal(t, []common.Address{novaAddr}, identity.DAOs)

	member, err := nova.GetMember(holder1)
	require.NoError(t, err)
	require.Equal(t, uint8(2), member.Role)
	require.Equal(t, uint8(5), member.Commitment)
	require.Equal(t, uint64(1), member.TokenID)
}

func TestMint_Errors(t *testing.T) {
	autID, _ := deployTestDAO(t)

	_, err := autID.Mint(holder1, "username1", url, 2, 5, novaAddr)
	require.NoError(t, err)

	cases := []struct {
		name       string
		holder     common.Address
		username   string
		role       uint8
		commitment uint8
		dao        common.Address
		err        error
	}{
		{"already minted", holder1, "other", 1, 1, novaAddr, ErrAlreadyMinted},
		{"username taken", holder2, "UserName1", 1, 1, novaAddr, ErrUsernameTaken},
		{"empty username", holder2, "  ", 1, 1, novaAddr, ErrInvalidUsername},
		{"role zero", holder2, "u2", 0, 1, novaAddr, ErrInvalidRole},
		{"role too high", holder2, "u2", 4, 1, novaAddr, ErrInvalidRole},
		{"commitment zero", holder2, "u2", 1, 0, novaAddr, ErrInvalidCommitment},
		{"commitment too high", holder2, "u2", 1, 11, novaAddr, ErrInvalidCommitment},
		{"unknown dao", holder2, "u2", 1, 1, common.HexToAddress("0xbad"), ErrUnknownDAO},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := autID.Mint(c.holder, c.username, url, c.role, c.commitment, c.dao)
			require.ErrorIs(t, err, c.err)
		})
	}

	_, err = autID.GetIdentity(holder2)
	require.ErrorIs(t, err, ErrNotMinted)
}

func TestJoinDAO(t *testing.T) {
	autID, _ := deployTestDAO(t)
	ctx := context.Background()

	second, err := Deploy(common.HexToAddress("0xda01"), admin, autID, 2, url, 5, registryAddr)
	require.NoError(t, err)

	require.ErrorIs(t, autID.JoinDAO(holder1, 1, 1, second.Address()), ErrNotMinted)

	_, err = autID.Mint(holder1, "username1", url, 2, 5, novaAddr)
	require.NoError(t, err)
	require.ErrorIs(t, autID.JoinDAO(holder1, 2, 5, novaAddr), ErrAlreadyMember)

	joined := make(chan JoinedEvent, 1)
	sub := autID.SubscribeJoined(joined)
	defer sub.Unsubscribe()

	require.NoError(t, autID.JoinDAO(holder1, 3, 10, second.Address()))
	require.Equal(t, JoinedEvent{Holder: holder1, DAO: second.Address(), Role: 3, Commitment: 10}, <-joined)

	weight, err := autID.WeightOf(ctx, second.Address(), holder1)
	require.NoError(t, err)
	require.Equal(t, uint64(61), weight.Uint64())

	identity, err := autID.GetIdentity(holder1)
	require.NoError(t, err)
	require.Equal(t, []common.Address{novaAddr, second.Address()}, identity.DAOs)
}

func TestMembershipOracle_NonMembers(t *testing.T) {
	autID, _ := deployTestDAO(t)
	ctx := context.Background()

	ok, err := autID.IsMember(ctx, novaAddr, holder2)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = autID.IsMember(ctx, common.HexToAddress("0xbad"), holder2)
	require.NoError(t, err)
	require.False(t, ok)

	weight, err := autID.WeightOf(ctx, novaAddr, holder2)
	require.NoError(t, err)
	require.True(t, weight.IsZero())

	weight, err = autID.WeightOf(ctx, common.HexToAddress("0xbad"), holder1)
	require.NoError(t, err)
	require.True(t, weight.IsZero())
}

func TestAdmins(t *testing.T) {
	autID, nova := deployTestDAO(t)

	require.ErrorIs(t, nova.AddAdmin(holder1, holder2), ErrNotAdmin)
	require.ErrorIs(t, nova.AddAdmin(admin, holder2), ErrMemberNotFound)

	_, err := autID.Mint(holder2, "u2", url, 1, 1, novaAddr)
	require.NoError(t, err)
	require.NoError(t, nova.AddAdmin(admin, holder2))
	require.True(t, nova.IsAdmin(holder2))

	require.ErrorIs(t, nova.SetMetadataURI(holder1, "x"), ErrNotAdmin)
	require.NoError(t, nova.SetMetadataURI(holder2, "ipfs://new"))
	require.Equal(t, "ipfs://new", nova.MetadataURI())
}

func TestMint_StalledSubscriber(t *testing.T) {
	autID, nova := deployTestDAO(t)
	ch := make(chan MintedEvent) // never read
	sub := autID.SubscribeMinted(ch)

	done := make(chan error, 1)
	go func() {
		_, err := autID.Mint(holder1, "username1", url, 2, 5, nova.Address())
		done <- err
	}()

	// Membership lookups proceed while the event is pending
	require.Eventually(t, func() bool {
		ok, err := autID.IsMember(context.Background(), nova.Address(), holder1)
		return err == nil && ok
	}, 5*time.Second, time.Millisecond)
	weight, err := autID.WeightOf(context.Background(), nova.Address(), holder1)
	require.NoError(t, err)
	require.Equal(t, uint64(21), weight.Uint64())

	sub.Unsubscribe()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Mint still blocked after unsubscribe")
	}
}
