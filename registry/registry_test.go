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

package registry

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	testDAO  = common.HexToAddress("0xda00")
	admin    = common.HexToAddress("0xad00")
	verifier = common.HexToAddress("0xfe00")
	stranger = common.HexToAddress("0x9999")
)

type mockAdmins map[common.Address]common.Address // dao -> admin

func (m mockAdmins) IsDAOAdmin(dao common.Address, addr common.Address) (bool, error) {
	a, ok := m[dao]
	if !ok {
		return false, nil
	}
	return a == addr, nil
}

type mockPlugin struct {
	address common.Address
	dao     common.Address
}

func (p mockPlugin) Address() common.Address { return p.address }
func (p mockPlugin) DAO() common.Address     { return p.dao }

func newTestRegistry(t *testing.T) *PluginRegistry {
	t.Helper()
	modules := NewModuleRegistry(common.HexToAddress("0x0d"))
	r := NewPluginRegistry(common.HexToAddress("0x0e"), modules, mockAdmins{testDAO: admin})
	t.Cleanup(r.Close)
	return r
}

func TestModuleRegistry(t *testing.T) {
	modules := NewModuleRegistry(common.HexToAddress("0x0d"))

	m, err := modules.GetModule(GovernanceModuleID)
	require.NoError(t, err)
	require.Equal(t, "governance", m.MetadataURI)

	id, err := modules.AddModule("ipfs://tasks")
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)
	require.True(t, modules.Exists(2))
	require.False(t, modules.Exists(3))
	require.False(t, modules.Exists(0))

	_, err = modules.AddModule("")
	require.ErrorIs(t, err, ErrInvalidMetadata)
}

func TestAddPluginDefinition(t *testing.T) {
	r := newTestRegistry(t)

	ch := make(chan PluginDefinitionAddedEvent, 1)
	sub := r.SubscribePluginDefinitionAdded(ch)
	defer sub.Unsubscribe()

	id, err := r.AddPluginDefinition(verifier, "https://something", nil, true, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.Equal(t, PluginDefinitionAddedEvent{PluginTypeID: 1, Creator: verifier}, <-ch)

	def, err := r.GetPluginDefinition(id)
	require.NoError(t, err)
	require.True(t, def.Active)
	require.True(t, def.Price.IsZero())

	id, err = r.AddPluginDefinition(verifier, "https://other", uint256.NewInt(5), false, []uint64{GovernanceModuleID})
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)

	_, err = r.AddPluginDefinition(verifier, "https://bad", nil, true, []uint64{42})
	require.ErrorIs(t, err, ErrUnknownModule)
	_, err = r.AddPluginDefinition(verifier, "", nil, true, nil)
	require.ErrorIs(t, err, ErrInvalidMetadata)
	_, err = r.GetPluginDefinition(3)
	require.ErrorIs(t, err, ErrUnknownPluginType)
}

func TestAddPluginToDAO(t *testing.T) {
	r := newTestRegistry(t)
	typeID, err := r.AddPluginDefinition(verifier, "https://something", nil, true, nil)
	require.NoError(t, err)

	ch := make(chan PluginAddedToDAOEvent, 1)
	sub := r.SubscribePluginAddedToDAO(ch)
	defer sub.Unsubscribe()

	plugin := mockPlugin{address: common.HexToAddress("0x1001"), dao: testDAO}

	_, err = r.AddPluginToDAO(stranger, plugin, typeID)
	require.ErrorIs(t, err, ErrNotDAOAdmin)

	tokenID, err := r.AddPluginToDAO(admin, plugin, typeID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), tokenID)
	require.Equal(t, PluginAddedToDAOEvent{TokenID: 1, PluginTypeID: typeID, DAO: testDAO}, <-ch)

	_, err = r.AddPluginToDAO(admin, plugin, typeID)
	require.ErrorIs(t, err, ErrPluginAlreadyInstalled)

	inst, err := r.GetInstallation(plugin.Address())
	require.NoError(t, err)
	require.Equal(t, testDAO, inst.DAO)

	second := mockPlugin{address: common.HexToAddress("0x1002"), dao: testDAO}
	tokenID, err = r.AddPluginToDAO(admin, second, typeID)
	require.NoError(t, err)
	require.Equal(t, uint64(2), tokenID)

	installed := r.PluginsOfDAO(testDAO)
	require.Len(t, installed, 2)
	require.Equal(t, plugin.Address(), installed[0].Plugin)
	require.Equal(t, second.Address(), installed[1].Plugin)

	_, err = r.GetInstallation(stranger)
	require.ErrorIs(t, err, ErrPluginNotFound)
}

func TestAddPluginToDAO_InactiveType(t *testing.T) {
	r := newTestRegistry(t)
	typeID, err := r.AddPluginDefinition(verifier, "https://something", nil, false, nil)
	require.NoError(t, err)
	plugin := mockPlugin{address: common.HexToAddress("0x1001"), dao: testDAO}

	_, err = r.AddPluginToDAO(admin, plugin, typeID)
	require.ErrorIs(t, err, ErrPluginTypeInactive)
	_, err = r.AddPluginToDAO(admin, plugin, 99)
	require.ErrorIs(t, err, ErrUnknownPluginType)

	require.ErrorIs(t, r.SetActive(stranger, typeID, true), ErrNotPluginCreator)
	require.NoError(t, r.SetActive(verifier, typeID, true))

	_, err = r.AddPluginToDAO(admin, plugin, typeID)
	require.NoError(t, err)
}

func TestAddPluginToDAO_StalledSubscriber(t *testing.T) {
	r := newTestRegistry(t)
	typeID, err := r.AddPluginDefinition(verifier, "ipfs://governance", nil, true, []uint64{GovernanceModuleID})
	require.NoError(t, err)

	ch := make(chan PluginAddedToDAOEvent) // never read
	sub := r.SubscribePluginAddedToDAO(ch)

	plugin := mockPlugin{address: common.HexToAddress("0x1001"), dao: testDAO}
	done := make(chan error, 1)
	go func() {
		_, err := r.AddPluginToDAO(admin, plugin, typeID)
		done <- err
	}()

	require.Eventually(t, func() bool {
		_, err := r.GetInstallation(plugin.address)
		return err == nil
	}, 5*time.Second, time.Millisecond)
	require.Len(t, r.PluginsOfDAO(testDAO), 1)

	sub.Unsubscribe()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("AddPluginToDAO still blocked after unsubscribe")
	}
}
