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

import "errors"

var (
	ErrUnknownModule          = errors.New("unknown module")
	ErrUnknownPluginType      = errors.New("unknown plugin type")
	ErrPluginTypeInactive     = errors.New("plugin type is not active")
	ErrNotDAOAdmin            = errors.New("caller is not a DAO admin")
	ErrPluginAlreadyInstalled = errors.New("plugin already added to a DAO")
	ErrPluginNotFound         = errors.New("plugin not found")
	ErrNotPluginCreator       = errors.New("caller is not the plugin type creator")
	ErrInvalidMetadata        = errors.New("invalid metadata URI")
)
