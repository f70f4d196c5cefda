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

package main

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(append([]string{"novagov", "--verbosity", "0"}, args...)))
	return out.String()
}

func TestDemoAndInspect(t *testing.T) {
	t.Setenv("NOVAGOV_DATADIR", "")
	t.Setenv("NOVAGOV_RPC_URL", "")
	datadir := t.TempDir()

	out := runApp(t, "demo", "--datadir", datadir)
	require.Contains(t, out, "Voting score of proposal 2: 21")

	m := regexp.MustCompile(`--dao (0x[0-9a-fA-F]{40})`).FindStringSubmatch(out)
	require.Len(t, m, 2, "demo output: %s", out)

	out = runApp(t, "inspect", "--datadir", datadir, "--dao", m[1])
	require.Contains(t, out, "2 proposals")
	require.Contains(t, out, "#1 ")
	require.Contains(t, out, "#2 ")
	require.Contains(t, out, "for=21 against=0 voters=1 score=21")
}

func TestInspectRequiresDatadir(t *testing.T) {
	t.Setenv("NOVAGOV_DATADIR", "")
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"novagov", "inspect", "--dao", "0x0000000000000000000000000000000000000001"})
	require.Error(t, err)
}

func TestInspectRejectsBadAddress(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"novagov", "inspect", "--datadir", t.TempDir(), "--dao", "nope"})
	require.ErrorContains(t, err, "invalid DAO address")
}
