// SPDX-License-Identifier: AGPL-3.0-or-later
// DMRHub - Run a DMR network server in a single binary
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/DMRHub>

package persist_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USA-RedDragon/calico-vs/internal/persist"
	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

func newAgent(t *testing.T, id uint8) *vs.Agent {
	t.Helper()
	a := vs.NewAgent(vs.Options{Size: 16})
	a.Init(id)
	a.SetLocation(3, 4)
	return a
}

func TestCaptureRoundTripsThroughMarshal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newAgent(t, 7)
	a.Put(ctx, 1, 100)
	a.Put(ctx, 2, 200)

	snap := persist.Capture(a)
	assert.Equal(t, uint8(7), snap.AgentID)
	assert.Len(t, snap.Tuples, 2)

	data, err := persist.Marshal(snap)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	got, err := persist.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, snap.AgentID, got.AgentID)
	assert.Equal(t, snap.LocX, got.LocX)
	assert.Equal(t, snap.LocY, got.LocY)
	require.Len(t, got.Tuples, 2)
	for i := range snap.Tuples {
		assert.Equal(t, snap.Tuples[i], got.Tuples[i])
	}
}

func TestRestoreLoadsTuplesIntoFreshAgent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	src := newAgent(t, 1)
	src.Put(ctx, 5, 55)
	src.Put(ctx, 6, 66)
	snap := persist.Capture(src)

	dst := newAgent(t, 1)
	assert.False(t, dst.Has(5))
	persist.Restore(ctx, dst, snap)

	assert.True(t, dst.Has(5))
	assert.True(t, dst.Has(6))
	assert.Equal(t, uint16(55), dst.Get(ctx, 5))
	assert.Equal(t, uint16(66), dst.Get(ctx, 6))
}

func TestUnmarshalEmptySnapshot(t *testing.T) {
	t.Parallel()
	data, err := persist.Marshal(persist.TableSnapshot{AgentID: 3})
	require.NoError(t, err)

	got, err := persist.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), got.AgentID)
	assert.Empty(t, got.Tuples)
}
