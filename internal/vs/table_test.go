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

package vs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertInvariants(t *testing.T, tb *table) {
	t.Helper()
	assert.True(t, tb.activeHead >= 0)
	assert.True(t, tb.passiveHead <= tb.size-1)
	assert.True(t, tb.activeHead <= tb.passiveHead+1)

	seen := map[uint8]int{}
	for i := 0; i < tb.activeHead; i++ {
		if tb.tuples[i].Timestamp > 0 {
			seen[tb.tuples[i].Key]++
		}
	}
	for i := tb.size - 1; i > tb.passiveHead; i-- {
		if tb.tuples[i].Timestamp > 0 {
			seen[tb.tuples[i].Key]++
		}
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "key %d duplicated across segments", key)
	}
}

func TestTableInsertRetrieveAgent(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	tb.Insert(ctx, 5, Tuple{Key: 5, Value: 42, ID: 1, Timestamp: 1}, true, 0, 0)
	assertInvariants(t, tb)

	got := tb.Retrieve(ctx, 5, true, 0, 0)
	assert.Equal(t, uint16(42), got.Value)
	assert.True(t, tb.Has(5))
	assert.Equal(t, 1, tb.Size())
}

func TestTableRetrieveMissingReturnsZero(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	got := tb.Retrieve(ctx, 9, false, 0, 0)
	assert.Equal(t, Tuple{}, got)
	assert.False(t, tb.Has(9))
}

// I4: the access clock is strictly monotone per operation.
func TestTableClockMonotone(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	before := tb.clock
	tb.Insert(ctx, 1, Tuple{Key: 1, Value: 1, ID: 1, Timestamp: 1}, true, 0, 0)
	assert.Greater(t, tb.clock, before)

	before = tb.clock
	tb.Retrieve(ctx, 1, true, 0, 0)
	assert.Greater(t, tb.clock, before)

	before = tb.clock
	tb.Retrieve(ctx, 2, false, 0, 0) // miss still ticks
	assert.Greater(t, tb.clock, before)
}

// I5: after putAt(k,v,x,y) the immediately-subsequent getTuple(k) returns
// value=v, posX=x, posY=y, id=localId, timestamp one greater than before.
func TestTablePutThenGetReflectsWrite(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	tb.Insert(ctx, 3, Tuple{Key: 3, Value: 7, PosX: 10, PosY: 20, ID: 9, Timestamp: 1}, true, 10, 20)
	got := tb.Retrieve(ctx, 3, true, 10, 20)

	assert.Equal(t, uint16(7), got.Value)
	assert.Equal(t, uint8(10), got.PosX)
	assert.Equal(t, uint8(20), got.PosY)
	assert.Equal(t, uint8(9), got.ID)
	assert.Equal(t, uint16(1), got.Timestamp)
}

// B2: with VS_SIZE=8, floors of 1, inserting nine distinct agent-driven
// keys leaves exactly 8 valid slots.
func TestTableInsertBeyondCapacityEvicts(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	for k := uint8(0); k < 9; k++ {
		tb.Insert(ctx, k, Tuple{Key: k, Value: uint16(k), ID: 1, Timestamp: 1}, true, 0, 0)
		assertInvariants(t, tb)
	}
	assert.Equal(t, 8, tb.Size())
	// The first key inserted should no longer be active-fresh; it was
	// either demoted to passive or evicted entirely by the time 9 keys
	// have cycled through an 8-slot table with floor 1.
	idx := tb.findIndex(0)
	if idx != -1 {
		assert.True(t, tb.isPassiveIndex(idx))
	}
}

// B3: a passive insert whose distance exceeds every existing passive
// tuple's distance is dropped when the passive segment is full.
func TestTablePassiveInsertDroppedWhenFurther(t *testing.T) {
	t.Parallel()
	// Minimize active floor so passive can fill the whole table.
	tb := newTable(8, 1, 1, 100, 1000)
	ctx := context.Background()

	for k := uint8(0); k < 7; k++ {
		tb.Insert(ctx, k, Tuple{Key: k, Value: 1, PosX: 1, PosY: 1, ID: 2, Timestamp: 1}, false, 0, 0)
	}
	assertInvariants(t, tb)

	before := tb.Size()
	tb.Insert(ctx, 200, Tuple{Key: 200 & keyMask, Value: 1, PosX: 250, PosY: 250, ID: 2, Timestamp: 1}, false, 0, 0)
	assert.Equal(t, before, tb.Size())
	assert.False(t, tb.Has(200&keyMask))
}

// Promotion on agent read: a passively-learned tuple moves to the active
// segment on an agent-driven retrieve, leaving Size() unchanged.
func TestTablePromotionOnAgentRetrieve(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	tb.Insert(ctx, 5, Tuple{Key: 5, Value: 42, ID: 2, Timestamp: 1}, false, 0, 0)
	idx := tb.findIndex(5)
	assert.True(t, tb.isPassiveIndex(idx))
	sizeBefore := tb.Size()

	tb.Retrieve(ctx, 5, true, 0, 0)
	idx = tb.findIndex(5)
	assert.False(t, tb.isPassiveIndex(idx))
	assert.Equal(t, sizeBefore, tb.Size())
}

func TestTableGetTupleAtScansRadius(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 100, 100)
	ctx := context.Background()

	tb.Insert(ctx, 1, Tuple{Key: 1, PosX: 0, PosY: 0, ID: 1, Timestamp: 1}, true, 0, 0)
	tb.Insert(ctx, 2, Tuple{Key: 2, PosX: 50, PosY: 50, ID: 1, Timestamp: 1}, true, 0, 0)

	out := make([]Tuple, 8)
	count := tb.GetTupleAt(0, 0, 5, out)
	assert.Equal(t, 1, count)
	assert.Equal(t, uint8(1), out[0].Key)
}

func TestTablePruneTuplesByAge(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 2, 1000)
	ctx := context.Background()

	tb.Insert(ctx, 1, Tuple{Key: 1, ID: 1, Timestamp: 1}, true, 0, 0)
	// Advance the clock well past maxAge with unrelated operations.
	for i := 0; i < 10; i++ {
		tb.Retrieve(ctx, 99, false, 0, 0)
	}

	removed := tb.PruneTuples(ctx, 0, 0)
	assert.Equal(t, 1, removed)
	assert.False(t, tb.Has(1))
}

func TestTablePruneTuplesByDistance(t *testing.T) {
	t.Parallel()
	tb := newTable(8, 1, 1, 1000, 10)
	ctx := context.Background()

	tb.Insert(ctx, 1, Tuple{Key: 1, PosX: 200, PosY: 200, ID: 1, Timestamp: 1}, true, 0, 0)
	removed := tb.PruneTuples(ctx, 0, 0)
	assert.Equal(t, 1, removed)
	assert.False(t, tb.Has(1))
}
