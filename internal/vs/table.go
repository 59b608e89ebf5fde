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
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("vs")

// table is the fixed-capacity dual-segment store backing an Agent. Its
// surface is unexported: only Agent and Protocol in this package reach
// into it.
//
// A single array holds two segments sharing the backing storage: the
// active segment grows from index 0 upward ([0, activeHead)), the passive
// segment grows from the top down ((passiveHead, size-1]); the span
// [activeHead, passiveHead] is free. This lets demotion/promotion happen
// in place without allocation.
type table struct {
	tuples      []Tuple
	activeHead  int
	passiveHead int

	size       int
	minActive  int
	minPassive int

	clock uint64

	maxAge      uint64
	maxDistance float64
}

// newTable allocates a table with size slots. minActive/minPassive default
// to size/8 when given as zero, matching spec defaults.
func newTable(size, minActive, minPassive int, maxAge uint64, maxDistance float64) *table {
	if minActive <= 0 {
		minActive = size / 8
	}
	if minPassive <= 0 {
		minPassive = size / 8
	}
	return &table{
		tuples:      make([]Tuple, size),
		activeHead:  0,
		passiveHead: size - 1,
		size:        size,
		minActive:   minActive,
		minPassive:  minPassive,
		maxAge:      maxAge,
		maxDistance: maxDistance,
	}
}

func (t *table) tick() uint64 {
	t.clock++
	return t.clock
}

// Size is the active count plus the passive count.
func (t *table) Size() int {
	return t.activeHead + (t.size - 1 - t.passiveHead)
}

func (t *table) isPassiveIndex(idx int) bool {
	return idx > t.passiveHead
}

func euclideanDistance(x1, y1, x2, y2 uint8) float64 {
	dx := float64(int(x1) - int(x2))
	dy := float64(int(y1) - int(y2))
	return math.Sqrt(dx*dx + dy*dy)
}

// peek reads the current tuple for key without ticking the access clock
// or promoting it — used by Protocol to inspect a prior timestamp before
// performing the real, clock-advancing write.
func (t *table) peek(key uint8) Tuple {
	idx := t.findIndex(key)
	if idx == -1 {
		return Tuple{}
	}
	return t.tuples[idx]
}

func (t *table) findIndex(key uint8) int {
	for i := 0; i < t.activeHead; i++ {
		if t.tuples[i].Timestamp > 0 && t.tuples[i].Key == key {
			return i
		}
	}
	for i := t.size - 1; i > t.passiveHead; i-- {
		if t.tuples[i].Timestamp > 0 && t.tuples[i].Key == key {
			return i
		}
	}
	return -1
}

// Has reports whether key currently names a valid slot.
func (t *table) Has(key uint8) bool {
	return t.findIndex(key) != -1
}

func (t *table) removeActive(idx int) {
	for i := idx; i < t.activeHead-1; i++ {
		t.tuples[i] = t.tuples[i+1]
	}
	t.activeHead--
	t.tuples[t.activeHead] = Tuple{}
}

func (t *table) removePassiveAt(idx int) {
	for i := idx; i > t.passiveHead+1; i-- {
		t.tuples[i] = t.tuples[i-1]
	}
	t.passiveHead++
	t.tuples[t.passiveHead] = Tuple{}
}

func (t *table) oldestActiveIndex() int {
	oldest := -1
	for i := 0; i < t.activeHead; i++ {
		if t.tuples[i].Timestamp == 0 {
			continue
		}
		if oldest == -1 || t.tuples[i].LastAccessed < t.tuples[oldest].LastAccessed {
			oldest = i
		}
	}
	return oldest
}

func (t *table) furthestPassive(selfX, selfY uint8) (idx int, dist float64, found bool) {
	idx = -1
	for i := t.passiveHead + 1; i < t.size; i++ {
		if t.tuples[i].Timestamp == 0 {
			continue
		}
		d := euclideanDistance(selfX, selfY, t.tuples[i].PosX, t.tuples[i].PosY)
		if idx == -1 || d > dist {
			idx, dist, found = i, d, true
		}
	}
	return
}

func (t *table) insertActive(tup Tuple, selfX, selfY uint8) {
	if t.activeHead <= t.passiveHead-t.minPassive {
		t.tuples[t.activeHead] = tup
		t.activeHead++
		return
	}

	oldest := t.oldestActiveIndex()
	if oldest == -1 {
		// Active segment has no room and nothing to evict: every slot
		// reserved but empty. Drop; gossip will re-deliver.
		return
	}
	evicted := t.tuples[oldest]
	t.removeActive(oldest)
	t.tuples[t.activeHead] = tup
	t.activeHead++
	t.insertPassive(evicted, selfX, selfY)
}

func (t *table) insertPassive(tup Tuple, selfX, selfY uint8) {
	if t.passiveHead >= max(t.activeHead, t.minActive) {
		t.tuples[t.passiveHead] = tup
		t.passiveHead--
		return
	}

	furthestIdx, furthestDist, found := t.furthestPassive(selfX, selfY)
	if !found {
		// Passive segment full by boundary but has nothing to compare
		// against: drop.
		return
	}
	newDist := euclideanDistance(selfX, selfY, tup.PosX, tup.PosY)
	if newDist >= furthestDist {
		// Incoming tuple is no closer than everything already held: drop.
		return
	}
	t.removePassiveAt(furthestIdx)
	t.tuples[t.passiveHead] = tup
	t.passiveHead--
}

// insert places tup under key, stamping LastAccessed from the already-
// ticked clock value. depth bounds the promotion recursion to 2 per
// spec.md's design note (remove-from-segment, re-insert-as-other-class).
func (t *table) insert(key uint8, tup Tuple, byAgent bool, selfX, selfY uint8, depth int) {
	idx := t.findIndex(key)
	if idx == -1 {
		if byAgent {
			t.insertActive(tup, selfX, selfY)
		} else {
			t.insertPassive(tup, selfX, selfY)
		}
		return
	}

	if byAgent && t.isPassiveIndex(idx) && depth < 1 {
		t.removePassiveAt(idx)
		t.insert(key, tup, true, selfX, selfY, depth+1)
		return
	}

	t.tuples[idx] = tup
}

// Insert is the table's sole write entry point. The access clock advances
// exactly once per call regardless of how much internal re-insertion the
// promotion/eviction logic performs.
func (t *table) Insert(ctx context.Context, key uint8, tup Tuple, byAgent bool, selfX, selfY uint8) {
	_, span := tracer.Start(ctx, "vs.table.Insert")
	defer span.End()
	span.SetAttributes(attribute.Int("vs.key", int(key)), attribute.Bool("vs.by_agent", byAgent))

	tup.LastAccessed = t.tick()
	t.insert(key, tup, byAgent, selfX, selfY, 0)
}

// Retrieve reads the tuple stored under key, refreshing its access clock
// and promoting it to active when byAgent and currently passive. A miss
// returns the zero Tuple without inserting anything.
func (t *table) Retrieve(ctx context.Context, key uint8, byAgent bool, selfX, selfY uint8) Tuple {
	_, span := tracer.Start(ctx, "vs.table.Retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("vs.key", int(key)), attribute.Bool("vs.by_agent", byAgent))

	clock := t.tick()
	idx := t.findIndex(key)
	if idx == -1 {
		return Tuple{}
	}

	t.tuples[idx].LastAccessed = clock
	tup := t.tuples[idx]

	if byAgent && t.isPassiveIndex(idx) {
		t.removePassiveAt(idx)
		t.insertActive(tup, selfX, selfY)
	}

	return tup
}

// GetTupleAt copies every valid tuple within radius of (posX, posY) into
// out and returns the count found, without reordering, promoting, or
// touching LastAccessed — a pure inspection of the table.
func (t *table) GetTupleAt(posX, posY uint8, radius int, out []Tuple) int {
	count := 0
	radius2 := radius * radius

	scan := func(tup Tuple) {
		if tup.Timestamp == 0 {
			return
		}
		dx := int(posX) - int(tup.PosX)
		dy := int(posY) - int(tup.PosY)
		if dx*dx+dy*dy > radius2 {
			return
		}
		if count < len(out) {
			out[count] = tup
		}
		count++
	}

	for i := 0; i < t.activeHead; i++ {
		scan(t.tuples[i])
	}
	for i := t.size - 1; i > t.passiveHead; i-- {
		scan(t.tuples[i])
	}
	return count
}

// snapshot copies every valid tuple in the table along with which segment
// currently holds it, for debug/inspection tooling. It never mutates
// LastAccessed or segment placement.
func (t *table) snapshot() []TupleRecord {
	out := make([]TupleRecord, 0, t.Size())
	for i := 0; i < t.activeHead; i++ {
		if t.tuples[i].Timestamp > 0 {
			out = append(out, TupleRecord{Tuple: t.tuples[i], Active: true})
		}
	}
	for i := t.size - 1; i > t.passiveHead; i-- {
		if t.tuples[i].Timestamp > 0 {
			out = append(out, TupleRecord{Tuple: t.tuples[i], Active: false})
		}
	}
	return out
}

// PruneTuples removes every tuple whose age exceeds maxAge or whose
// distance from (selfX, selfY) exceeds maxDistance; a zero bound disables
// that check. It returns the number of tuples removed. Safe to call inline
// from the inbound broadcast path: in steady state it is a no-op for
// active-but-fresh tuples.
func (t *table) PruneTuples(ctx context.Context, selfX, selfY uint8) int {
	_, span := tracer.Start(ctx, "vs.table.PruneTuples")
	defer span.End()

	removed := 0
	shouldPrune := func(tup Tuple) bool {
		age := t.clock - tup.LastAccessed
		if t.maxAge > 0 && age > t.maxAge {
			return true
		}
		return t.maxDistance > 0 && euclideanDistance(selfX, selfY, tup.PosX, tup.PosY) > t.maxDistance
	}

	for i := t.activeHead - 1; i >= 0; i-- {
		tup := t.tuples[i]
		if tup.Timestamp == 0 {
			continue
		}
		if shouldPrune(tup) {
			t.removeActive(i)
			removed++
		}
	}

	for i := t.passiveHead + 1; i < t.size; i++ {
		tup := t.tuples[i]
		if tup.Timestamp == 0 {
			continue
		}
		if shouldPrune(tup) {
			t.removePassiveAt(i)
			removed++
		}
	}

	span.SetAttributes(attribute.Int("vs.pruned", removed))
	return removed
}
