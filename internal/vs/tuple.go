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

// Package vs implements the Virtual Stigmergy gossip table: a bounded,
// eventually-consistent key-value replica shared between swarm agents by
// broadcasting small fixed-size frames.
package vs

import "fmt"

// MaxKey is the largest key value the 6-bit key field can carry.
const MaxKey = 63

// Action distinguishes a gossip broadcast's intent.
type Action uint8

const (
	// ActionGet requests the current value for a key from listening peers.
	ActionGet Action = iota
	// ActionPut announces a new value for a key.
	ActionPut
)

func (a Action) String() string {
	if a == ActionPut {
		return "PUT"
	}
	return "GET"
}

// Tuple is the unit of stored state, keyed by a 6-bit key (0-63).
type Tuple struct {
	Key   uint8
	Value uint16
	PosX  uint8
	PosY  uint8
	// ID is the agent identifier of the last writer.
	ID uint8
	// Timestamp is a Lamport-like per-key version counter. A timestamp of
	// zero marks the tuple as uninitialised/empty.
	Timestamp uint16
	// LastAccessed is the local access-clock value at last read or write.
	// Never transmitted.
	LastAccessed uint64
}

// Empty reports whether the tuple has never been written (timestamp 0).
func (t Tuple) Empty() bool {
	return t.Timestamp == 0
}

func (t Tuple) String() string {
	return fmt.Sprintf("Tuple{key=%d value=%d pos=(%d,%d) id=%d ts=%d}",
		t.Key, t.Value, t.PosX, t.PosY, t.ID, t.Timestamp)
}

// Equal compares every field except LastAccessed, which is never part of
// the wire representation and so never part of equality between two
// tuples observed by different agents.
func (t Tuple) Equal(other Tuple) bool {
	return t.Key == other.Key &&
		t.Value == other.Value &&
		t.PosX == other.PosX &&
		t.PosY == other.PosY &&
		t.ID == other.ID &&
		t.Timestamp == other.Timestamp
}

// Broadcast is a transient record carrying one tuple plus the action the
// sender intends.
type Broadcast struct {
	Action Action
	Tuple  Tuple
}

func (b Broadcast) String() string {
	return fmt.Sprintf("Broadcast{%s %s}", b.Action, b.Tuple)
}

// TupleRecord is a Tuple annotated with which segment currently holds it,
// used by debug/inspection tooling (internal/persist, internal/debugapi)
// that needs to see the whole table rather than look up one key.
type TupleRecord struct {
	Tuple
	Active bool
}
