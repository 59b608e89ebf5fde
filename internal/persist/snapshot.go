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

// Package persist captures and restores point-in-time dumps of an Agent's
// table for offline inspection. It is explicitly not a durability layer:
// nothing in VS or this package ever loads a snapshot automatically: an
// operator decides when to take one and when, if ever, to restore it.
package persist

import (
	"context"
	"fmt"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

// TupleSnapshot is one tuple captured by Snapshot, including which segment
// held it at capture time.
//
//go:generate msgp
type TupleSnapshot struct {
	Key          uint8  `msg:"key"`
	Value        uint16 `msg:"value"`
	PosX         uint8  `msg:"pos_x"`
	PosY         uint8  `msg:"pos_y"`
	ID           uint8  `msg:"id"`
	Timestamp    uint16 `msg:"timestamp"`
	LastAccessed uint64 `msg:"last_accessed"`
	Active       bool   `msg:"active"`
}

// TableSnapshot is a full point-in-time dump of one agent's table.
//
//go:generate msgp
type TableSnapshot struct {
	AgentID uint8           `msg:"agent_id"`
	LocX    uint8           `msg:"loc_x"`
	LocY    uint8           `msg:"loc_y"`
	Clock   uint64          `msg:"clock"`
	Tuples  []TupleSnapshot `msg:"tuples"`
}

// Capture builds a TableSnapshot from an agent's current state.
func Capture(agent *vs.Agent) TableSnapshot {
	records := agent.Snapshot()
	tuples := make([]TupleSnapshot, len(records))
	for i, r := range records {
		tuples[i] = TupleSnapshot{
			Key:          r.Key,
			Value:        r.Value,
			PosX:         r.PosX,
			PosY:         r.PosY,
			ID:           r.ID,
			Timestamp:    r.Timestamp,
			LastAccessed: r.LastAccessed,
			Active:       r.Active,
		}
	}
	return TableSnapshot{
		AgentID: agent.LocalID(),
		LocX:    agent.LocationX(),
		LocY:    agent.LocationY(),
		Clock:   agent.Clock(),
		Tuples:  tuples,
	}
}

// Marshal serializes a snapshot to its binary msgpack representation.
func Marshal(snap TableSnapshot) ([]byte, error) {
	b, err := snap.MarshalMsg(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table snapshot: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a snapshot previously produced by Marshal.
func Unmarshal(data []byte) (TableSnapshot, error) {
	var snap TableSnapshot
	_, err := snap.UnmarshalMsg(data)
	if err != nil {
		return TableSnapshot{}, fmt.Errorf("failed to unmarshal table snapshot: %w", err)
	}
	return snap, nil
}

// Restore force-loads every tuple in snap into agent via RestoreTuple. It
// does not set the agent's id or location: those are an Init/SetLocation
// concern, not a table-contents concern, and a restored snapshot is
// normally loaded into a freshly constructed Agent that has already been
// initialized with the matching id.
func Restore(ctx context.Context, agent *vs.Agent, snap TableSnapshot) {
	for _, ts := range snap.Tuples {
		agent.RestoreTuple(ctx, vs.Tuple{
			Key:          ts.Key,
			Value:        ts.Value,
			PosX:         ts.PosX,
			PosY:         ts.PosY,
			ID:           ts.ID,
			Timestamp:    ts.Timestamp,
			LastAccessed: ts.LastAccessed,
		}, ts.Active)
	}
}
