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
	"log/slog"
)

// Options configures an Agent's table and protocol at construction.
type Options struct {
	// Size is the total number of table slots (8-64). Defaults to 64.
	Size int
	// MinActive and MinPassive are the per-segment reservation floors.
	// Zero means "derive as Size/8".
	MinActive  int
	MinPassive int
	// MaxTupleAge and MaxTupleDistance bound optional pruning; zero means
	// effectively unbounded (PruneTuples becomes a no-op).
	MaxTupleAge      uint64
	MaxTupleDistance float64
	// Transmit is the host's outbound broadcast hook. Required for a
	// useful Agent; a nil Transmit makes Put/Get/rebroadcasts no-ops
	// beyond local table state, which is occasionally useful in tests.
	Transmit Transmit
	// ConflictResolver overrides larger-id-wins when non-nil.
	ConflictResolver ConflictResolver
	Logger           *slog.Logger
}

const defaultSize = 64

// Agent is the public surface a host embeds: identity and location state
// plus the put/get operations spec.md enumerates, backed by a table and a
// Protocol.
type Agent struct {
	initialized bool
	localID     uint8
	locX, locY  uint8

	table    *table
	protocol *Protocol
}

// NewAgent constructs an Agent with the given options. It is not
// initialized (has no local id) until Init is called.
func NewAgent(opts Options) *Agent {
	size := opts.Size
	if size <= 0 {
		size = defaultSize
	}
	t := newTable(size, opts.MinActive, opts.MinPassive, opts.MaxTupleAge, opts.MaxTupleDistance)
	p := newProtocol(t, opts.Transmit, opts.ConflictResolver, opts.Logger)
	return &Agent{table: t, protocol: p}
}

// Init sets the agent's local id. It is idempotent: only the first call
// takes effect; subsequent calls return false without side effect.
func (a *Agent) Init(localID uint8) bool {
	if a.initialized {
		return false
	}
	a.initialized = true
	a.localID = localID
	return true
}

// LocalID returns the id set by Init, or 0 before initialization.
func (a *Agent) LocalID() uint8 { return a.localID }

// LocationX returns the agent's last-set X coordinate.
func (a *Agent) LocationX() uint8 { return a.locX }

// LocationY returns the agent's last-set Y coordinate.
func (a *Agent) LocationY() uint8 { return a.locY }

// SetLocation updates the agent's position, used as the self side of
// every subsequent distance computation.
func (a *Agent) SetLocation(x, y uint8) {
	a.locX, a.locY = x, y
}

// Has reports whether key currently names a valid tuple.
func (a *Agent) Has(key uint8) bool {
	return a.table.Has(key)
}

// Size returns the active count plus the passive count.
func (a *Agent) Size() int {
	return a.table.Size()
}

// Put stores value under key at the agent's current location.
// Equivalent to PutAt(key, value, a.LocationX(), a.LocationY()).
func (a *Agent) Put(ctx context.Context, key uint8, value uint16) Tuple {
	return a.PutAt(ctx, key, value, a.locX, a.locY)
}

// PutAt stores value under key at the given position, stamping the
// agent's id and an incremented timestamp, then emits a PUT broadcast.
// Callers MUST restrict key to 0-63; the codec masks defensively but this
// is not a substitute for masking upstream.
func (a *Agent) PutAt(ctx context.Context, key uint8, value uint16, posX, posY uint8) Tuple {
	return a.protocol.LocalPut(ctx, a.locX, a.locY, a.localID, key, value, posX, posY)
}

// Get returns the value stored under key, or 0 if absent.
func (a *Agent) Get(ctx context.Context, key uint8) uint16 {
	return a.GetTuple(ctx, key).Value
}

// GetTuple retrieves key as an agent read, possibly promoting a passive
// tuple and always emitting a GET broadcast.
func (a *Agent) GetTuple(ctx context.Context, key uint8) Tuple {
	return a.protocol.LocalGet(ctx, a.locX, a.locY, key)
}

// GetTupleAt copies every valid tuple within radius of (posX, posY) into
// out and returns the count found. It never mutates the table.
func (a *Agent) GetTupleAt(posX, posY uint8, radius int, out []Tuple) int {
	return a.table.GetTupleAt(posX, posY, radius, out)
}

// OnBroadcastReceived is the Agent's inbound entry point for a decoded
// frame from the host: arbitration, eviction and rebroadcast all flow
// from here.
func (a *Agent) OnBroadcastReceived(ctx context.Context, b Broadcast) {
	a.protocol.OnBroadcastReceived(ctx, a.locX, a.locY, b)
}

// PruneTuples runs an explicit sweep removing tuples older than
// MaxTupleAge or further than MaxTupleDistance from the agent's current
// location. Safe to call from a periodic host tick or inline from the
// inbound broadcast path.
func (a *Agent) PruneTuples(ctx context.Context) int {
	return a.table.PruneTuples(ctx, a.locX, a.locY)
}

// SetConflictLostHandler overrides the no-op default invoked whenever this
// agent's tuple loses an arbitration to a remote writer.
func (a *Agent) SetConflictLostHandler(fn func(key uint8, winner Tuple)) {
	a.protocol.SetConflictLostHandler(fn)
}

// Clock returns the table's current access-clock value, for debug snapshots
// that need to record when they were taken relative to table activity.
func (a *Agent) Clock() uint64 {
	return a.table.clock
}

// Snapshot copies every valid tuple in the table, annotated with which
// segment holds it. Used by internal/persist to capture a point-in-time
// dump and by internal/debugapi to serve one over HTTP.
func (a *Agent) Snapshot() []TupleRecord {
	return a.table.snapshot()
}

// RestoreTuple force-loads a tuple previously captured by Snapshot back
// into the table, as the given segment's insert policy would place a
// freshly-received tuple. It is a debug/inspection convenience only: the
// normal write paths are PutAt (local writes) and OnBroadcastReceived
// (gossip), and neither calls this.
func (a *Agent) RestoreTuple(ctx context.Context, tup Tuple, active bool) {
	a.table.Insert(ctx, tup.Key, tup, active, a.locX, a.locY)
}
