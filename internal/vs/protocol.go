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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ConflictResolver picks a winner between two tuples written under the
// same key with equal timestamps but different writers. It must be total
// and symmetric. The default is larger-id-wins; ties cannot occur because
// equal ids mean the same writer, which is never a conflict.
type ConflictResolver func(local, remote Tuple) Tuple

// DefaultConflictResolver implements larger-id-wins.
func DefaultConflictResolver(local, remote Tuple) Tuple {
	if remote.ID > local.ID {
		return remote
	}
	return local
}

// Transmit is the host hook a Protocol calls to emit a broadcast. The host
// owns queuing and radio scheduling; Protocol assumes at-most-once
// delivery and at-most-once transmission per call.
type Transmit func(Broadcast) error

// Protocol implements the PUT/GET arbitration state machine over a table.
// It owns no identity or location state: every entry point takes the
// caller's current position explicitly, matching table's own signatures.
type Protocol struct {
	table    *table
	transmit Transmit
	resolver ConflictResolver

	onConflictLost func(key uint8, winner Tuple)

	logger *slog.Logger
}

func newProtocol(t *table, transmit Transmit, resolver ConflictResolver, logger *slog.Logger) *Protocol {
	if resolver == nil {
		resolver = DefaultConflictResolver
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Protocol{
		table:          t,
		transmit:       transmit,
		resolver:       resolver,
		onConflictLost: func(uint8, Tuple) {},
		logger:         logger,
	}
}

// SetConflictLostHandler overrides the no-op default invoked whenever this
// agent's tuple loses a conflict to a remote writer.
func (p *Protocol) SetConflictLostHandler(fn func(key uint8, winner Tuple)) {
	if fn == nil {
		fn = func(uint8, Tuple) {}
	}
	p.onConflictLost = fn
}

// SetConflictResolver overrides the default larger-id-wins comparator.
func (p *Protocol) SetConflictResolver(fn ConflictResolver) {
	if fn == nil {
		fn = DefaultConflictResolver
	}
	p.resolver = fn
}

func (p *Protocol) rebroadcast(action Action, tup Tuple) {
	if p.transmit == nil {
		return
	}
	if err := p.transmit(Broadcast{Action: action, Tuple: tup}); err != nil {
		p.logger.Error("vs: broadcast transmit failed", "error", err, "key", tup.Key, "action", action.String())
	}
}

func (p *Protocol) resolveConflict(ctx context.Context, key uint8, local, remote Tuple, selfX, selfY uint8) {
	winner := p.resolver(local, remote)
	p.table.Insert(ctx, key, winner, false, selfX, selfY)
	if winner.ID != local.ID {
		p.onConflictLost(key, winner)
	}
}

// OnBroadcastReceived is the Protocol's inbound entry point: it arbitrates
// an incoming broadcast against the locally-held tuple for the same key
// and decides whether to accept it, resolve a conflict, or rebroadcast a
// correction, exactly per the PUT/GET table in spec.
func (p *Protocol) OnBroadcastReceived(ctx context.Context, selfX, selfY uint8, b Broadcast) {
	ctx, span := tracer.Start(ctx, "vs.protocol.OnBroadcastReceived")
	defer span.End()
	span.SetAttributes(
		attribute.Int("vs.key", int(b.Tuple.Key)),
		attribute.String("vs.action", b.Action.String()),
	)

	key := b.Tuple.Key
	local := p.table.Retrieve(ctx, key, false, selfX, selfY)
	lt, rt := local.Timestamp, b.Tuple.Timestamp

	switch b.Action {
	case ActionPut:
		switch {
		case rt > lt:
			p.table.Insert(ctx, key, b.Tuple, false, selfX, selfY)
			p.rebroadcast(ActionPut, b.Tuple)
		case rt == lt && local.ID != b.Tuple.ID:
			p.resolveConflict(ctx, key, local, b.Tuple, selfX, selfY)
		}
	case ActionGet:
		switch {
		case rt == lt && rt != 0 && local.ID != b.Tuple.ID:
			p.resolveConflict(ctx, key, local, b.Tuple, selfX, selfY)
		case rt < lt:
			p.rebroadcast(ActionPut, local)
		case rt > lt:
			p.table.Insert(ctx, key, b.Tuple, false, selfX, selfY)
			p.rebroadcast(ActionPut, b.Tuple)
		}
	}
}

// LocalPut increments key's timestamp relative to its prior local value
// (or 0), stamps id/position, inserts it as an agent write, and emits a
// PUT broadcast carrying the new tuple.
func (p *Protocol) LocalPut(ctx context.Context, selfX, selfY, localID uint8, key uint8, value uint16, posX, posY uint8) Tuple {
	ctx, span := tracer.Start(ctx, "vs.protocol.LocalPut")
	defer span.End()
	span.SetAttributes(
		attribute.Int("vs.key", int(key)),
		attribute.String("vs.correlation_id", uuid.NewString()),
	)

	prior := p.table.peek(key)
	tup := Tuple{
		Key:       key,
		Value:     value,
		PosX:      posX,
		PosY:      posY,
		ID:        localID,
		Timestamp: prior.Timestamp + 1,
	}
	p.table.Insert(ctx, key, tup, true, selfX, selfY)
	p.rebroadcast(ActionPut, tup)
	return tup
}

// LocalGet retrieves key as an agent read (possibly promoting a passive
// tuple to active) and emits a GET broadcast carrying the local tuple, or
// a key-only default when the key is absent.
func (p *Protocol) LocalGet(ctx context.Context, selfX, selfY uint8, key uint8) Tuple {
	ctx, span := tracer.Start(ctx, "vs.protocol.LocalGet")
	defer span.End()
	span.SetAttributes(
		attribute.Int("vs.key", int(key)),
		attribute.String("vs.correlation_id", uuid.NewString()),
	)

	tup := p.table.Retrieve(ctx, key, true, selfX, selfY)
	emit := tup
	if emit.Timestamp == 0 {
		emit = Tuple{Key: key}
	}
	p.rebroadcast(ActionGet, emit)
	return tup
}
