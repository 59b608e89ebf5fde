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

// Package medium is the reference host implementing VS's Transmit
// contract: it stands in for the USB-serial/overhead-controller radio
// plumbing spec.md scopes out, over either an in-process channel bus (one
// simulated swarm per process) or Redis pub/sub (one process per agent,
// several processes forming the swarm).
package medium

import (
	"context"
	"fmt"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

// Medium is a broadcast transport for VS's fixed 9-byte frames.
type Medium interface {
	// Transmit puts frame onto the medium for every subscriber to receive,
	// the sender's own subscription included. It satisfies vs.Transmit's delivery contract once wrapped
	// with a codec Encode call.
	Transmit(frame [vs.FrameSize]byte) error
	Subscribe() Subscription
	Close() error
}

// Subscription delivers frames received from the medium until Close.
type Subscription interface {
	Close() error
	Frames() <-chan [vs.FrameSize]byte
}

// New builds the medium backend selected by cfg.Swarm.Medium. Redis
// connects the returned medium to every other process pointed at the same
// Redis instance and topic; memory creates a private single-process bus
// (use Bus directly to share one in-process medium across several
// simulated agents, as internal/testutils does).
func New(ctx context.Context, cfg *vsconfig.Config) (Medium, error) {
	switch cfg.Swarm.Medium {
	case vsconfig.MediumRedis:
		m, err := newRedisMedium(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis medium: %w", err)
		}
		return m, nil
	case vsconfig.MediumMemory:
		fallthrough
	default:
		return NewBus().Connect(), nil
	}
}

// TransmitFunc adapts a Medium into a vs.Transmit hook: encode
// the broadcast, then put the frame on the wire.
func TransmitFunc(m Medium) vs.Transmit {
	return func(b vs.Broadcast) error {
		frame := vs.EncodeFrame(b)
		return m.Transmit(frame)
	}
}
