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

package medium

import (
	"sync"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

// busBufferSize bounds each subscriber's inbound queue; a slow agent
// drops frames rather than stalling the rest of the swarm, matching
// spec.md's best-effort gossip model.
const busBufferSize = 64

// Bus is a shared in-process broadcast medium connecting several agents
// running in one process, standing in for a shared radio channel. Every
// frame transmitted by one connection is delivered to every connection on
// the same bus, including (per the radio analogy) an echo back to the
// sender.
type Bus struct {
	mu   sync.Mutex
	subs []chan [vs.FrameSize]byte
}

// NewBus creates an empty shared medium. Call Connect once per simulated
// agent to join it.
func NewBus() *Bus {
	return &Bus{}
}

// Connect joins the bus, returning a Medium handle for one agent.
func (b *Bus) Connect() *BusMedium {
	ch := make(chan [vs.FrameSize]byte, busBufferSize)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return &BusMedium{bus: b, recv: ch}
}

func (b *Bus) broadcast(frame [vs.FrameSize]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- frame:
		default:
			// Receiver's queue is full; drop. Gossip will re-deliver.
		}
	}
}

func (b *Bus) disconnect(ch chan [vs.FrameSize]byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
}

// BusMedium is one agent's connection to a shared Bus.
type BusMedium struct {
	bus  *Bus
	recv chan [vs.FrameSize]byte
}

func (m *BusMedium) Transmit(frame [vs.FrameSize]byte) error {
	m.bus.broadcast(frame)
	return nil
}

func (m *BusMedium) Subscribe() Subscription {
	return &busSubscription{ch: m.recv}
}

func (m *BusMedium) Close() error {
	m.bus.disconnect(m.recv)
	return nil
}

type busSubscription struct {
	ch chan [vs.FrameSize]byte
}

func (s *busSubscription) Close() error {
	return nil
}

func (s *busSubscription) Frames() <-chan [vs.FrameSize]byte {
	return s.ch
}
