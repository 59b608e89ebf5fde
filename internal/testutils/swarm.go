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

// Package testutils provides a multi-agent swarm harness over the
// in-memory medium, for integration tests that need several gossiping
// agents rather than one protocol pair.
package testutils

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/USA-RedDragon/calico-vs/internal/medium"
	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

// Swarm runs N agents joined to one shared in-memory bus, each with its
// own goroutine decoding and delivering frames.
type Swarm struct {
	Agents []*vs.Agent

	conns  []*medium.BusMedium
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSwarm builds n agents with sequential ids starting at 1, all sharing
// one bus, each with size table slots.
func NewSwarm(t *testing.T, n, size int) *Swarm {
	t.Helper()
	require.Greater(t, n, 0)

	bus := medium.NewBus()
	sw := &Swarm{}
	for i := 0; i < n; i++ {
		conn := bus.Connect()
		sw.conns = append(sw.conns, conn)

		agent := vs.NewAgent(vs.Options{
			Size:     size,
			Transmit: medium.TransmitFunc(conn),
		})
		agent.Init(uint8(i + 1))
		sw.Agents = append(sw.Agents, agent)
	}
	return sw
}

// Start spins up each agent's receive loop. Call Stop (or cancel the
// parent, if a context was derived from one you control) to tear down.
func (sw *Swarm) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	sw.cancel = cancel

	for i, conn := range sw.conns {
		agent := sw.Agents[i]
		sub := conn.Subscribe()
		sw.wg.Add(1)
		go func() {
			defer sw.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case frame, ok := <-sub.Frames():
					if !ok {
						return
					}
					b, ok := vs.DecodeFrame(frame)
					if !ok {
						continue
					}
					agent.OnBroadcastReceived(ctx, b)
				}
			}
		}()
	}
}

// Stop cancels every receive loop and waits for them to exit.
func (sw *Swarm) Stop() {
	if sw.cancel != nil {
		sw.cancel()
	}
	sw.wg.Wait()
}
