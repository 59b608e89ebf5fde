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

// Package simulator wires one swarm agent's table, protocol, medium,
// debug API, and metrics together into a runnable process, the way
// internal/cmd/root.go wires DMRHub's database, servers, and HTTP API.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"github.com/USA-RedDragon/calico-vs/internal/debugapi"
	"github.com/USA-RedDragon/calico-vs/internal/medium"
	"github.com/USA-RedDragon/calico-vs/internal/metrics"
	"github.com/USA-RedDragon/calico-vs/internal/vs"
	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

const pruneInterval = 30 * time.Second

// Simulator runs a single agent process: it owns the medium connection,
// the Agent, and the optional debug/metrics HTTP servers.
type Simulator struct {
	cfg     *vsconfig.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	agent  *vs.Agent
	medium medium.Medium

	scheduler gocron.Scheduler

	mu       sync.Mutex
	subClose func() error
}

// New builds a Simulator from configuration but does not start anything;
// call Run to actually join the medium and start serving.
func New(cfg *vsconfig.Config, logger *slog.Logger, m *metrics.Metrics) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{cfg: cfg, logger: logger, metrics: m}, nil
}

// agentID as a string, for metrics label values.
func (s *Simulator) agentIDLabel() string {
	return fmt.Sprintf("%d", s.cfg.Swarm.AgentID)
}

// Run joins the configured medium, starts the agent's receive loop and
// periodic pruning, and blocks serving the debug API and metrics endpoints
// (whichever are enabled) until ctx is cancelled or a subsystem fails.
func (s *Simulator) Run(ctx context.Context) error {
	m, err := medium.New(ctx, s.cfg)
	if err != nil {
		return fmt.Errorf("failed to create medium: %w", err)
	}
	s.medium = m

	agent := vs.NewAgent(vs.Options{
		Size:             s.cfg.VS.Size,
		MinActive:        s.cfg.VS.MinActive,
		MinPassive:       s.cfg.VS.MinPassive,
		MaxTupleAge:      s.cfg.VS.MaxTupleAge,
		MaxTupleDistance: s.cfg.VS.MaxTupleDistance,
		Transmit:         medium.TransmitFunc(m),
		Logger:           s.logger,
	})
	agent.Init(s.cfg.Swarm.AgentID)
	agent.SetLocation(s.cfg.Swarm.StartX, s.cfg.Swarm.StartY)
	s.mu.Lock()
	s.agent = agent
	s.mu.Unlock()
	if s.metrics != nil {
		s.agent.SetConflictLostHandler(func(key uint8, winner vs.Tuple) {
			s.metrics.RecordConflict(s.agentIDLabel(), "lost")
		})
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler
	if _, err := scheduler.NewJob(
		gocron.DurationJob(pruneInterval),
		gocron.NewTask(s.pruneOnce),
	); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			s.logger.Error("failed to stop scheduler", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.receiveLoop(gctx, m)
	})

	if s.cfg.Metrics.Enabled {
		g.Go(func() error {
			return metrics.CreateMetricsServer(s.cfg)
		})
	}

	if s.cfg.DebugAPI.Enabled {
		g.Go(func() error {
			srv := debugapi.New(s.lookupAgent, s.logger)
			return srv.Serve(debugapi.Addr(&s.cfg.DebugAPI))
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.medium.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("simulator stopped: %w", err)
	}
	return nil
}

func (s *Simulator) lookupAgent(id uint8) (*vs.Agent, bool) {
	agent := s.Agent()
	if agent == nil || id != s.cfg.Swarm.AgentID {
		return nil, false
	}
	return agent, true
}

func (s *Simulator) pruneOnce() {
	n := s.agent.PruneTuples(context.Background())
	if s.metrics != nil {
		s.metrics.RecordPruned(s.agentIDLabel(), float64(n))
		s.metrics.SetTableOccupancy(s.agentIDLabel(), "total", float64(s.agent.Size()))
	}
}

// receiveLoop decodes frames from the medium and feeds them to the agent
// until sub is closed or ctx is cancelled.
func (s *Simulator) receiveLoop(ctx context.Context, m medium.Medium) error {
	sub := m.Subscribe()
	s.mu.Lock()
	s.subClose = sub.Close
	s.mu.Unlock()
	defer func() { _ = sub.Close() }()
	frames := sub.Frames()

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			b, ok := vs.DecodeFrame(frame)
			if !ok {
				if s.metrics != nil {
					s.metrics.RecordBroadcastDrop(s.agentIDLabel())
				}
				continue
			}
			start := time.Now()
			s.agent.OnBroadcastReceived(ctx, b)
			if s.metrics != nil {
				s.metrics.RecordBroadcastReceive(s.agentIDLabel(), time.Since(start).Seconds())
				origin := "remote"
				if b.Tuple.ID == s.cfg.Swarm.AgentID {
					origin = "local"
				}
				switch b.Action {
				case vs.ActionPut:
					s.metrics.RecordPut(s.agentIDLabel(), origin)
				case vs.ActionGet:
					s.metrics.RecordGet(s.agentIDLabel(), origin)
				}
			}
		}
	}
}

// Agent exposes the running agent for in-process callers (e.g. tests) that
// need to issue Put/Get directly rather than through the medium. Returns nil before Run has initialized it.
func (s *Simulator) Agent() *vs.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}
