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
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

const (
	connsPerCPU = 10
	maxIdleTime = 5 * time.Minute
)

func newRedisMedium(ctx context.Context, cfg *vsconfig.Config) (*redisMedium, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:        cfg.Redis.Password,
		PoolFIFO:        true,
		PoolSize:        runtime.GOMAXPROCS(0) * connsPerCPU,
		MinIdleConns:    runtime.GOMAXPROCS(0),
		ConnMaxIdleTime: maxIdleTime,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if cfg.Tracing.OTLPEndpoint != "" {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return nil, fmt.Errorf("failed to trace redis: %w", err)
		}
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
		}
	}

	return &redisMedium{client: client, topic: cfg.Swarm.Topic}, nil
}

// redisMedium publishes/subscribes VS frames as raw binary payloads on a
// single Redis pub/sub channel shared by every agent process in the
// swarm.
type redisMedium struct {
	client *redis.Client
	topic  string
}

func (m *redisMedium) Transmit(frame [vs.FrameSize]byte) error {
	if err := m.client.Publish(context.Background(), m.topic, frame[:]).Err(); err != nil {
		return fmt.Errorf("failed to publish frame to topic %s: %w", m.topic, err)
	}
	return nil
}

func (m *redisMedium) Subscribe() Subscription {
	sub := m.client.Subscribe(context.Background(), m.topic)
	return &redisSubscription{sub: sub, in: sub.Channel()}
}

func (m *redisMedium) Close() error {
	if err := m.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	return nil
}

type redisSubscription struct {
	sub *redis.PubSub
	in  <-chan *redis.Message
}

func (s *redisSubscription) Close() error {
	if err := s.sub.Close(); err != nil {
		return fmt.Errorf("failed to close redis subscription: %w", err)
	}
	return nil
}

func (s *redisSubscription) Frames() <-chan [vs.FrameSize]byte {
	out := make(chan [vs.FrameSize]byte)
	go func() {
		defer close(out)
		for msg := range s.in {
			if len(msg.Payload) != vs.FrameSize {
				continue
			}
			var frame [vs.FrameSize]byte
			copy(frame[:], msg.Payload)
			out <- frame
		}
	}()
	return out
}
