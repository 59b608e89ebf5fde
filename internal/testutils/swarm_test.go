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

package testutils_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/USA-RedDragon/calico-vs/internal/testutils"
	"github.com/USA-RedDragon/calico-vs/internal/testutils/retry"
)

func TestSwarmConvergesOnPut(t *testing.T) {
	t.Parallel()
	sw := testutils.NewSwarm(t, 4, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sw.Start(ctx)
	defer sw.Stop()

	sw.Agents[0].Put(ctx, 5, 123)

	const maxAttempts = 20
	const sleep = 25 * time.Millisecond
	retry.Retry(t, maxAttempts, sleep, func(r *retry.R) {
		for i, agent := range sw.Agents {
			if !agent.Has(5) {
				r.Errorf("agent %d has not yet received key 5", i)
				return
			}
			if got := agent.Get(ctx, 5); got != 123 {
				r.Errorf("agent %d has value %d, want 123", i, got)
				return
			}
		}
	})
}

func TestSwarmConflictResolvesToHigherID(t *testing.T) {
	t.Parallel()
	sw := testutils.NewSwarm(t, 2, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sw.Start(ctx)
	defer sw.Stop()

	// Both agents write the same key at roughly the same logical time;
	// agent 2 (higher id) must win the arbitration everywhere.
	sw.Agents[0].Put(ctx, 9, 1)
	sw.Agents[1].Put(ctx, 9, 2)

	const maxAttempts = 20
	const sleep = 25 * time.Millisecond
	retry.Retry(t, maxAttempts, sleep, func(r *retry.R) {
		for i, agent := range sw.Agents {
			if got := agent.Get(ctx, 9); got != 2 {
				r.Errorf("agent %d converged to %d, want 2 (higher id wins)", i, got)
				return
			}
		}
	})

	assert.True(t, sw.Agents[0].Has(9))
	assert.True(t, sw.Agents[1].Has(9))
}
