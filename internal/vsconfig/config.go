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

package vsconfig

// Config is the simulator's top-level configuration, loaded by
// configulator from file/env/flags.
type Config struct {
	LogLevel LogLevel `yaml:"log_level" default:"info"`

	VS       VS       `yaml:"vs"`
	Swarm    Swarm    `yaml:"swarm"`
	Redis    Redis    `yaml:"redis"`
	Metrics  Metrics  `yaml:"metrics"`
	PProf    PProf    `yaml:"pprof"`
	DebugAPI DebugAPI `yaml:"debug_api"`
	Tracing  Tracing  `yaml:"tracing"`
}

// VS holds the table-sizing and pruning knobs spec.md §6 enumerates.
type VS struct {
	Size             int     `yaml:"size" default:"64"`
	MinActive        int     `yaml:"min_active"`
	MinPassive       int     `yaml:"min_passive"`
	MaxTupleAge      uint64  `yaml:"max_tuple_age" default:"100"`
	MaxTupleDistance float64 `yaml:"max_tuple_distance" default:"100"`
}

// Swarm identifies this process's agent within the simulated swarm.
type Swarm struct {
	AgentID uint8      `yaml:"agent_id"`
	StartX  uint8      `yaml:"start_x"`
	StartY  uint8      `yaml:"start_y"`
	Medium  MediumKind `yaml:"medium" default:"memory"`
	Topic   string     `yaml:"topic" default:"vs-swarm"`
}

// Redis holds the connection settings of the redis broadcast medium, which
// Swarm.Medium selects. Enabled only controls whether these settings are
// validated.
type Redis struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
}

// Metrics configures the Prometheus metrics HTTP server.
type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind" default:"[::]"`
	Port    int    `yaml:"port" default:"9100"`
}

// PProf holds settings for a Go pprof debug HTTP server. They are
// validated, but no component of this repository starts a pprof server.
type PProf struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind" default:"[::1]"`
	Port    int    `yaml:"port" default:"6060"`
}

// DebugAPI configures the read-only table inspector (gin + websocket).
// It binds to localhost by default since spec.md's VS core has no
// authentication.
type DebugAPI struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind" default:"[::1]"`
	Port    int    `yaml:"port" default:"8088"`
}

// Tracing optionally exports otel spans via OTLP/gRPC.
type Tracing struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}
