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

// Package debugapi serves a read-only HTTP+websocket view of a running
// agent's table, for operators inspecting a live swarm. It carries no
// authentication or write endpoints: spec.md's VS core is not a network
// service, and this is strictly an observability surface layered on top,
// meant to bind to localhost.
package debugapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

const readTimeout = 3 * time.Second

// AgentLookup resolves a swarm agent id to the live Agent instance running
// in this process, or (nil, false) if no such agent exists here.
type AgentLookup func(id uint8) (*vs.Agent, bool)

// Server is the debug inspector's gin-backed HTTP server.
type Server struct {
	engine *gin.Engine
	lookup AgentLookup
	logger *slog.Logger
}

// New builds a Server that answers queries against whatever lookup
// resolves at request time, so it reflects agents added after startup.
func New(lookup AgentLookup, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{engine: r, lookup: lookup, logger: logger}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	s.engine.GET("/vs/:agent/size", s.handleSize)
	s.engine.GET("/vs/:agent/table", s.handleTable)
	s.engine.GET("/vs/:agent/stream", s.handleStream)
}

func (s *Server) resolveAgent(c *gin.Context) (*vs.Agent, bool) {
	raw := c.Param("agent")
	id, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid agent id %q", raw)})
		return nil, false
	}
	agent, ok := s.lookup(uint8(id))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no agent with id %d", id)})
		return nil, false
	}
	return agent, true
}

func (s *Server) handleSize(c *gin.Context) {
	agent, ok := s.resolveAgent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"size": agent.Size()})
}

func (s *Server) handleTable(c *gin.Context) {
	agent, ok := s.resolveAgent(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, agent.Snapshot())
}

// Serve blocks handling requests on addr until the listener fails.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readTimeout,
	}
	s.logger.Info("debug API listening", "address", addr)
	if err := server.ListenAndServe(); err != nil {
		return fmt.Errorf("debug API server on %s failed: %w", addr, err)
	}
	return nil
}

// Engine exposes the underlying gin engine for tests to drive directly via
// httptest, without binding a real listener.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Addr builds the bind address from configuration.
func Addr(cfg *vsconfig.DebugAPI) string {
	return fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
}
