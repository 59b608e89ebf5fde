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

package debugapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsBufferSize   = 1024
	streamInterval = time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	// Debug inspector binds to localhost by default; any origin is
	// acceptable since there is nothing to forge cross-origin against.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and pushes the requested agent's
// table snapshot once per streamInterval until the client disconnects.
func (s *Server) handleStream(c *gin.Context) {
	agent, ok := s.resolveAgent(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("debug API websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Error("debug API websocket close failed", "error", err)
		}
	}()

	readFailed := make(chan struct{})
	go func() {
		defer close(readFailed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-readFailed:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(agent.Snapshot()); err != nil {
				s.logger.Error("debug API websocket write failed", "error", err)
				return
			}
		}
	}
}
