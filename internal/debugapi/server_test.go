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

package debugapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/USA-RedDragon/calico-vs/internal/debugapi"
	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

func testAgent(t *testing.T) *vs.Agent {
	t.Helper()
	a := vs.NewAgent(vs.Options{Size: 16})
	a.Init(9)
	a.Put(context.Background(), 1, 42)
	return a
}

func lookupFor(agents map[uint8]*vs.Agent) debugapi.AgentLookup {
	return func(id uint8) (*vs.Agent, bool) {
		a, ok := agents[id]
		return a, ok
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	s := debugapi.New(lookupFor(nil), nil)

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/healthz", nil)
	require.NoError(t, err)
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeEndpoint(t *testing.T) {
	t.Parallel()
	agent := testAgent(t)
	s := debugapi.New(lookupFor(map[uint8]*vs.Agent{9: agent}), nil)

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/vs/9/size", nil)
	require.NoError(t, err)
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body["size"])
}

func TestTableEndpointUnknownAgent(t *testing.T) {
	t.Parallel()
	s := debugapi.New(lookupFor(nil), nil)

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/vs/3/table", nil)
	require.NoError(t, err)
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableEndpointInvalidID(t *testing.T) {
	t.Parallel()
	s := debugapi.New(lookupFor(nil), nil)

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/vs/not-a-number/table", nil)
	require.NoError(t, err)
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTableEndpointReturnsTuples(t *testing.T) {
	t.Parallel()
	agent := testAgent(t)
	s := debugapi.New(lookupFor(map[uint8]*vs.Agent{9: agent}), nil)

	w := httptest.NewRecorder()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "/vs/9/table", nil)
	require.NoError(t, err)
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []vs.TupleRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, uint16(42), body[0].Value)
	assert.True(t, body[0].Active)
}
