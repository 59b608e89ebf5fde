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

package medium_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/USA-RedDragon/calico-vs/internal/medium"
	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

func TestBusFanoutToAllSubscribers(t *testing.T) {
	t.Parallel()
	bus := medium.NewBus()
	a := bus.Connect()
	b := bus.Connect()
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	subA := a.Subscribe()
	subB := b.Subscribe()

	frame := vs.EncodeFrame(vs.Broadcast{Action: vs.ActionPut, Tuple: vs.Tuple{Key: 5, Value: 42, ID: 1, Timestamp: 1}})
	assert.NoError(t, a.Transmit(frame))

	select {
	case got := <-subA.Frames():
		assert.Equal(t, frame, got)
	case <-time.After(time.Second):
		t.Fatal("sender did not receive its own echo")
	}

	select {
	case got := <-subB.Frames():
		assert.Equal(t, frame, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame on other connection")
	}
}

func TestBusDisconnectStopsDelivery(t *testing.T) {
	t.Parallel()
	bus := medium.NewBus()
	a := bus.Connect()
	b := bus.Connect()
	subB := b.Subscribe()

	assert.NoError(t, b.Close())

	frame := vs.EncodeFrame(vs.Broadcast{Action: vs.ActionGet, Tuple: vs.Tuple{Key: 1}})
	assert.NoError(t, a.Transmit(frame))

	sub := a.Subscribe()
	select {
	case got := <-sub.Frames():
		assert.Equal(t, frame, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for self echo")
	}

	// Delivery is synchronous, so by the time a's echo arrived the
	// disconnected b would already have been sent its copy.
	select {
	case <-subB.Frames():
		t.Fatal("disconnected connection still received a frame")
	default:
	}
}

func TestTransmitFuncEncodesBroadcast(t *testing.T) {
	t.Parallel()
	bus := medium.NewBus()
	a := bus.Connect()
	sub := a.Subscribe()

	transmit := medium.TransmitFunc(a)
	b := vs.Broadcast{Action: vs.ActionPut, Tuple: vs.Tuple{Key: 2, Value: 7, ID: 1, Timestamp: 1}}
	assert.NoError(t, transmit(b))

	select {
	case frame := <-sub.Frames():
		got, ok := vs.DecodeFrame(frame)
		assert.True(t, ok)
		assert.True(t, got.Tuple.Equal(b.Tuple))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for encoded frame")
	}
}
