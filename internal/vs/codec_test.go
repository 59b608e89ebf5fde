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

package vs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/USA-RedDragon/calico-vs/internal/vs"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    vs.Broadcast
	}{
		{"put-zero-key", vs.Broadcast{Action: vs.ActionPut, Tuple: vs.Tuple{Key: 0}}},
		{"get-max-key", vs.Broadcast{Action: vs.ActionGet, Tuple: vs.Tuple{Key: 63, Value: 0xBEEF, PosX: 200, PosY: 3, ID: 9, Timestamp: 0xFFFF}}},
		{"mid-values", vs.Broadcast{Action: vs.ActionPut, Tuple: vs.Tuple{Key: 5, Value: 0x1234, PosX: 3, PosY: 4, ID: 7, Timestamp: 0x00AB}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			frame := vs.Encode(tt.b)
			got, ok := vs.Decode(frame)
			assert.True(t, ok)
			assert.True(t, tt.b.Tuple.Equal(got.Tuple), "expected %s got %s", tt.b.Tuple, got.Tuple)
			assert.Equal(t, tt.b.Action, got.Action)
			assert.Equal(t, uint64(0), got.Tuple.LastAccessed)
		})
	}
}

func TestDecodeRejectsNonVSFrame(t *testing.T) {
	t.Parallel()

	var frame [vs.FrameSize]byte
	frame[0] = 0x7F // bit 7 clear
	_, ok := vs.Decode(frame)
	assert.False(t, ok)
}

func TestEncodeMasksOversizedKey(t *testing.T) {
	t.Parallel()

	b := vs.Broadcast{Action: vs.ActionGet, Tuple: vs.Tuple{Key: 0xFF}}
	frame := vs.Encode(b)
	assert.Equal(t, uint8(0x3F), frame[0]&0x3F)
}

// TestEncodeSpecVector matches spec scenario 6 exactly:
// encode({action=PUT, key=5, pos=(3,4), value=0x1234, ts=0x00AB, id=7})
// -> bytes C5 03 04 34 12 AB 00 07 00
func TestEncodeSpecVector(t *testing.T) {
	t.Parallel()

	b := vs.Broadcast{
		Action: vs.ActionPut,
		Tuple: vs.Tuple{
			Key:       5,
			PosX:      3,
			PosY:      4,
			Value:     0x1234,
			Timestamp: 0x00AB,
			ID:        7,
		},
	}
	want := [vs.FrameSize]byte{0xC5, 0x03, 0x04, 0x34, 0x12, 0xAB, 0x00, 0x07, 0x00}
	assert.Equal(t, want, vs.Encode(b))

	got, ok := vs.Decode(want)
	assert.True(t, ok)
	assert.True(t, b.Tuple.Equal(got.Tuple))
	assert.Equal(t, vs.ActionPut, got.Action)
}
