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

package vs

// FrameSize is the fixed wire size of a VS broadcast frame.
const FrameSize = 9

const (
	vsMarkerBit = 0x80
	actionBit   = 0x40
	keyMask     = 0x3F
)

// Encode packs a broadcast into the 9-byte VS wire frame:
//
//	byte 0: bit7=VS marker(1) bit6=action(0=GET,1=PUT) bits5-0=key
//	byte 1: posX
//	byte 2: posY
//	byte 3-4: value, little-endian
//	byte 5-6: timestamp, little-endian
//	byte 7: id
//	byte 8: reserved, always 0
//
// Keys are masked to 6 bits defensively; callers MUST restrict keys to
// 0-63 themselves (spec requirement), the mask here only prevents a bad
// caller from corrupting the marker/action bits of the envelope.
func Encode(b Broadcast) [FrameSize]byte {
	var out [FrameSize]byte

	out[0] = vsMarkerBit | (b.Tuple.Key & keyMask)
	if b.Action == ActionPut {
		out[0] |= actionBit
	}

	out[1] = b.Tuple.PosX
	out[2] = b.Tuple.PosY

	out[3] = byte(b.Tuple.Value)
	out[4] = byte(b.Tuple.Value >> 8)

	out[5] = byte(b.Tuple.Timestamp)
	out[6] = byte(b.Tuple.Timestamp >> 8)

	out[7] = b.Tuple.ID
	out[8] = 0

	return out
}

// Decode unpacks a 9-byte frame into a Broadcast. It returns false without
// populating anything meaningful when byte 0 bit 7 is clear, signalling
// the frame isn't a VS broadcast (it may belong to another message class
// multiplexed onto the same 9-byte envelope). Decode is total: it never
// panics on any 9-byte input.
func Decode(frame [FrameSize]byte) (Broadcast, bool) {
	if frame[0]&vsMarkerBit == 0 {
		return Broadcast{}, false
	}

	b := Broadcast{
		Tuple: Tuple{
			Key:       frame[0] & keyMask,
			PosX:      frame[1],
			PosY:      frame[2],
			Value:     uint16(frame[3]) | uint16(frame[4])<<8,
			Timestamp: uint16(frame[5]) | uint16(frame[6])<<8,
			ID:        frame[7],
		},
	}
	if frame[0]&actionBit != 0 {
		b.Action = ActionPut
	} else {
		b.Action = ActionGet
	}
	return b, true
}
