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

import "context"

// VS imports exactly one contract it does not implement: a Transmit
// function supplied at Agent construction (Options.Transmit). The host
// accepts the broadcast, enqueues it to the radio, and eventually calls
// EncodeFrame to produce the 9 bytes actually placed on the wire. This is
// dependency injection rather than the weak-symbol override the source
// firmware uses.
//
// VS exports exactly one contract: ReceiveFrame, the effect of a 9-byte
// frame arriving off the radio. internal/medium is the reference host
// implementing the transmit side over an in-process channel bus or Redis
// pub/sub, standing in for the USB-serial/overhead-controller plumbing
// that is out of scope here.

// EncodeFrame packs a broadcast into its 9-byte wire form.
func EncodeFrame(b Broadcast) [FrameSize]byte {
	return Encode(b)
}

// DecodeFrame unpacks a 9-byte wire frame, reporting false when it isn't a
// VS broadcast (byte 0 bit 7 clear).
func DecodeFrame(frame [FrameSize]byte) (Broadcast, bool) {
	return Decode(frame)
}

// ReceiveFrame decodes frame and, if it is a VS broadcast, hands it to the
// agent's inbound entry point. It returns whether the frame was accepted
// as a VS broadcast at all — a false return means a non-VS frame sharing
// the envelope, not a VS-level error.
func ReceiveFrame(ctx context.Context, agent *Agent, frame [FrameSize]byte) bool {
	b, ok := DecodeFrame(frame)
	if !ok {
		return false
	}
	agent.OnBroadcastReceived(ctx, b)
	return true
}
