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

// Package logging wires log/slog with a tint console handler, matching
// the setup internal/cmd/root.go performs inline.
package logging

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

func slogLevel(level vsconfig.LogLevel) slog.Level {
	switch level {
	case vsconfig.LogLevelDebug:
		return slog.LevelDebug
	case vsconfig.LogLevelWarn:
		return slog.LevelWarn
	case vsconfig.LogLevelError:
		return slog.LevelError
	case vsconfig.LogLevelInfo:
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// New builds a colorized console logger at the configured level and sets
// it as the process default.
func New(level vsconfig.LogLevel) *slog.Logger {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slogLevel(level),
		TimeFormat: "15:04:05.000",
	}))
	slog.SetDefault(logger)
	return logger
}
