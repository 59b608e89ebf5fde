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

// Command vsagent runs one virtual-stigmergy swarm agent: it joins the
// configured broadcast medium, serves the optional metrics and debug
// endpoints, and runs until an interrupt or terminate signal arrives.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/USA-RedDragon/configulator"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/USA-RedDragon/calico-vs/internal/logging"
	"github.com/USA-RedDragon/calico-vs/internal/metrics"
	"github.com/USA-RedDragon/calico-vs/internal/simulator"
	"github.com/USA-RedDragon/calico-vs/internal/vsconfig"
)

// version and commit are stamped at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vsagent",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE:              runAgent,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	return cmd
}

func runAgent(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fmt.Printf("vsagent - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	cfg, err := configulator.New[vsconfig.Config]().Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel)

	var cleanup func(context.Context) error
	if cfg.Tracing.OTLPEndpoint != "" {
		cleanup, err = initTracer(cfg)
		if err != nil {
			return fmt.Errorf("failed to start tracing: %w", err)
		}
	}

	m := metrics.NewMetrics()
	sim, err := simulator.New(cfg, logger, m)
	if err != nil {
		return fmt.Errorf("failed to build simulator: %w", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sim.Run(runCtx) }()

	stop := func(sig os.Signal) {
		logger.Warn("shutting down due to signal", "signal", sig)
		cancelRun()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case err := <-done:
				if err != nil {
					logger.Error("simulator stopped with error", "error", err)
				}
			case <-time.After(10 * time.Second):
				logger.Error("simulator did not stop within timeout")
			}
		}()

		if cleanup != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				const timeout = 5 * time.Second
				shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := cleanup(shutdownCtx); err != nil {
					logger.Error("failed to shut down tracer", "error", err)
				}
			}()
		}

		wg.Wait()
		os.Exit(0)
	}
	defer stop(syscall.SIGINT)

	shutdown.AddWithParam(stop)
	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	return nil
}

func initTracer(cfg *vsconfig.Config) (func(context.Context) error, error) {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.Tracing.OTLPEndpoint),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", "vsagent"),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set resources: %w", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown, nil
}
