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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector an agent process exposes. All
// per-operation counters are labeled by agent_id so a shared scrape target
// (e.g. one Redis-backed swarm) still breaks activity out per robot.
type Metrics struct {
	GossipPutsTotal      *prometheus.CounterVec
	GossipGetsTotal      *prometheus.CounterVec
	ConflictsTotal       *prometheus.CounterVec
	EvictionsTotal       *prometheus.CounterVec
	PrunedTuplesTotal    *prometheus.CounterVec
	BroadcastDropsTotal  *prometheus.CounterVec
	TableOccupancy       *prometheus.GaugeVec
	PruneSweepDuration   prometheus.Histogram
	BroadcastRecvLatency *prometheus.HistogramVec
}

// NewMetrics allocates and registers every collector against the default
// Prometheus registry.
func NewMetrics() *Metrics {
	metrics := &Metrics{
		GossipPutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_gossip_puts_total",
			Help: "The total number of PUT broadcasts observed, by agent and origin (local or remote)",
		}, []string{"agent_id", "origin"}),
		GossipGetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_gossip_gets_total",
			Help: "The total number of GET broadcasts observed, by agent and origin (local or remote)",
		}, []string{"agent_id", "origin"}),
		ConflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_conflicts_total",
			Help: "The total number of equal-timestamp write conflicts arbitrated, by agent and outcome (won or lost)",
		}, []string{"agent_id", "outcome"}),
		EvictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_evictions_total",
			Help: "The total number of tuples evicted to make room for a higher-priority insert, by agent and segment",
		}, []string{"agent_id", "segment"}),
		PrunedTuplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_pruned_tuples_total",
			Help: "The total number of tuples removed by age/distance pruning, by agent",
		}, []string{"agent_id"}),
		BroadcastDropsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vs_broadcast_drops_total",
			Help: "The total number of received frames discarded because they were not VS broadcasts, by agent",
		}, []string{"agent_id"}),
		TableOccupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vs_table_occupancy",
			Help: "The current number of occupied table slots, by agent and segment",
		}, []string{"agent_id", "segment"}),
		PruneSweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vs_prune_sweep_duration_seconds",
			Help:    "Duration of a full PruneTuples sweep",
			Buckets: prometheus.DefBuckets,
		}),
		BroadcastRecvLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vs_broadcast_receive_duration_seconds",
			Help:    "Duration of OnBroadcastReceived handling, by agent",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent_id"}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.GossipPutsTotal)
	prometheus.MustRegister(m.GossipGetsTotal)
	prometheus.MustRegister(m.ConflictsTotal)
	prometheus.MustRegister(m.EvictionsTotal)
	prometheus.MustRegister(m.PrunedTuplesTotal)
	prometheus.MustRegister(m.BroadcastDropsTotal)
	prometheus.MustRegister(m.TableOccupancy)
	prometheus.MustRegister(m.PruneSweepDuration)
	prometheus.MustRegister(m.BroadcastRecvLatency)
}

// RecordPut increments the put counter for agentID. origin is "local" or
// "remote".
func (m *Metrics) RecordPut(agentID, origin string) {
	m.GossipPutsTotal.WithLabelValues(agentID, origin).Inc()
}

// RecordGet increments the get counter for agentID. origin is "local" or
// "remote".
func (m *Metrics) RecordGet(agentID, origin string) {
	m.GossipGetsTotal.WithLabelValues(agentID, origin).Inc()
}

// RecordConflict increments the conflict counter for agentID. outcome is
// "won" or "lost".
func (m *Metrics) RecordConflict(agentID, outcome string) {
	m.ConflictsTotal.WithLabelValues(agentID, outcome).Inc()
}

// RecordEviction increments the eviction counter for agentID. segment is
// "active" or "passive", naming which segment the evicted tuple left.
func (m *Metrics) RecordEviction(agentID, segment string) {
	m.EvictionsTotal.WithLabelValues(agentID, segment).Inc()
}

// RecordPruned adds count to the pruned-tuples counter for agentID.
func (m *Metrics) RecordPruned(agentID string, count float64) {
	if count <= 0 {
		return
	}
	m.PrunedTuplesTotal.WithLabelValues(agentID).Add(count)
}

// RecordBroadcastDrop increments the dropped-frame counter for agentID.
func (m *Metrics) RecordBroadcastDrop(agentID string) {
	m.BroadcastDropsTotal.WithLabelValues(agentID).Inc()
}

// SetTableOccupancy sets the occupancy gauge for agentID's given segment.
func (m *Metrics) SetTableOccupancy(agentID, segment string, count float64) {
	m.TableOccupancy.WithLabelValues(agentID, segment).Set(count)
}

// RecordPruneSweep observes how long a PruneTuples sweep took.
func (m *Metrics) RecordPruneSweep(seconds float64) {
	m.PruneSweepDuration.Observe(seconds)
}

// RecordBroadcastReceive observes how long handling one inbound broadcast
// took for agentID.
func (m *Metrics) RecordBroadcastReceive(agentID string, seconds float64) {
	m.BroadcastRecvLatency.WithLabelValues(agentID).Observe(seconds)
}
