// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package prometheus

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ChainSafe/triestore/internal/log"
	"github.com/ChainSafe/triestore/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var logger = log.NewFromGlobal(log.AddContext("internal", "trie/metrics"))

const storeStatsNamespace = "triestore_store"

// StatsProvider provides statistics of the backing store by name.
type StatsProvider interface {
	Stats() (map[string]int64, error)
}

// StoreStatsExporter exports the statistics of the backing store as
// gauges, creating one gauge per statistic the first time it is seen.
type StoreStatsExporter struct {
	registerer prometheus.Registerer

	mutex  sync.Mutex
	gauges map[string]prometheus.Gauge
}

// NewStoreStatsExporter creates an exporter registering its gauges to the
// registerer. A nil registerer uses the default prometheus registerer.
func NewStoreStatsExporter(registerer prometheus.Registerer) *StoreStatsExporter {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &StoreStatsExporter{
		registerer: registerer,
		gauges:     make(map[string]prometheus.Gauge),
	}
}

// Export sets the gauge of each statistic to its value.
func (e *StoreStatsExporter) Export(stats map[string]int64) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	for name, value := range stats {
		gauge, ok := e.gauges[name]
		if !ok {
			var err error
			gauge, err = register(e.registerer, prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: storeStatsNamespace,
				Name:      SanitiseStatName(name),
				Help:      "store statistic " + name,
			}))
			if err != nil {
				return fmt.Errorf("registering gauge for statistic %s: %w", name, err)
			}
			e.gauges[name] = gauge
		}
		gauge.Set(float64(value))
	}
	return nil
}

// Run exports the statistics of the provider at each interval,
// until the context is canceled. It does nothing if publishing
// is disabled in the config.
func (e *StoreStatsExporter) Run(ctx context.Context, provider StatsProvider,
	config metrics.IntervalConfig) {
	if !config.Publish {
		return
	}

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	for {
		err := e.collect(provider)
		if err != nil {
			logger.Warnf("exporting store statistics: %s", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *StoreStatsExporter) collect(provider StatsProvider) error {
	stats, err := provider.Stats()
	if err != nil {
		return fmt.Errorf("getting statistics: %w", err)
	}
	return e.Export(stats)
}

// SanitiseStatName replaces the characters of a statistic
// name which are not valid in a prometheus metric name.
func SanitiseStatName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(name)
}
