// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package prometheus

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/triestore/pkg/trie/cache"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace  = "triestore"
	shardLabel = "shard"
)

var _ storage.Metrics = (*Metrics)(nil)

// Metrics exports the shard tries activity to prometheus,
// labelled by shard.
type Metrics struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheSize      *prometheus.GaugeVec
	writes         *prometheus.CounterVec
	deletes        *prometheus.CounterVec
	touchedNodes   *prometheus.CounterVec
}

// New creates the metrics and registers them to the registerer.
// A nil registerer registers them to the default prometheus registerer.
// Metrics already registered are reused.
func New(registerer prometheus.Registerer) (metrics *Metrics, err error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	metrics = new(Metrics)
	counters := []struct {
		field     **prometheus.CounterVec
		subsystem string
		name      string
		help      string
	}{
		{&metrics.cacheHits, "shard_cache", "hits_total", "total number of shard cache hits"},
		{&metrics.cacheMisses, "shard_cache", "misses_total", "total number of shard cache misses"},
		{&metrics.cacheEvictions, "shard_cache", "evictions_total",
			"total number of entries evicted from the shard cache"},
		{&metrics.writes, "store", "writes_total", "total number of trie nodes and values written"},
		{&metrics.deletes, "store", "deletes_total", "total number of trie nodes and values deleted"},
		{&metrics.touchedNodes, "trie", "touched_nodes_total",
			"total number of trie nodes touched by storage sessions"},
	}
	for _, counter := range counters {
		counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: counter.subsystem,
			Name:      counter.name,
			Help:      counter.help,
		}, []string{shardLabel})
		*counter.field, err = register(registerer, counterVec)
		if err != nil {
			return nil, fmt.Errorf("cannot register %s_%s counter: %w",
				counter.subsystem, counter.name, err)
		}
	}

	cacheSize := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "shard_cache",
		Name:      "entries",
		Help:      "number of entries in the shard cache",
	}, []string{shardLabel})
	metrics.cacheSize, err = register(registerer, cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot register shard cache entries gauge: %w", err)
	}

	return metrics, nil
}

// register registers the collector, or returns the collector
// already registered with the same description.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	err := registerer.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(T)
		if ok {
			return existing, nil
		}
	}
	return collector, err
}

// ShardCacheMetrics returns the metrics of the shard cache of the shard.
func (m *Metrics) ShardCacheMetrics(shardUID storage.ShardUID) cache.Metrics {
	shard := shardUID.String()
	return &shardCacheMetrics{
		hits:      m.cacheHits.WithLabelValues(shard),
		misses:    m.cacheMisses.WithLabelValues(shard),
		evictions: m.cacheEvictions.WithLabelValues(shard),
		size:      m.cacheSize.WithLabelValues(shard),
	}
}

// ChangesApplied adds the writes and deletes committed to the shard.
func (m *Metrics) ChangesApplied(shardUID storage.ShardUID, writes, deletes int) {
	shard := shardUID.String()
	m.writes.WithLabelValues(shard).Add(float64(writes))
	m.deletes.WithLabelValues(shard).Add(float64(deletes))
}

// TouchedNodesAdd adds the nodes touched by a storage session of the shard.
func (m *Metrics) TouchedNodesAdd(shardUID storage.ShardUID, n uint64) {
	m.touchedNodes.WithLabelValues(shardUID.String()).Add(float64(n))
}

type shardCacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

func (s *shardCacheMetrics) CacheHit()             { s.hits.Inc() }
func (s *shardCacheMetrics) CacheMiss()            { s.misses.Inc() }
func (s *shardCacheMetrics) CacheEvicted()         { s.evictions.Inc() }
func (s *shardCacheMetrics) CacheSizeSet(size int) { s.size.Set(float64(size)) }
