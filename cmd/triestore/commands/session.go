// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package commands

import (
	"context"
	"fmt"

	cfg "github.com/ChainSafe/triestore/config"
	"github.com/ChainSafe/triestore/internal/database"
	"github.com/ChainSafe/triestore/internal/metrics"
	"github.com/ChainSafe/triestore/internal/pprof"
	trieprometheus "github.com/ChainSafe/triestore/internal/trie/metrics/prometheus"
	"github.com/ChainSafe/triestore/pkg/trie/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// session holds the database and shard tries opened for one command.
type session struct {
	config   *cfg.Config
	db       database.Database
	tries    *storage.Tries
	metrics  *trieprometheus.Metrics
	server   *metrics.Server
	cancel   context.CancelFunc
	exporter chan struct{}
	pprof    *pprof.Service
}

// openSession opens the database of the config. If metrics or pprof
// are enabled, it also serves them until the session is closed.
func openSession(ctx context.Context, config *cfg.Config) (s *session, err error) {
	backend, err := database.ParseBackend(config.Store.Backend)
	if err != nil {
		return nil, err
	}

	db, err := database.New(backend, config.DatabasePath(), config.Store.InMemory)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s = &session{
		config: config,
		db:     db,
	}

	if config.Pprof.Enabled {
		s.pprof = pprof.NewService(config.PprofSettings(), logger)
		err = s.pprof.Start()
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("starting pprof server: %w", err)
		}
	}

	var triesOptions []storage.TriesOption
	if config.Metrics.Enabled {
		err = s.startMetrics(ctx)
		if err != nil {
			_ = s.close()
			return nil, err
		}
		triesOptions = append(triesOptions, storage.WithMetrics(s.metrics))
	}

	s.tries = storage.NewTries(db, config.TriesSettings(), triesOptions...)
	return s, nil
}

func (s *session) startMetrics(ctx context.Context) (err error) {
	registry := prometheus.NewRegistry()

	s.metrics, err = trieprometheus.New(registry)
	if err != nil {
		return fmt.Errorf("creating trie metrics: %w", err)
	}

	server := metrics.NewServer(s.config.Metrics.Address, registry)
	err = server.Start()
	if err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	s.server = server

	exporter := trieprometheus.NewStoreStatsExporter(registry)
	ctx, s.cancel = context.WithCancel(ctx)
	s.exporter = make(chan struct{})
	go func() {
		defer close(s.exporter)
		exporter.Run(ctx, s.db, s.config.IntervalConfig())
	}()

	return nil
}

// touched records the nodes touched by a trie read in the metrics.
func (s *session) touched(n uint64) {
	if s.metrics == nil {
		return
	}
	s.metrics.TouchedNodesAdd(s.config.ShardUID(), n)
}

func (s *session) close() (err error) {
	if s.exporter != nil {
		s.cancel()
		<-s.exporter
	}

	if s.server != nil {
		err = s.server.Stop()
		if err != nil {
			logger.Warnf("stopping metrics server: %s", err)
		}
	}

	if s.pprof != nil {
		err = s.pprof.Stop()
		if err != nil {
			logger.Warnf("stopping pprof server: %s", err)
		}
	}

	err = s.db.Close()
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
