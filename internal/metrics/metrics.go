// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ChainSafe/triestore/internal/httpserver"
	"github.com/ChainSafe/triestore/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultInterval is the default interval between two collections
// of periodically collected metrics.
const DefaultInterval = 10 * time.Second

var logger = log.NewFromGlobal(log.AddContext("pkg", "metrics"))

var (
	ErrServerExited  = errors.New("metrics server exited unexpectedly")
	ErrServerTimeout = errors.New("metrics server exit timeout")
)

// IntervalConfig for interval collection
type IntervalConfig struct {
	Publish  bool
	Interval time.Duration
}

// NewIntervalConfig is constructor for IntervalConfig, and uses default metrics interval
func NewIntervalConfig(publish bool) IntervalConfig {
	return IntervalConfig{
		Publish:  publish,
		Interval: DefaultInterval,
	}
}

// Server is a metrics http server
type Server struct {
	cancel context.CancelFunc
	server *httpserver.Server
	done   chan error
}

// NewServer is a constructor for a metrics server serving the
// metrics of the gatherer on /metrics. A nil gatherer serves the
// metrics of the default prometheus registry.
func NewServer(address string, gatherer prometheus.Gatherer) (s *Server) {
	handler := promhttp.Handler()
	if gatherer != nil {
		handler = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}

	m := http.NewServeMux()
	m.Handle("/metrics", handler)
	return &Server{
		server: httpserver.New("metrics", address, m, logger),
	}
}

// Start will start a dedicated metrics server.
func (s *Server) Start() (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	ready := make(chan struct{})
	s.done = make(chan error)

	go s.server.Run(ctx, ready, s.done)

	select {
	case <-ready:
		logger.Infof("serving metrics at http://%s/metrics", s.server.GetAddress())
		return nil
	case err := <-s.done:
		close(s.done)
		cancel()
		if err != nil {
			return err
		}
		return ErrServerExited
	}
}

// Address returns the address the server listens on.
func (s *Server) Address() string {
	return s.server.GetAddress()
}

// Stop will stop the metrics server
func (s *Server) Stop() (err error) {
	s.cancel()
	timer := time.NewTimer(30 * time.Second)
	defer timer.Stop()

	select {
	case err := <-s.done:
		close(s.done)
		if err != nil {
			return fmt.Errorf("stopping metrics server: %w", err)
		}
		return nil
	case <-timer.C:
		return ErrServerTimeout
	}
}
