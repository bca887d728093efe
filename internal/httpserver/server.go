// Copyright 2024 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
)

// Server is an HTTP server implementation, which uses
// the HTTP handler provided.
type Server struct {
	name       string
	address    string
	addressSet chan struct{}
	handler    http.Handler
	logger     Logger
	optional   optionalSettings

	addressMutex sync.Mutex
}

// New creates a new HTTP server with a name, listening on
// the address specified and using the HTTP handler provided.
func New(name, address string, handler http.Handler,
	logger Logger, options ...Option) *Server {
	return &Server{
		name:       name,
		address:    address,
		addressSet: make(chan struct{}),
		handler:    handler,
		logger:     logger,
		optional:   newOptionalSettings(options),
	}
}

// GetAddress obtains the address the HTTP server is listening on,
// once the server is listening.
func (s *Server) GetAddress() (address string) {
	<-s.addressSet
	s.addressMutex.Lock()
	defer s.addressMutex.Unlock()
	return s.address
}

// Run runs the HTTP server until ctx is canceled.
// The ready channel is closed once the server listens.
// The done channel receives nil once the server stopped,
// or an error if it crashed.
func (s *Server) Run(ctx context.Context, ready chan<- struct{}, done chan<- error) {
	server := http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadTimeout:       s.optional.readTimeout,
		ReadHeaderTimeout: s.optional.readHeaderTimeout,
	}

	crashed := make(chan struct{})
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		select {
		case <-ctx.Done():
		case <-crashed:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.optional.shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			s.logger.Error(s.name + " http server failed shutting down within " +
				s.optional.shutdownTimeout.String())
		}
	}()

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		close(s.addressSet)
		close(crashed)
		done <- err
		return
	}

	s.addressMutex.Lock()
	s.address = listener.Addr().String()
	s.addressMutex.Unlock()
	close(s.addressSet)

	s.logger.Info(s.name + " http server listening on " + s.address)
	close(ready)

	err = server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		close(crashed)
		done <- err
		return
	}

	<-shutdownDone
	done <- nil
}
