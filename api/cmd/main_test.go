package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

type stubServer struct {
	addr string

	listenErr   error
	shutdownErr error

	listened  bool
	shutdowns int
	closes    int
}

func (s *stubServer) ListenAndServe() error {
	s.listened = true
	return s.listenErr
}

func (s *stubServer) Shutdown(ctx context.Context) error {
	s.shutdowns++
	return s.shutdownErr
}

func (s *stubServer) Close() error {
	s.closes++
	return nil
}

func (s *stubServer) Addr() string { return s.addr }

func TestRun_BootstrapFailure(t *testing.T) {
	build := func() (httpServer, func(), error) {
		return nil, func() {}, errors.New("wire failure")
	}

	if got := Run(build, make(chan os.Signal, 1), zerolog.Nop()); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
}

func TestRun_SignalTriggersGracefulShutdown(t *testing.T) {
	// Pre-send the signal so Run takes the shutdown path deterministically.
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	srv := &stubServer{addr: ":0", listenErr: http.ErrServerClosed}

	var cleaned bool
	build := func() (httpServer, func(), error) {
		return srv, func() { cleaned = true }, nil
	}

	if got := Run(build, sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("expected exit 0, got %d", got)
	}
	if !srv.listened {
		t.Fatalf("expected ListenAndServe called")
	}
	if srv.shutdowns != 1 {
		t.Fatalf("expected one Shutdown, got %d", srv.shutdowns)
	}
	if srv.closes != 0 {
		t.Fatalf("graceful path must not force Close")
	}
	if !cleaned {
		t.Fatalf("expected cleanup to run")
	}
}

func TestRun_ServerCrash(t *testing.T) {
	srv := &stubServer{addr: ":0", listenErr: errors.New("listen tcp: address in use")}

	var cleaned bool
	build := func() (httpServer, func(), error) {
		return srv, func() { cleaned = true }, nil
	}

	if got := Run(build, make(chan os.Signal, 1), zerolog.Nop()); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
	if srv.shutdowns != 0 {
		t.Fatalf("crash path must not call Shutdown")
	}
	if !cleaned {
		t.Fatalf("expected cleanup to run")
	}
}

func TestRun_ShutdownFailureForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	srv := &stubServer{
		addr:        ":0",
		listenErr:   http.ErrServerClosed,
		shutdownErr: errors.New("connections still draining"),
	}

	build := func() (httpServer, func(), error) {
		return srv, func() {}, nil
	}

	_ = Run(build, sigCh, zerolog.Nop())

	if srv.shutdowns != 1 {
		t.Fatalf("expected Shutdown attempt")
	}
	if srv.closes != 1 {
		t.Fatalf("expected Close after a failed Shutdown, got %d", srv.closes)
	}
}
