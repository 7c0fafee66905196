// Package app wires the directory service: storage, domain services and
// the HTTP boundary, with lifecycle management.
package app

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feliperosa/vinculo/internal/services/directory/api/httpapi"
	"github.com/feliperosa/vinculo/internal/services/directory/auth"
	"github.com/feliperosa/vinculo/internal/services/directory/connections"
	"github.com/feliperosa/vinculo/internal/services/directory/password"
	"github.com/feliperosa/vinculo/internal/services/directory/profile"
	"github.com/feliperosa/vinculo/internal/services/directory/scraps"
	"github.com/feliperosa/vinculo/internal/services/directory/storage/sqlite"
	"github.com/feliperosa/vinculo/internal/services/directory/token"
)

const shutdownTimeout = 5 * time.Second

// Options configures a directory server.
type Options struct {
	// Addr is the listen address, e.g. ":8080". Use ":0" in tests to
	// pick a free port.
	Addr string
	// DBPath is the sqlite database file path.
	DBPath string
	// JWTSecret signs access tokens. Required.
	JWTSecret string
	// TokenTTL bounds token validity. Zero means the default.
	TokenTTL time.Duration
	// BcryptCost overrides the password hashing cost. Zero means the
	// default.
	BcryptCost int
}

// Server runs the directory service over HTTP.
type Server struct {
	app      *fiber.App
	store    *sqlite.Store
	listener net.Listener
}

// New opens storage, composes the services and binds the listener. The
// returned server is not serving yet; call Run.
func New(opts Options) (*Server, error) {
	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	encrypter, err := token.NewEncrypter(opts.JWTSecret, opts.TokenTTL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("new encrypter: %w", err)
	}
	hasher := password.NewHasher(opts.BcryptCost)

	app := httpapi.New(
		auth.NewService(store, hasher, encrypter),
		connections.NewService(store, store),
		scraps.NewService(store, store),
		profile.NewService(store, store, store),
		encrypter,
		store,
	)

	listener, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("listen on %s: %w", opts.Addr, err)
	}

	return &Server{app: app, store: store, listener: listener}, nil
}

// Addr reports the bound listen address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.app == nil {
		return fmt.Errorf("server not initialized")
	}
	defer s.store.Close()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.app.Listener(s.listener)
	}()

	select {
	case <-ctx.Done():
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}
