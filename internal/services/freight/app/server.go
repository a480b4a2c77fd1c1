// Package app wires the freight runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/EmreGurenekli/yolnext/internal/platform/config"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/api/rest"
	"github.com/EmreGurenekli/yolnext/internal/services/freight/matching"
	freightsqlite "github.com/EmreGurenekli/yolnext/internal/services/freight/storage/sqlite"
	"github.com/EmreGurenekli/yolnext/internal/services/notify"
)

const shutdownTimeout = 10 * time.Second

type serverEnv struct {
	DBPath      string `env:"YOLNEXT_FREIGHT_DB_PATH"`
	KafkaBroker string `env:"YOLNEXT_KAFKA_BROKER"`
	KafkaTopic  string `env:"YOLNEXT_KAFKA_TOPIC" envDefault:"freight.notifications"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "freight.db")
	}
	return cfg
}

// Server hosts the freight HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *freightsqlite.Store
	dispatcher notify.Dispatcher
}

// NewWithAddr creates a configured freight server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openFreightStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	dispatcher := newDispatcher(env)
	svc := matching.NewService(store, dispatcher, nil, nil)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	rest.NewHandler(svc).Register(e)

	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: e},
		store:      store,
		dispatcher: dispatcher,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a freight server until context cancellation.
func Run(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("freight server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases freight server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if closer, ok := s.dispatcher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("close notification dispatcher: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close freight store: %v", err)
		}
	}
}

func newDispatcher(env serverEnv) notify.Dispatcher {
	broker := strings.TrimSpace(env.KafkaBroker)
	if broker == "" {
		log.Printf("no kafka broker configured, notifications go to the process log")
		return notify.LogDispatcher{}
	}
	return notify.NewKafkaDispatcher(broker, env.KafkaTopic)
}

func openFreightStore(path string) (*freightsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := freightsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open freight sqlite store: %w", err)
	}
	return store, nil
}
