package api

import (
	"context"
	"os"
	"strings"

	"github.com/jdc08161063/vrp/internal/config"
	"github.com/jdc08161063/vrp/internal/metrics"
	"github.com/jdc08161063/vrp/internal/store"
)

// Server wires the run store, event broker and solver defaults.
type Server struct {
	Store    store.Store
	Broker   EventBroker
	Defaults config.Solver
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the in-memory
// store; if REDIS_URL is unset, uses the in-memory broker.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.EnsureSchema(context.Background()); err != nil {
				return nil, err
			}
		}
		s = sp
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	defaults, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	metrics.RegisterDefault()
	return &Server{Store: s, Broker: broker, Defaults: defaults}, nil
}
