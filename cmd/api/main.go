package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdc08161063/vrp/internal/api"
	"github.com/jdc08161063/vrp/internal/metrics"
)

func main() {
	srv, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	mux := http.NewServeMux()

	// Solve runs
	mux.HandleFunc("/v1/solve", srv.SolveHandler)
	mux.HandleFunc("/v1/runs", srv.RunsHandler)
	mux.HandleFunc("/v1/runs/", srv.RunByIDHandler) // includes /events/stream and /ws

	// Health
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)

	// Metrics
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}
