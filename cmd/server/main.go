/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the debt simulation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional YAML config file)
  2. Initialize the run store (SQLite, or in-memory when no -db)
  3. Load extra scenario definitions from YAML, if configured
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path for recorded runs
              (default: runs in memory only; use ":memory:" to force
              SQLite's in-memory engine)
  -scenarios  YAML file with extra scenario definitions
  -config     YAML config file; flags override its values

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the run store
  4. Exit

EXAMPLES:
  # Record runs in a file database
  ./server -db="./data/runs.db"

  # Extra scenarios from a file
  ./server -scenarios="./scenarios.yaml"

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Run persistence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/scenario"
	"github.com/warp/debt-engine/simulation"
	memstore "github.com/warp/debt-engine/simulation/store"
	"github.com/warp/debt-engine/store/sqlite"
)

// Config is the optional YAML server configuration.
type Config struct {
	Port          int    `yaml:"port"`
	DatabasePath  string `yaml:"database_path"`
	ScenariosFile string `yaml:"scenarios_file"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{Port: 8080}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return cfg, nil
}

func main() {
	// Flags
	configPath := flag.String("config", "", "YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path for recorded runs (overrides config)")
	scenariosPath := flag.String("scenarios", "", "YAML file with extra scenarios (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *scenariosPath != "" {
		cfg.ScenariosFile = *scenariosPath
	}

	// Initialize run store
	var runs simulation.RunStore
	if cfg.DatabasePath != "" {
		store, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer store.Close()
		runs = store
	} else {
		runs = memstore.NewMemory()
	}

	// Extra scenarios
	var extra []scenario.Definition
	if cfg.ScenariosFile != "" {
		if extra, err = scenario.Load(cfg.ScenariosFile); err != nil {
			log.Fatalf("Failed to load scenarios: %v", err)
		}
	}

	// Router
	handler := api.NewHandler(runs, extra...)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
