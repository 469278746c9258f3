/*
main.go - Application entry point

PURPOSE:

	Initializes and starts the LuxeStay booking engine server.
	Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
 1. Parse command-line flags
 2. Initialize SQLite store
 3. Create API handler with dependencies
 4. Start the pending-hold sweeper
 5. Configure HTTP router
 6. Start server with graceful shutdown

COMMAND-LINE FLAGS:

	-port            HTTP server port (default: 8080)
	-db              SQLite database path (default: luxestay.db)
	                 Use ":memory:" for in-memory database
	-sweep-interval  How often to release lapsed pending holds (default: 5m)
	-hold-duration   How long an unpaid booking holds its nights (default: 30m)
	-tariff          Path to a JSON tariff definition; the built-in
	                 standard tariff applies when omitted

GRACEFUL SHUTDOWN:

	On SIGINT/SIGTERM:
	1. Stop accepting new connections
	2. Wait for active requests to complete (30s timeout)
	3. Stop the sweeper and close the database
	4. Exit

EXAMPLES:

	# Run with file database
	./server -db="./data/luxestay.db"

	# Run with in-memory database
	./server -db=":memory:"

	# Aggressive hold release for demos
	./server -sweep-interval=30s -hold-duration=2m

	# Run with a custom tariff
	./server -tariff=./config/summer-tariff.json

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - api/sweeper.go: Pending-hold sweeper
  - store/sqlite/sqlite.go: Database implementation
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

	"github.com/karanyede/luxestay/api"
	"github.com/karanyede/luxestay/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "luxestay.db", "SQLite database path")
	sweepInterval := flag.Duration("sweep-interval", 5*time.Minute, "Interval between pending-hold sweeps")
	holdDuration := flag.Duration("hold-duration", 30*time.Minute, "How long an unpaid booking holds its nights")
	tariffPath := flag.String("tariff", "", "Path to a JSON tariff definition (default: built-in tariff)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)

	// Optional tariff override
	if *tariffPath != "" {
		data, err := os.ReadFile(*tariffPath)
		if err != nil {
			log.Fatalf("Failed to read tariff file %s: %v", *tariffPath, err)
		}
		if err := handler.LoadTariff(string(data)); err != nil {
			log.Fatalf("Invalid tariff in %s: %v", *tariffPath, err)
		}
		log.Printf("Loaded tariff from %s", *tariffPath)
	}

	// Start the pending-hold sweeper
	sweeper := api.NewHoldSweeper(store)
	sweeper.SweepInterval = *sweepInterval
	sweeper.HoldDuration = *holdDuration
	sweeper.Start()
	defer sweeper.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🏨 LuxeStay server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
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
