package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/burrowdb/burrow/api"
	"github.com/burrowdb/burrow/cfg"
	"github.com/burrowdb/burrow/db"
	"github.com/burrowdb/burrow/dispatch"
	"github.com/burrowdb/burrow/insight"
	"github.com/burrowdb/burrow/telemetry"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <database-path>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Serve a SQLite database as a catalog of named operations.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Exactly one positional argument: the database path. Anything
	// else is fatal before any component is constructed.
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	dbPath := flag.Arg(0)

	// Load configuration
	if err := cfg.Load(*cfg.ConfigPathFlag); err != nil {
		panic(err)
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Setup logging
	var writer io.Writer = zerolog.NewConsoleWriter()
	if cfg.Config.Logging.Format == "json" {
		writer = os.Stdout
	}
	gLog := zerolog.New(writer).
		With().
		Timestamp().
		Uint64("instance_id", cfg.Config.InstanceID).
		Logger()

	if cfg.Config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("Burrow - SQLite Operation Gateway")
	telemetry.Initialize()

	// Open the single database handle
	executor, err := db.NewExecutor(dbPath, cfg.TableGlobs(), cfg.Config.Cache.SchemaEntries)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
		return
	}
	defer executor.Close()

	// Wire up the dispatcher and HTTP surface
	dispatcher := dispatch.NewDispatcher(executor, insight.NewLedger())

	server, err := api.NewServer(dispatcher, executor)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize API server")
		return
	}

	addr := fmt.Sprintf("%s:%d", cfg.Config.HTTP.BindAddress, cfg.Config.HTTP.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	go func() {
		log.Info().Str("addr", addr).Str("database", dbPath).Msg("Burrow is operational")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("HTTP server shutdown failed")
	}
}
