package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"bboard/internal"
	"bboard/moderation"
	"bboard/observability"
	"bboard/runtime"
	"bboard/runtime/workers"
	"bboard/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes before
// the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.LoggerFromString(config.LogLevel)

	// 2. Moderation (embedded word lists + Aho-Corasick automaton)
	censoredChar, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	data, err := runtime.LoadCensoredWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded [%s]",
		len(data.Words), strings.Join(data.Languages, ",")))

	moderator, err := moderation.NewModerator(data.Words, censoredChar, log)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 3. Search index (in-memory only, discarded on shutdown)
	index, err := search.NewIndex(log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 4. Fixed group set & registry
	groups, err := ParseGroups(config.GroupSet)
	if err != nil {
		return fmt.Errorf("group set error: %w", err)
	}
	registry := runtime.NewRegistry(groups)
	stats := &observability.Stats{}

	engine := runtime.NewEngine(registry, &moderator, index, stats, runtime.EngineConfig{
		BackfillCount: config.BackfillCount,
		SearchLimit:   config.SearchLimit,
		QueueSize:     config.ConnectionBufferSize,
	}, log)

	// 5. Supervision
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(runtime.NewListener(address, engine, log))
	sup.Add(workers.NewHealthWorker(log, stats, registry, config.HealthInterval))

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	// 7. Wait for Stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	// 8. Final Cleanup: stop workers, then force remaining sessions out.
	sup.Stop()
	registry.CloseAll()
	<-done
	log.Info("Program stopped cleanly")

	return nil
}
