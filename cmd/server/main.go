package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"lan-chat/admission"
	"lan-chat/contract"
	"lan-chat/moderation"
	"lan-chat/repositories"
	"lan-chat/runtime"
	"lan-chat/runtime/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so deferred cleanup always executes
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. History store & journal
	history := repositories.NewHistoryRepository(config.HistoryFilepath, log)
	journal := runtime.NewJournal(log, history)
	registry := runtime.NewRegistry()

	// 3. Moderation
	replacement, err := characterRune(config.CensoredChar)
	if err != nil {
		return err
	}
	censor, err := moderation.NewModerator(config.censoredWords(), replacement)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	dispatcher := runtime.NewDispatcher(log, registry, history, journal, censor)

	// 4. Listener & supervised workers
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	acceptor := runtime.NewAcceptor(log, listener, admissionFilter(config, log),
		registry, dispatcher, journal, config.WriteTimeout)
	telemetry := workers.NewTelemetryWorker(log, registry, config.MetricInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(acceptor, telemetry)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal.Record(fmt.Sprintf("Server started on %s", address))
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}

// admissionFilter builds the configured admission policy. Unknown modes
// are rejected by config validation before this is reached.
func admissionFilter(config Config, log *slog.Logger) contract.AdmissionFilter {
	switch config.AdmissionMode {
	case "open":
		return admission.AllowAll{}
	case "geo":
		return admission.NewGeoFilter(log, config.countries(), config.GeoLookupTimeout)
	default:
		return admission.LanFilter{Log: log}
	}
}
