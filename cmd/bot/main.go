// The bot command is a load driver for the chat server: it connects N
// simulated clients that negotiate a nickname and then issue randomized
// chat lines and commands at a configurable rate, optionally dropping
// connections abruptly. It exercises the server; it is not part of it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bot driver error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return exitConfig, fmt.Errorf("config validation: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Duration)
		defer cancel()
	}

	header := fmt.Sprintf("  ====== Spawning %d bots -> %s (rate ~%s) ======",
		config.Bots, config.ServerAddress, config.ActionRate)
	if config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	// 3. Spawn bots with a small stagger to avoid a connection storm.
	var wg sync.WaitGroup
	for i := 0; i < config.Bots; i++ {
		b := newBot(log, config.ServerAddress, config.ActionRate, config.Unstable)
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.run(ctx)
		}()

		select {
		case <-ctx.Done():
		case <-time.After(config.Stagger):
		}
	}

	wg.Wait()

	footer := "  ====== All bots finished ======"
	if config.Colours {
		footer = color.New(color.BgBlack, color.FgYellow).Render(footer)
	}
	fmt.Println(footer)
	return exitOK, nil
}
