package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Reics/MAGI-01/internal/orchestrator"
	"github.com/Reics/MAGI-01/internal/report"
	"github.com/Reics/MAGI-01/internal/setup"
	setuplogger "github.com/Reics/MAGI-01/internal/setup/logger"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := setuplogger.NewConsole(os.Stderr, os.Getenv("LOG_LEVEL"))
	log.Logger = logger

	// Load env
	_ = godotenv.Load()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	directive := readDirective(os.Args[1:])
	if directive == "" {
		// Nothing to deliberate on. Exit quietly without launching agents.
		return
	}

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}

	session, err := deps.Orchestrator.Run(ctx, directive)
	if err != nil {
		if errors.Is(err, orchestrator.ErrQuorumFailed) {
			fmt.Fprintln(os.Stderr, "debate aborted: not every agent produced a valid first-round response")
			os.Exit(1)
		}
		logger.Error().Err(err).Msg("Debate failed")
		os.Exit(1)
	}

	presenter := report.New(os.Stdout)
	if err := presenter.Render(session); err != nil {
		logger.Error().Err(err).Msg("Failed to render report")
		os.Exit(1)
	}
}

// readDirective builds the directive from CLI arguments, falling back
// to an interactive prompt when stdin is a terminal.
func readDirective(args []string) string {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " "))
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return ""
	}

	fmt.Print("directive> ")
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
