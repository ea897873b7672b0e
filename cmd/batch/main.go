package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Reics/MAGI-01/internal/batch"
	"github.com/Reics/MAGI-01/internal/setup"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Input file relative path, or '-' for stdin")
	output := flag.String("output", "", "Output file relative path, defaults to stdout")
	format := flag.String("format", "jsonl", "Output file format. Supported formats: 'jsonl'")
	workers := flag.Int("workers", 3, "Concurrent debate workers")
	continueOnError := flag.Bool("continue-on-error", true, "Continue on debate failures")
	dryRun := flag.Bool("dry-run", false, "Validate input without running debates")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Open input file
	var inputFile io.Reader
	if *input == "-" {
		inputFile = os.Stdin
		log.Info().Msg("Reading from stdin")
	} else {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to open input file")
		}
		defer f.Close()
		inputFile = f
		log.Info().Str("file", *input).Msg("Reading input file")
	}

	// Read records
	reader := batch.NewReader(inputFile, deps.Logger)
	recordsCh := reader.ReadAll(ctx)

	var records []batch.InputRecord
	for record := range recordsCh {
		records = append(records, record)
	}

	log.Info().Int("total", len(records)).Msg("Input file parsed")

	// Dry run validation
	if *dryRun {
		dryRunAndExit(records)
	}

	// Open output file
	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	// Create writer
	writer, err := batch.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}
	defer writer.Close()

	// Process with worker pool
	processor := batch.NewProcessor(deps.Orchestrator, *workers, deps.Logger)
	results := processor.Process(ctx, records)

	// Write results
	successCount := 0
	errorCount := 0

	for result := range results {
		if result.Error != "" {
			errorCount++
			if !*continueOnError {
				log.Fatal().Str("id", result.ID).Str("error", result.Error).Msg("Stopping on debate failure")
			}
		} else {
			successCount++
		}

		if err := writer.Write(result); err != nil {
			log.Error().Err(err).Str("id", result.ID).Msg("Failed to write result")

			if !*continueOnError {
				log.Fatal().Msg("Stopping due to write error")
			}
		}
	}

	log.Info().
		Int("success", successCount).
		Int("errors", errorCount).
		Dur("duration", time.Since(startTime)).
		Msg("Processing complete")

	log.Info().Msg("Batch processing complete")
}

func dryRunAndExit(records []batch.InputRecord) {
	errorCount := 0
	for _, record := range records {
		if record.Error != nil {
			log.Error().
				Int("line", record.LineNumber).
				Err(record.Error).
				Msg("Validation error")
			errorCount++
		}
	}

	if errorCount > 0 {
		log.Fatal().Int("errors", errorCount).Msg("Validation failed")
	}

	log.Info().Msg("Validation successful")
	os.Exit(0)
}
