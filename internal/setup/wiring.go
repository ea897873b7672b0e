package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Reics/MAGI-01/internal/bridge"
	"github.com/Reics/MAGI-01/internal/config"
	"github.com/Reics/MAGI-01/internal/consensus"
	"github.com/Reics/MAGI-01/internal/invoker"
	"github.com/Reics/MAGI-01/internal/models"
	"github.com/Reics/MAGI-01/internal/orchestrator"
	"github.com/rs/zerolog"
)

// Config carries environment-driven process configuration. The roster
// and runtime come from the YAML agents config instead.
type Config struct {
	InvokerProvider    string
	AWSRegion          string
	BedrockMaxTokens   int
	BedrockTemperature float64
	TimeoutOverride    time.Duration
}

type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Roster       []models.AgentSpec
	Logger       *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		InvokerProvider:    getEnv("INVOKER_PROVIDER", "process"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		BedrockMaxTokens:   getEnvInt("BEDROCK_MAX_TOKENS", 1024),
		BedrockTemperature: getEnvFloat("BEDROCK_TEMPERATURE", 0.0),
		TimeoutOverride:    time.Duration(getEnvInt("AGENT_TIMEOUT_SECONDS", 0)) * time.Second,
	}
}

// Wire assembles a ready-to-run orchestrator from the agents config and
// the environment.
func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	agentsCfg, err := config.LoadAgentsConfig()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load agents config: %w", err)
		}
		logger.Warn().Msg("no agents config file found, using built-in MAGI roster")
		agentsCfg = config.DefaultConfig()
	}

	inv, err := createInvoker(ctx, cfg, agentsCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoker: %w", err)
	}

	roster := agentsCfg.Roster()
	timeout := agentsCfg.Timeout()
	if cfg.TimeoutOverride > 0 {
		timeout = cfg.TimeoutOverride
	}

	builder := bridge.NewBuilder(roster)
	aggregator := consensus.NewAggregator(logger)
	orch := orchestrator.New(roster, inv, builder, aggregator, timeout, logger)

	logger.Info().
		Int("roster", len(roster)).
		Dur("timeout", timeout).
		Str("provider", cfg.InvokerProvider).
		Msg("debate orchestrator wired")

	return &Dependencies{
		Orchestrator: orch,
		Roster:       roster,
		Logger:       logger,
	}, nil
}

func createInvoker(ctx context.Context, cfg *Config, agentsCfg *config.Config, logger *zerolog.Logger) (orchestrator.Invoker, error) {
	switch cfg.InvokerProvider {
	case "process", "":
		return invoker.NewProcessInvoker(agentsCfg.Debate.Runtime, logger), nil
	case "bedrock":
		return invoker.NewBedrockInvoker(ctx, cfg.AWSRegion, cfg.BedrockMaxTokens, cfg.BedrockTemperature, logger)
	default:
		return nil, fmt.Errorf("unsupported invoker provider: %s", cfg.InvokerProvider)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}
