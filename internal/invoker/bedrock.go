package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rs/zerolog"
)

var anthropicVersion = "bedrock-2023-05-31"

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BedrockInvoker is the remote counterpart of ProcessInvoker: one
// Bedrock InvokeModel call per invocation, with the agent's model
// reference used as the Bedrock model ID. The model's text response is
// normalized through the same JSON pipeline as process stdout.
type BedrockInvoker struct {
	client      *bedrockruntime.Client
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewBedrockInvoker(ctx context.Context, region string, maxTokens int, temperature float64, logger *zerolog.Logger) (*BedrockInvoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &BedrockInvoker{
		client:      bedrockruntime.NewFromConfig(cfg),
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}, nil
}

func (b *BedrockInvoker) Invoke(ctx context.Context, agent models.AgentSpec, prompt string, timeout time.Duration) models.Outcome {
	start := time.Now()

	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        b.maxTokens,
		Temperature:      b.temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return models.Outcome{
			AgentID:      agent.Name,
			Status:       models.StatusError,
			ErrorMessage: fmt.Sprintf("unable to serialize model request: %v", err),
			Latency:      time.Since(start).Seconds(),
		}
	}

	output, err := b.client.InvokeModel(invokeCtx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(agent.Model),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	elapsed := time.Since(start).Seconds()

	if errors.Is(invokeCtx.Err(), context.DeadlineExceeded) {
		b.logger.Warn().
			Str("agent", agent.Name).
			Dur("timeout", timeout).
			Msg("bedrock invocation timed out")
		return models.Outcome{
			AgentID: agent.Name,
			Status:  models.StatusTimeout,
			Latency: timeout.Seconds(),
		}
	}

	if err != nil {
		b.logger.Warn().
			Str("agent", agent.Name).
			Err(err).
			Msg("bedrock invocation failed")
		return models.Outcome{
			AgentID:      agent.Name,
			Status:       models.StatusError,
			ErrorMessage: err.Error(),
			Latency:      elapsed,
		}
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return models.Outcome{
			AgentID:      agent.Name,
			Status:       models.StatusInvalidJSON,
			RawOutput:    string(output.Body),
			ErrorMessage: err.Error(),
			Latency:      elapsed,
		}
	}

	var content string
	if len(response.Content) > 0 {
		content = response.Content[0].Text
	}

	outcome := normalizeOutput(agent.Name, []byte(content), elapsed)

	b.logger.Info().
		Str("agent", agent.Name).
		Str("status", string(outcome.Status)).
		Float64("latency", elapsed).
		Msg("bedrock invocation settled")

	return outcome
}
