package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DebateRunner runs one two-round debate.
type DebateRunner interface {
	Run(ctx context.Context, directive string) (*models.DebateSession, error)
}

// DirectiveMessage is the JSON payload carried by a directive stream
// entry.
type DirectiveMessage struct {
	ID        string `json:"id"`
	Directive string `json:"directive"`
}

// VerdictMessage is published to the verdict stream for every finished
// debate.
type VerdictMessage struct {
	ID         string                `json:"id"`
	Directive  string                `json:"directive"`
	Confidence float64               `json:"confidence"`
	Resolution models.ResolutionTier `json:"resolution"`
	Error      string                `json:"error,omitempty"`
}

type Consumer struct {
	client        *redis.Client
	stream        string
	verdictStream string
	groupID       string
	consumerName  string
	runner        DebateRunner
	logger        *zerolog.Logger
}

func NewConsumer(client *redis.Client, stream string, verdictStream string, groupID string, consumerName string, runner DebateRunner, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:        client,
		stream:        stream,
		verdictStream: verdictStream,
		groupID:       groupID,
		consumerName:  consumerName,
		runner:        runner,
		logger:        logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var directive DirectiveMessage
	if err := json.Unmarshal([]byte(payload), &directive); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // bad message — ACK to skip it
		return
	}

	if strings.TrimSpace(directive.Directive) == "" {
		c.logger.Error().Str("id", msg.ID).Msg("Empty directive")
		c.ack(ctx, msg.ID)
		return
	}

	verdict := VerdictMessage{
		ID:        directive.ID,
		Directive: directive.Directive,
	}

	session, err := c.runner.Run(ctx, directive.Directive)
	if err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Debate failed")
		verdict.Error = err.Error()
	} else {
		verdict.Confidence = session.Report.AverageConfidence
		verdict.Resolution = session.Report.Tier

		c.logger.Info().
			Str("id", msg.ID).
			Float64("confidence", verdict.Confidence).
			Str("resolution", string(verdict.Resolution)).
			Msg("Debate complete")
	}

	c.publish(ctx, verdict)
	c.ack(ctx, msg.ID)
}

func (c *Consumer) publish(ctx context.Context, verdict VerdictMessage) {
	body, err := json.Marshal(verdict)
	if err != nil {
		c.logger.Error().Err(err).Str("id", verdict.ID).Msg("Failed to encode verdict")
		return
	}

	err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.verdictStream,
		Values: map[string]any{"payload": string(body)},
	}).Err()
	if err != nil {
		c.logger.Error().Err(err).Str("id", verdict.ID).Msg("Failed to publish verdict")
	}
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
