// Package orchestrator coordinates the two-round debate protocol:
// concurrent round-1 fan-out, quorum check, bridge-prompted round 2 and
// the merge into an ordered final outcome list.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/rs/zerolog"
)

// Invoker runs one agent invocation under a timeout. Every call settles
// into exactly one Outcome; it never returns an error.
type Invoker interface {
	Invoke(ctx context.Context, agent models.AgentSpec, prompt string, timeout time.Duration) models.Outcome
}

// PromptBuilder renders the peer-aware round-2 prompt for one agent.
type PromptBuilder interface {
	Build(self string, directive string, round1 models.RoundResult) (string, error)
}

// Aggregator reduces the final outcomes to a consensus report.
type Aggregator interface {
	Aggregate(finalOutcomes []models.Outcome) models.ConsensusReport
}

// ErrQuorumFailed is returned when fewer than the full roster answered
// ok in round 1. The session is over: no round 2, no aggregate.
var ErrQuorumFailed = errors.New("round-1 quorum not met")

type Orchestrator struct {
	roster     []models.AgentSpec
	invoker    Invoker
	prompts    PromptBuilder
	aggregator Aggregator
	timeout    time.Duration
	logger     *zerolog.Logger
}

// New builds an orchestrator over an immutable roster. The roster is
// copied so later mutation by the caller cannot leak into a session.
func New(roster []models.AgentSpec, invoker Invoker, prompts PromptBuilder, aggregator Aggregator, timeout time.Duration, logger *zerolog.Logger) *Orchestrator {
	owned := make([]models.AgentSpec, len(roster))
	copy(owned, roster)

	return &Orchestrator{
		roster:     owned,
		invoker:    invoker,
		prompts:    prompts,
		aggregator: aggregator,
		timeout:    timeout,
		logger:     logger,
	}
}

// Roster returns the session roster in order.
func (o *Orchestrator) Roster() []models.AgentSpec {
	roster := make([]models.AgentSpec, len(o.roster))
	copy(roster, o.roster)
	return roster
}

// Run executes one full debate session for the directive. It returns
// ErrQuorumFailed (wrapped) when round 1 does not reach full quorum;
// any other path yields a complete session with its consensus report.
func (o *Orchestrator) Run(ctx context.Context, directive string) (*models.DebateSession, error) {
	o.logger.Info().
		Int("roster", len(o.roster)).
		Dur("timeout", o.timeout).
		Msg("starting debate session")

	round1 := o.runRound(ctx, func(models.AgentSpec) (string, error) {
		return directive, nil
	})

	okCount := round1.CountOK(o.roster)
	if okCount < len(o.roster) {
		o.logger.Error().
			Int("ok", okCount).
			Int("required", len(o.roster)).
			Msg("quorum failed, session aborted")
		return nil, fmt.Errorf("%w: %d of %d agents answered ok", ErrQuorumFailed, okCount, len(o.roster))
	}

	o.logger.Info().Msg("round 1 complete, full quorum reached")

	round2 := o.runRound(ctx, func(agent models.AgentSpec) (string, error) {
		return o.prompts.Build(agent.Name, directive, round1)
	})

	finalOutcomes := o.merge(round1, round2)
	report := o.aggregator.Aggregate(finalOutcomes)

	return &models.DebateSession{
		Directive:     directive,
		Round1:        round1,
		Round2:        round2,
		FinalOutcomes: finalOutcomes,
		Report:        report,
		CreatedAt:     time.Now(),
	}, nil
}

// runRound fans out one invocation per roster member concurrently and
// blocks until every invocation has settled. Each agent's timeout is
// scoped to its own invocation; a timed-out sibling never disturbs the
// others.
func (o *Orchestrator) runRound(ctx context.Context, prompt func(models.AgentSpec) (string, error)) models.RoundResult {
	results := make(chan models.Outcome, len(o.roster))
	var wg sync.WaitGroup

	for _, agent := range o.roster {
		promptText, err := prompt(agent)
		if err != nil {
			// A prompt that cannot be rendered degrades this agent's
			// outcome without launching a process.
			results <- models.Outcome{
				AgentID:      agent.Name,
				Status:       models.StatusError,
				ErrorMessage: err.Error(),
			}
			continue
		}

		wg.Add(1)
		go func(a models.AgentSpec, p string) {
			defer wg.Done()
			results <- o.invoker.Invoke(ctx, a, p, o.timeout)
		}(agent, promptText)
	}

	wg.Wait()
	close(results)

	round := make(models.RoundResult, len(o.roster))
	for outcome := range results {
		round[outcome.AgentID] = outcome
	}
	return round
}

// merge picks each agent's final outcome in roster order: the round-2
// outcome when it is ok, otherwise the round-1 outcome. A round-1 entry
// that is absent yields an explicit omitted outcome, never a crash.
func (o *Orchestrator) merge(round1, round2 models.RoundResult) []models.Outcome {
	finalOutcomes := make([]models.Outcome, 0, len(o.roster))

	for _, agent := range o.roster {
		if outcome, ok := round2.Lookup(agent.Name); ok && outcome.Status == models.StatusOK {
			finalOutcomes = append(finalOutcomes, outcome)
			continue
		}

		fallback := round1.OutcomeOrOmitted(agent.Name)
		if fallback.Status != models.StatusOK {
			o.logger.Warn().
				Str("agent", agent.Name).
				Str("status", string(fallback.Status)).
				Msg("agent degraded in both rounds")
		} else {
			o.logger.Info().
				Str("agent", agent.Name).
				Msg("round-2 failure recovered with round-1 outcome")
		}
		finalOutcomes = append(finalOutcomes, fallback)
	}

	return finalOutcomes
}
