package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/Reics/MAGI-01/internal/orchestrator/mocks"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

const testTimeout = 30 * time.Second

var roster = []models.AgentSpec{
	{Name: "melchior-1", Model: "melchior-1"},
	{Name: "balthasar-2", Model: "balthasar-2"},
	{Name: "casper-3", Model: "casper-3"},
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func claimOutcome(agent string, confidence float64) models.Outcome {
	return models.Outcome{
		AgentID: agent,
		Status:  models.StatusOK,
		Payload: models.ClaimPayload(models.NormalizedClaim{
			Claim:      "claim from " + agent,
			Confidence: confidence,
		}),
		Latency: 1.0,
	}
}

func timeoutOutcome(agent string, bound time.Duration) models.Outcome {
	return models.Outcome{
		AgentID: agent,
		Status:  models.StatusTimeout,
		Latency: bound.Seconds(),
	}
}

func bridgePrompt(agent string) string {
	return "bridge prompt for " + agent
}

func TestRun_FullSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	directive := "should we deploy the new model?"

	round1 := models.RoundResult{}
	for i, agent := range roster {
		outcome := claimOutcome(agent.Name, 0.6+float64(i)*0.1)
		round1[agent.Name] = outcome
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, directive, testTimeout).
			Return(outcome)
	}

	round2Outcomes := make([]models.Outcome, 0, len(roster))
	for _, agent := range roster {
		mockPrompts.EXPECT().
			Build(agent.Name, directive, round1).
			Return(bridgePrompt(agent.Name), nil)

		outcome := claimOutcome(agent.Name, 0.9)
		round2Outcomes = append(round2Outcomes, outcome)
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, bridgePrompt(agent.Name), testTimeout).
			Return(outcome)
	}

	report := models.ConsensusReport{AverageConfidence: 0.9, Tier: models.TierApproval}
	mockAgg.EXPECT().Aggregate(round2Outcomes).Return(report)

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	session, err := orch.Run(context.Background(), directive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Directive != directive {
		t.Errorf("expected directive preserved, got %q", session.Directive)
	}
	if len(session.FinalOutcomes) != len(roster) {
		t.Fatalf("expected %d final outcomes, got %d", len(roster), len(session.FinalOutcomes))
	}
	for i, agent := range roster {
		if session.FinalOutcomes[i].AgentID != agent.Name {
			t.Errorf("final outcomes must follow roster order: position %d is %s", i, session.FinalOutcomes[i].AgentID)
		}
	}
	if session.Report != report {
		t.Errorf("expected report %+v, got %+v", report, session.Report)
	}
}

func TestRun_Round1SharesTimeoutBound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	var mu sync.Mutex
	var bounds []time.Duration

	mockInvoker.EXPECT().
		Invoke(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, agent models.AgentSpec, _ string, timeout time.Duration) models.Outcome {
			mu.Lock()
			bounds = append(bounds, timeout)
			mu.Unlock()
			// Fail quorum so the session stops after round 1.
			return timeoutOutcome(agent.Name, timeout)
		}).
		Times(len(roster))

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	_, err := orch.Run(context.Background(), "directive")
	if !errors.Is(err, ErrQuorumFailed) {
		t.Fatalf("expected quorum failure, got %v", err)
	}

	if len(bounds) != len(roster) {
		t.Fatalf("expected %d invocations, got %d", len(roster), len(bounds))
	}
	for _, bound := range bounds {
		if bound != testTimeout {
			t.Errorf("all round-1 invocations must share the timeout bound %s, got %s", testTimeout, bound)
		}
	}
}

func TestRun_QuorumFailureSkipsRound2(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	directive := "directive"

	// Two agents answer ok, one errors: 2 of 3 is below full quorum.
	mockInvoker.EXPECT().
		Invoke(gomock.Any(), roster[0], directive, testTimeout).
		Return(claimOutcome("melchior-1", 0.9))
	mockInvoker.EXPECT().
		Invoke(gomock.Any(), roster[1], directive, testTimeout).
		Return(claimOutcome("balthasar-2", 0.8))
	mockInvoker.EXPECT().
		Invoke(gomock.Any(), roster[2], directive, testTimeout).
		Return(models.Outcome{
			AgentID:      "casper-3",
			Status:       models.StatusError,
			ErrorMessage: "model crashed",
			Latency:      2.0,
		})

	// No prompt builds, no round-2 invocations, no aggregation: the
	// controller fails the test on any unexpected call.

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	session, err := orch.Run(context.Background(), directive)
	if !errors.Is(err, ErrQuorumFailed) {
		t.Fatalf("expected ErrQuorumFailed, got %v", err)
	}
	if session != nil {
		t.Error("a quorum-failed session must not produce a report")
	}
}

func TestRun_Round2TimeoutFallsBackToRound1(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	directive := "directive"

	round1 := models.RoundResult{
		"melchior-1":  claimOutcome("melchior-1", 0.9),
		"balthasar-2": claimOutcome("balthasar-2", 0.65),
		"casper-3":    claimOutcome("casper-3", 0.8),
	}
	for _, agent := range roster {
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, directive, testTimeout).
			Return(round1[agent.Name])
	}

	round2 := map[string]models.Outcome{
		"melchior-1":  claimOutcome("melchior-1", 0.95),
		"balthasar-2": timeoutOutcome("balthasar-2", testTimeout),
		"casper-3":    claimOutcome("casper-3", 0.85),
	}
	for _, agent := range roster {
		mockPrompts.EXPECT().
			Build(agent.Name, directive, round1).
			Return(bridgePrompt(agent.Name), nil)
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, bridgePrompt(agent.Name), testTimeout).
			Return(round2[agent.Name])
	}

	var aggregated []models.Outcome
	mockAgg.EXPECT().
		Aggregate(gomock.Any()).
		DoAndReturn(func(finalOutcomes []models.Outcome) models.ConsensusReport {
			aggregated = finalOutcomes
			return models.ConsensusReport{AverageConfidence: 0.8167, Tier: models.TierApproval}
		})

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	session, err := orch.Run(context.Background(), directive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(aggregated) != 3 {
		t.Fatalf("expected 3 aggregated outcomes, got %d", len(aggregated))
	}

	// balthasar-2's round-2 timeout is recovered with its round-1 claim.
	final := session.FinalOutcomes[1]
	if final.AgentID != "balthasar-2" {
		t.Fatalf("expected balthasar-2 at roster position 1, got %s", final.AgentID)
	}
	if final.Status != models.StatusOK {
		t.Errorf("expected fallback to ok round-1 outcome, got %s", final.Status)
	}
	confidence, ok := final.Confidence()
	if !ok || confidence != 0.65 {
		t.Errorf("expected round-1 confidence 0.65, got %f (ok=%v)", confidence, ok)
	}
}

func TestRun_PromptBuildFailureDegradesAgent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	directive := "directive"

	round1 := models.RoundResult{}
	for _, agent := range roster {
		outcome := claimOutcome(agent.Name, 0.7)
		round1[agent.Name] = outcome
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, directive, testTimeout).
			Return(outcome)
	}

	// melchior-1's bridge prompt cannot be rendered: no round-2 process
	// is launched for it and its round-1 outcome survives the merge.
	mockPrompts.EXPECT().
		Build("melchior-1", directive, round1).
		Return("", fmt.Errorf("render failed"))
	for _, agent := range roster[1:] {
		mockPrompts.EXPECT().
			Build(agent.Name, directive, round1).
			Return(bridgePrompt(agent.Name), nil)
		mockInvoker.EXPECT().
			Invoke(gomock.Any(), agent, bridgePrompt(agent.Name), testTimeout).
			Return(claimOutcome(agent.Name, 0.9))
	}

	mockAgg.EXPECT().Aggregate(gomock.Any()).Return(models.ConsensusReport{})

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	session, err := orch.Run(context.Background(), directive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := session.FinalOutcomes[0]
	if final.AgentID != "melchior-1" || final.Status != models.StatusOK {
		t.Errorf("expected melchior-1's round-1 outcome to survive, got %+v", final)
	}
	confidence, _ := final.Confidence()
	if confidence != 0.7 {
		t.Errorf("expected round-1 confidence 0.7, got %f", confidence)
	}
}

func TestRun_RoundFanOutIsConcurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockInvoker := mocks.NewMockInvoker(ctrl)
	mockPrompts := mocks.NewMockPromptBuilder(ctrl)
	mockAgg := mocks.NewMockAggregator(ctrl)

	const delay = 300 * time.Millisecond

	mockInvoker.EXPECT().
		Invoke(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, agent models.AgentSpec, _ string, timeout time.Duration) models.Outcome {
			time.Sleep(delay)
			return timeoutOutcome(agent.Name, timeout)
		}).
		Times(len(roster))

	orch := New(roster, mockInvoker, mockPrompts, mockAgg, testTimeout, newTestLogger())

	start := time.Now()
	_, err := orch.Run(context.Background(), "directive")
	elapsed := time.Since(start)

	if !errors.Is(err, ErrQuorumFailed) {
		t.Fatalf("expected quorum failure, got %v", err)
	}
	// Serial execution would take at least 3 * delay.
	if elapsed >= 3*delay {
		t.Errorf("round fan-out appears serial: took %s for %d agents", elapsed, len(roster))
	}
}

func TestNew_CopiesRoster(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	input := make([]models.AgentSpec, len(roster))
	copy(input, roster)

	orch := New(input, mocks.NewMockInvoker(ctrl), mocks.NewMockPromptBuilder(ctrl), mocks.NewMockAggregator(ctrl), testTimeout, newTestLogger())

	input[0].Name = "mutated"

	if orch.Roster()[0].Name != "melchior-1" {
		t.Error("orchestrator must own an immutable copy of the roster")
	}
}
