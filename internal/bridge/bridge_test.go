package bridge

import (
	"strings"
	"testing"

	"github.com/Reics/MAGI-01/internal/models"
)

var roster = []models.AgentSpec{
	{Name: "melchior-1", Model: "melchior-1"},
	{Name: "balthasar-2", Model: "balthasar-2"},
	{Name: "casper-3", Model: "casper-3"},
}

func claimOutcome(agent, claim string, confidence float64, failureModes ...string) models.Outcome {
	return models.Outcome{
		AgentID: agent,
		Status:  models.StatusOK,
		Payload: models.ClaimPayload(models.NormalizedClaim{
			Claim:        claim,
			Confidence:   confidence,
			FailureModes: failureModes,
		}),
		Latency: 1.5,
	}
}

func fullRound1() models.RoundResult {
	return models.RoundResult{
		"melchior-1":  claimOutcome("melchior-1", "ship it", 0.9, "rollback cost"),
		"balthasar-2": claimOutcome("balthasar-2", "delay one sprint", 0.6),
		"casper-3":    claimOutcome("casper-3", "reject the proposal", 0.3, "unclear ownership", "scope creep"),
	}
}

func TestBuild_PeerBlockCount(t *testing.T) {
	builder := NewBuilder(roster)

	prompt, err := builder.Build("melchior-1", "should we ship?", fullRound1())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blocks := strings.Count(prompt, "--- peer:")
	if blocks != len(roster)-1 {
		t.Errorf("expected %d peer blocks, got %d", len(roster)-1, blocks)
	}
}

func TestBuild_ExcludesSelf(t *testing.T) {
	builder := NewBuilder(roster)

	prompt, err := builder.Build("melchior-1", "should we ship?", fullRound1())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(prompt, "--- peer: melchior-1") {
		t.Error("prompt must not contain self as a peer")
	}
	// Self's own round-1 claim text must never leak into its bridge prompt.
	if strings.Contains(prompt, "ship it") {
		t.Error("prompt must not contain self's own round-1 claim")
	}
	if !strings.Contains(prompt, "delay one sprint") {
		t.Error("prompt must contain balthasar-2's claim")
	}
	if !strings.Contains(prompt, "reject the proposal") {
		t.Error("prompt must contain casper-3's claim")
	}
}

func TestBuild_ContainsDirectiveAndFailureModes(t *testing.T) {
	builder := NewBuilder(roster)

	prompt, err := builder.Build("balthasar-2", "should we ship?", fullRound1())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(prompt, "should we ship?") {
		t.Error("prompt must contain the original directive")
	}
	if !strings.Contains(prompt, "unclear ownership") || !strings.Contains(prompt, "scope creep") {
		t.Error("prompt must list peer failure modes")
	}
	if !strings.Contains(prompt, "confidence: 0.90") {
		t.Error("prompt must render peer confidence at fixed precision")
	}
}

func TestBuild_PlaceholderForFailedPeer(t *testing.T) {
	builder := NewBuilder(roster)

	round1 := models.RoundResult{
		"melchior-1":  claimOutcome("melchior-1", "ship it", 0.9),
		"balthasar-2": {AgentID: "balthasar-2", Status: models.StatusTimeout, Latency: 10},
		// casper-3 never launched: absent from the round entirely.
	}

	prompt, err := builder.Build("melchior-1", "should we ship?", round1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both degraded peers still appear, each with the placeholder.
	if strings.Count(prompt, "--- peer:") != 2 {
		t.Fatalf("expected 2 peer blocks, got prompt:\n%s", prompt)
	}
	if strings.Count(prompt, placeholderClaim) != 2 {
		t.Errorf("expected placeholder claim for both degraded peers")
	}
	if !strings.Contains(prompt, "confidence: 0.00") {
		t.Error("placeholder peers must report confidence 0.00")
	}
}

func TestBuild_PlaceholderForRawPayloadPeer(t *testing.T) {
	builder := NewBuilder(roster)

	round1 := fullRound1()
	round1["casper-3"] = models.Outcome{
		AgentID: "casper-3",
		Status:  models.StatusOK,
		Payload: models.RawPayload(map[string]any{"response": "free text"}),
	}

	prompt, err := builder.Build("melchior-1", "should we ship?", round1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(prompt, placeholderClaim) {
		t.Error("a peer without a normalized claim must get the placeholder")
	}
	if strings.Contains(prompt, "free text") {
		t.Error("raw payload content must not leak into the prompt")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	builder := NewBuilder(roster)

	first, err := builder.Build("casper-3", "directive", fullRound1())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for range 10 {
		next, err := builder.Build("casper-3", "directive", fullRound1())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if next != first {
			t.Fatal("bridge prompt must be deterministic for identical inputs")
		}
	}

	// Peers must follow roster order, not map iteration order.
	melchior := strings.Index(first, "--- peer: melchior-1")
	balthasar := strings.Index(first, "--- peer: balthasar-2")
	if melchior == -1 || balthasar == -1 || melchior > balthasar {
		t.Error("peer blocks must appear in roster order")
	}
}
