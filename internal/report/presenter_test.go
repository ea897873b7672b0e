package report

import (
	"strings"
	"testing"

	"github.com/Reics/MAGI-01/internal/models"
)

func testSession() *models.DebateSession {
	return &models.DebateSession{
		Directive: "should we ship?",
		FinalOutcomes: []models.Outcome{
			{
				AgentID: "melchior-1",
				Status:  models.StatusOK,
				Payload: models.ClaimPayload(models.NormalizedClaim{Claim: "ship it", Confidence: 0.9}),
			},
			{
				AgentID: "balthasar-2",
				Status:  models.StatusOK,
				Payload: models.RawPayload(map[string]any{"response": "maybe"}),
			},
			{AgentID: "casper-3", Status: models.StatusOmitted},
		},
		Report: models.ConsensusReport{AverageConfidence: 0.3, Tier: models.TierDeadlock},
	}
}

func TestRender_PlainOutput(t *testing.T) {
	var buf strings.Builder
	p := New(&buf)

	if err := p.Render(testSession()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"melchior-1",
		"0.9000",
		"ship it",
		"balthasar-2",
		"(unstructured output)",
		"casper-3",
		"(no claim)",
		"Consensus confidence: 0.3000",
		"Resolution: DEADLOCK",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}
}

func TestTierLabel(t *testing.T) {
	tests := []struct {
		tier  models.ResolutionTier
		label string
	}{
		{models.TierApproval, "APPROVAL"},
		{models.TierConditionalApproval, "CONDITIONAL APPROVAL"},
		{models.TierDeadlock, "DEADLOCK"},
		{models.TierRejection, "REJECTION"},
	}
	for _, tt := range tests {
		if got := TierLabel(tt.tier); got != tt.label {
			t.Errorf("TierLabel(%s) = %q, want %q", tt.tier, got, tt.label)
		}
	}
}
