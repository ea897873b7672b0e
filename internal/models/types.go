package models

import (
	"time"
)

// Status classifies the result of one invocation attempt.
type Status string

const (
	StatusOK          Status = "ok"
	StatusError       Status = "error"
	StatusInvalidJSON Status = "invalid_json"
	StatusTimeout     Status = "timeout"
	// StatusOmitted marks an agent whose invocation never produced an
	// outcome for the round. It is a representable state, not a crash.
	StatusOmitted Status = "omitted"
)

// ResolutionTier is the consensus verdict band for a debate session.
type ResolutionTier string

const (
	TierApproval            ResolutionTier = "approval"
	TierConditionalApproval ResolutionTier = "conditional_approval"
	TierDeadlock            ResolutionTier = "deadlock"
	TierRejection           ResolutionTier = "rejection"
)

// AgentSpec binds a stable agent name to its inference model reference.
// The roster is an ordered set of AgentSpecs, immutable for a session.
type AgentSpec struct {
	Name  string `json:"name" yaml:"name"`
	Model string `json:"model" yaml:"model"`
}

// PayloadKind tags the payload variant, decided once at parse time.
type PayloadKind string

const (
	PayloadClaim PayloadKind = "claim"
	PayloadRaw   PayloadKind = "raw"
)

// NormalizedClaim is the structured analysis an agent is expected to emit.
type NormalizedClaim struct {
	Claim        string   `json:"claim"`
	Confidence   float64  `json:"confidence"`
	FailureModes []string `json:"failure_modes"`
}

// RawWrapped holds a parsed document that did not expose recognizable
// claim fields. Legacy shapes are carried opaquely rather than rejected.
type RawWrapped struct {
	Data map[string]any `json:"data"`
}

// Payload is the tagged variant attached to ok outcomes. Consumers switch
// on Kind instead of probing optional fields.
type Payload struct {
	Kind  PayloadKind      `json:"kind"`
	Claim *NormalizedClaim `json:"claim,omitempty"`
	Raw   *RawWrapped      `json:"raw,omitempty"`
}

// ClaimPayload builds an ok payload from a normalized claim.
func ClaimPayload(claim NormalizedClaim) *Payload {
	if claim.FailureModes == nil {
		claim.FailureModes = []string{}
	}
	return &Payload{Kind: PayloadClaim, Claim: &claim}
}

// RawPayload wraps an arbitrary parsed document as-is.
func RawPayload(data map[string]any) *Payload {
	return &Payload{Kind: PayloadRaw, Raw: &RawWrapped{Data: data}}
}

// Outcome is the immutable result of one invocation attempt.
// Payload is present only when Status is ok. Latency is wall-clock
// seconds; a timeout reports the timeout bound exactly.
type Outcome struct {
	AgentID      string   `json:"agent_id"`
	Status       Status   `json:"status"`
	Payload      *Payload `json:"payload,omitempty"`
	RawOutput    string   `json:"raw_output,omitempty"`
	ErrorMessage string   `json:"error,omitempty"`
	Latency      float64  `json:"latency"`
}

// Omitted returns the explicit outcome for an agent with no entry in a
// round.
func Omitted(agentID string) Outcome {
	return Outcome{AgentID: agentID, Status: StatusOmitted}
}

// Confidence returns the claim confidence of an ok outcome, or false
// when the outcome is not ok or carries no normalized claim.
func (o Outcome) Confidence() (float64, bool) {
	if o.Status != StatusOK || o.Payload == nil {
		return 0, false
	}
	if o.Payload.Kind != PayloadClaim || o.Payload.Claim == nil {
		return 0, false
	}
	return o.Payload.Claim.Confidence, true
}

// RoundResult maps agent names to their outcome for one round. An entry
// may be absent if the invocation never launched.
type RoundResult map[string]Outcome

// Lookup returns the outcome for an agent and whether it exists.
func (r RoundResult) Lookup(agentID string) (Outcome, bool) {
	outcome, ok := r[agentID]
	return outcome, ok
}

// OutcomeOrOmitted returns the agent's outcome, or an explicit omitted
// outcome when the round holds no entry for it.
func (r RoundResult) OutcomeOrOmitted(agentID string) Outcome {
	if outcome, ok := r[agentID]; ok {
		return outcome
	}
	return Omitted(agentID)
}

// CountOK reports how many of the given agents answered ok in the round.
func (r RoundResult) CountOK(roster []AgentSpec) int {
	count := 0
	for _, agent := range roster {
		if outcome, ok := r[agent.Name]; ok && outcome.Status == StatusOK {
			count++
		}
	}
	return count
}

// ConsensusReport is the aggregate produced from the final outcomes.
type ConsensusReport struct {
	AverageConfidence float64        `json:"average_confidence"`
	Tier              ResolutionTier `json:"tier"`
}

// DebateSession holds the full state of one two-round debate. It lives
// only for the duration of the session and is discarded after the
// aggregate is computed.
type DebateSession struct {
	Directive     string          `json:"directive"`
	Round1        RoundResult     `json:"round1"`
	Round2        RoundResult     `json:"round2"`
	FinalOutcomes []Outcome       `json:"final_outcomes"`
	Report        ConsensusReport `json:"report"`
	CreatedAt     time.Time       `json:"created_at"`
}
