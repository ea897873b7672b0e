package invoker

import (
	"encoding/json"

	"github.com/Reics/MAGI-01/internal/models"
)

// normalizeOutput turns the raw stdout of a zero-exit process into an
// Outcome. Parse failures preserve the raw output verbatim; parse
// successes are classified once into a claim or raw payload so
// downstream consumers never re-probe the document.
func normalizeOutput(agentID string, stdout []byte, elapsed float64) models.Outcome {
	var doc map[string]any
	if err := json.Unmarshal(stdout, &doc); err != nil {
		return models.Outcome{
			AgentID:      agentID,
			Status:       models.StatusInvalidJSON,
			RawOutput:    string(stdout),
			ErrorMessage: err.Error(),
			Latency:      elapsed,
		}
	}

	return models.Outcome{
		AgentID: agentID,
		Status:  models.StatusOK,
		Payload: normalizeDocument(doc),
		Latency: elapsed,
	}
}

// normalizeDocument picks the payload variant. A document with a string
// "claim" field becomes a NormalizedClaim; confidence is clamped into
// [0,1] and failure modes default to an empty list. Everything else,
// including the legacy {"response": ...} shape, is wrapped opaquely.
func normalizeDocument(doc map[string]any) *models.Payload {
	claim, ok := doc["claim"].(string)
	if !ok {
		return models.RawPayload(doc)
	}

	normalized := models.NormalizedClaim{
		Claim:        claim,
		Confidence:   clamp01(floatField(doc, "confidence")),
		FailureModes: stringSliceField(doc, "failure_modes"),
	}
	return models.ClaimPayload(normalized)
}

func floatField(doc map[string]any, key string) float64 {
	value, ok := doc[key].(float64)
	if !ok {
		return 0
	}
	return value
}

func stringSliceField(doc map[string]any, key string) []string {
	raw, ok := doc[key].([]any)
	if !ok {
		return []string{}
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
