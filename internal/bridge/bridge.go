// Package bridge builds the round-2 prompt for each agent, exposing its
// peers' round-1 claims so the agent can re-evaluate its position.
package bridge

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Reics/MAGI-01/internal/models"
)

// Placeholder values for peers that produced no usable round-1 claim.
// Every non-self roster member appears exactly once in the prompt, so a
// failed peer still shows up rather than silently disappearing.
const (
	placeholderClaim      = "no claim provided"
	placeholderConfidence = 0.0
)

const promptTemplate = `You are {{.Self}}, one member of a deliberation council.

Original directive:
{{.Directive}}

Your peers reported the following round-1 findings:
{{range .Peers}}
--- peer: {{.Name}} ---
claim: {{.Claim}}
confidence: {{printf "%.2f" .Confidence}}
failure modes:{{if .FailureModes}}{{range .FailureModes}}
  - {{.}}{{end}}{{else}} (none){{end}}
{{end}}
Re-evaluate your own analysis in light of your peers' findings. Respond
with a single JSON object and nothing else:
{"claim": "<your updated claim>", "confidence": <number in [0,1]>, "failure_modes": ["<string>", ...]}`

var promptTmpl = template.Must(template.New("bridge").Parse(promptTemplate))

type peerReport struct {
	Name         string
	Claim        string
	Confidence   float64
	FailureModes []string
}

type promptData struct {
	Self      string
	Directive string
	Peers     []peerReport
}

// Builder renders peer-aware round-2 prompts for a fixed roster.
// Build is pure and deterministic: peers appear in roster order.
type Builder struct {
	roster []models.AgentSpec
}

func NewBuilder(roster []models.AgentSpec) *Builder {
	owned := make([]models.AgentSpec, len(roster))
	copy(owned, roster)
	return &Builder{roster: owned}
}

// Build renders the round-2 prompt for self. The output contains exactly
// len(roster)-1 peer blocks and never self's own round-1 claim.
func (b *Builder) Build(self string, directive string, round1 models.RoundResult) (string, error) {
	data := promptData{
		Self:      self,
		Directive: directive,
		Peers:     make([]peerReport, 0, len(b.roster)-1),
	}

	for _, agent := range b.roster {
		if agent.Name == self {
			continue
		}
		data.Peers = append(data.Peers, peerBlock(agent.Name, round1))
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("bridge: render prompt for %s: %w", self, err)
	}
	return buf.String(), nil
}

func peerBlock(name string, round1 models.RoundResult) peerReport {
	outcome, ok := round1.Lookup(name)
	if !ok || outcome.Status != models.StatusOK || outcome.Payload == nil || outcome.Payload.Kind != models.PayloadClaim {
		return peerReport{
			Name:         name,
			Claim:        placeholderClaim,
			Confidence:   placeholderConfidence,
			FailureModes: []string{},
		}
	}

	claim := outcome.Payload.Claim
	return peerReport{
		Name:         name,
		Claim:        claim.Claim,
		Confidence:   claim.Confidence,
		FailureModes: claim.FailureModes,
	}
}
