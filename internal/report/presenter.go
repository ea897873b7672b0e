// Package report renders the final debate verdict for humans. Exact
// formatting is presentation only and carries no core semantics.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

var tierLabels = map[models.ResolutionTier]string{
	models.TierApproval:            "APPROVAL",
	models.TierConditionalApproval: "CONDITIONAL APPROVAL",
	models.TierDeadlock:            "DEADLOCK",
	models.TierRejection:           "REJECTION",
}

// Presenter writes a session summary to w. On a terminal it draws a
// bordered table; otherwise it emits tab-separated plain text.
type Presenter struct {
	w     io.Writer
	table bool
}

func New(w io.Writer) *Presenter {
	p := &Presenter{w: w}
	if f, ok := w.(*os.File); ok {
		p.table = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

// Render prints one row per final outcome followed by the aggregate
// confidence and the resolution tier.
func (p *Presenter) Render(session *models.DebateSession) error {
	if p.table {
		p.renderTable(session)
	} else {
		if err := p.renderPlain(session); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(p.w, "\nConsensus confidence: %.4f\nResolution: %s\n",
		session.Report.AverageConfidence, TierLabel(session.Report.Tier))
	return err
}

func (p *Presenter) renderTable(session *models.DebateSession) {
	tw := table.NewWriter()
	tw.SetOutputMirror(p.w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"agent", "status", "confidence", "claim"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignCenter},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignLeft, WidthMax: 72},
	})

	for _, outcome := range session.FinalOutcomes {
		confidence, _ := outcome.Confidence()
		tw.AppendRow(table.Row{
			outcome.AgentID,
			string(outcome.Status),
			fmt.Sprintf("%.4f", confidence),
			claimText(outcome),
		})
	}

	tw.Render()
}

func (p *Presenter) renderPlain(session *models.DebateSession) error {
	for _, outcome := range session.FinalOutcomes {
		confidence, _ := outcome.Confidence()
		line := fmt.Sprintf("%s\t%s\t%.4f\t%s",
			outcome.AgentID, outcome.Status, confidence, escapeNewlines(claimText(outcome)))
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}

// TierLabel returns the display label for a resolution tier.
func TierLabel(tier models.ResolutionTier) string {
	if label, ok := tierLabels[tier]; ok {
		return label
	}
	return strings.ToUpper(string(tier))
}

func claimText(outcome models.Outcome) string {
	if outcome.Status != models.StatusOK || outcome.Payload == nil {
		return "(no claim)"
	}
	switch outcome.Payload.Kind {
	case models.PayloadClaim:
		return outcome.Payload.Claim.Claim
	case models.PayloadRaw:
		return "(unstructured output)"
	default:
		return "(no claim)"
	}
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}
