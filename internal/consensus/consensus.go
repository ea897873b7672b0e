package consensus

import (
	"github.com/Reics/MAGI-01/internal/models"
	"github.com/rs/zerolog"
)

// Tier thresholds, evaluated in descending order.
const (
	approvalThreshold    = 0.70
	conditionalThreshold = 0.50
	deadlockThreshold    = 0.30
)

// Aggregator reduces a session's final outcomes to an average confidence
// and a resolution tier. It is a pure reduction over immutable outcomes.
type Aggregator struct {
	logger *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate averages confidence across every outcome in the sequence.
// An outcome without a normalized claim is not excluded: it contributes
// 0.0 to the numerator and still counts in the denominator, so a silent
// or degraded node drags the verdict down rather than vanishing.
func (a *Aggregator) Aggregate(finalOutcomes []models.Outcome) models.ConsensusReport {
	if len(finalOutcomes) == 0 {
		return models.ConsensusReport{AverageConfidence: 0.0, Tier: calculateTier(0.0)}
	}

	sum := 0.0
	for _, outcome := range finalOutcomes {
		if confidence, ok := outcome.Confidence(); ok {
			sum += confidence
		}
	}

	average := sum / float64(len(finalOutcomes))
	report := models.ConsensusReport{
		AverageConfidence: average,
		Tier:              calculateTier(average),
	}

	a.logger.Info().
		Float64("average_confidence", average).
		Str("tier", string(report.Tier)).
		Int("outcomes", len(finalOutcomes)).
		Msg("aggregation complete")

	return report
}

func calculateTier(average float64) models.ResolutionTier {
	if average >= approvalThreshold {
		return models.TierApproval
	}
	if average >= conditionalThreshold {
		return models.TierConditionalApproval
	}
	if average >= deadlockThreshold {
		return models.TierDeadlock
	}
	return models.TierRejection
}
