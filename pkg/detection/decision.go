package detection

import (
	"math"
	"strings"

	"voice-detector/pkg/models"
)

// decide maps the aggregated suspicion total onto a classification.
//
// AI confidence grows with the total but saturates below 1.0; a clean signal
// earns more HUMAN confidence the lower its total. Both are rounded to two
// decimals before leaving the core.
func decide(total float64, rationales []string) models.ClassificationResult {
	if total >= DecisionThreshold {
		confidence := math.Min(AIConfidenceBase+total*AIConfidenceSlope, AIConfidenceCap)
		explanation := strings.Join(rationales, rationaleSeparator)
		if explanation == "" {
			explanation = fallbackExplanation
		}
		return models.ClassificationResult{
			Label:       models.LabelAIGenerated,
			Confidence:  round2(confidence),
			Explanation: explanation,
		}
	}

	confidence := HumanConfidenceBase + HumanConfidenceSpan*(1-total)
	return models.ClassificationResult{
		Label:       models.LabelHuman,
		Confidence:  round2(confidence),
		Explanation: humanExplanation,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
