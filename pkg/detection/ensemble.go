package detection

import (
	"fmt"
	"math"

	"voice-detector/pkg/models"
)

// weightTolerance absorbs float representation error in the sum check.
const weightTolerance = 1e-9

// Ensemble is the fixed set of detectors plus the aggregation and decision
// logic. It holds no per-request state; one instance serves all requests.
type Ensemble struct {
	detectors []Detector
}

// NewEnsemble builds the canonical detector registry. The weight vector is
// positionally tied to this list; both change together.
func NewEnsemble() (*Ensemble, error) {
	return newEnsemble(
		frequencyCutoffDetector{},
		textureDetector{},
		dynamicsDetector{},
	)
}

func newEnsemble(detectors ...Detector) (*Ensemble, error) {
	var sum float64
	for _, d := range detectors {
		sum += d.Weight()
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("detector weights sum to %.3f, want 1.0", sum)
	}
	return &Ensemble{detectors: detectors}, nil
}

// Classify runs every detector over the extracted features, aggregates the
// weighted scores and thresholds the total into a verdict. The ensemble
// itself never produces UNKNOWN.
func (e *Ensemble) Classify(features models.FeatureSet, sampleRate int) models.ClassificationResult {
	var total float64
	var rationales []string
	for _, d := range e.detectors {
		result := d.Evaluate(features, sampleRate)
		total += result.Score * d.Weight()
		if result.Rationale != "" {
			rationales = append(rationales, result.Rationale)
		}
	}
	return decide(total, rationales)
}
