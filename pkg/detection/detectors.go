package detection

import (
	"fmt"
	"strings"

	"voice-detector/pkg/models"
)

// Detector is one independent check for a synthetic-speech artifact.
// Detectors never observe each other's output, so evaluation order cannot
// affect the aggregate.
type Detector interface {
	Name() string
	Weight() float64
	Evaluate(features models.FeatureSet, sampleRate int) models.DetectorResult
}

// frequencyCutoffDetector flags the hard spectral ceiling typical of
// upsampled synthetic speech. Contributions are additive, clamped to [0, 1].
type frequencyCutoffDetector struct{}

func (frequencyCutoffDetector) Name() string    { return "frequency_cutoff" }
func (frequencyCutoffDetector) Weight() float64 { return FrequencyCutoffWeight }

func (frequencyCutoffDetector) Evaluate(features models.FeatureSet, sampleRate int) models.DetectorResult {
	var score float64
	var reasons []string

	if sampleRate <= LowRateSampleRateMax {
		score += LowRateScore
		reasons = append(reasons, fmt.Sprintf("native sampling rate of %d Hz is too low for claimed HD audio", sampleRate))
	} else if features.SpectralRolloffHz < RolloffCeilingHz {
		score += HardCutoffScore
		reasons = append(reasons, fmt.Sprintf("hard spectral cutoff near %.0f Hz despite a high-resolution container", features.SpectralRolloffHz))
	}

	// The dead-band check only makes sense when the sample rate actually
	// carries content above the 13 kHz cutoff.
	if float64(sampleRate)/2 > highBandCutoffHz && features.HighBandEnergy < HighBandEnergyFloor {
		score += DeadHighBandScore
		reasons = append(reasons, "no natural harmonic content above 13 kHz")
	}

	if score == 0 {
		score = BaselineScore
	}
	return newResult(score, reasons)
}

// Mirrors the extraction-side band split.
const highBandCutoffHz = 13000.0

// textureDetector flags unnaturally smooth or static timbre.
type textureDetector struct{}

func (textureDetector) Name() string    { return "texture" }
func (textureDetector) Weight() float64 { return TextureWeight }

func (textureDetector) Evaluate(features models.FeatureSet, _ int) models.DetectorResult {
	switch {
	case features.CepstralVariance < SmoothTimbreVarianceMax:
		return newResult(SmoothTimbreScore, []string{
			fmt.Sprintf("unnaturally smooth spectral texture (cepstral variance %.0f)", features.CepstralVariance),
		})
	case features.CepstralVariance < ModerateTimbreVarianceMax:
		return newResult(ModerateTimbreScore, []string{
			fmt.Sprintf("suspiciously static timbre (cepstral variance %.0f)", features.CepstralVariance),
		})
	default:
		return newResult(BaselineScore, nil)
	}
}

// dynamicsDetector flags unnaturally stable short-term signal dynamics.
type dynamicsDetector struct{}

func (dynamicsDetector) Name() string    { return "dynamics" }
func (dynamicsDetector) Weight() float64 { return DynamicsWeight }

func (dynamicsDetector) Evaluate(features models.FeatureSet, _ int) models.DetectorResult {
	if features.ZeroCrossingVariance < StableDynamicsVarianceMax {
		return newResult(StableDynamicsScore, []string{
			fmt.Sprintf("unnaturally stable signal dynamics (zero-crossing variance %.4f)", features.ZeroCrossingVariance),
		})
	}
	return newResult(BaselineScore, nil)
}

// newResult clamps the score and attaches the rationale only when the score
// is notable.
func newResult(score float64, reasons []string) models.DetectorResult {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var rationale string
	if score > NotableScoreThreshold && len(reasons) > 0 {
		rationale = strings.Join(reasons, rationaleSeparator)
	}
	return models.DetectorResult{Score: score, Rationale: rationale}
}
