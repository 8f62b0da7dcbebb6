package models

// Label is the final verdict for one audio clip.
type Label string

const (
	LabelAIGenerated Label = "AI_GENERATED"
	LabelHuman       Label = "HUMAN"
	LabelUnknown     Label = "UNKNOWN"
)

// AudioSignal is one decoded clip: mono amplitude samples in [-1, 1] and the
// container's native sample rate. Built once per request by the signal
// provider and discarded after classification.
type AudioSignal struct {
	Samples    []float64
	SampleRate int
}

// FeatureSet holds the scalar summaries extracted from one AudioSignal.
type FeatureSet struct {
	// SpectralRolloffHz is the mean frequency below which 99% of spectral
	// energy sits, averaged over analysis frames.
	SpectralRolloffHz float64
	// CepstralVariance is the mean, across 20 cepstral coefficients, of each
	// coefficient's variance over time. Low values mean static timbre.
	CepstralVariance float64
	// ZeroCrossingVariance is the variance of the per-frame zero-crossing
	// rate. Low values mean unnaturally stable dynamics.
	ZeroCrossingVariance float64
	// HighBandEnergy is the mean spectral magnitude above 13 kHz.
	HighBandEnergy float64
}

// DetectorResult is one detector's verdict: a suspicion score in [0, 1] and
// a rationale that is non-empty only when the score is notable.
type DetectorResult struct {
	Score     float64
	Rationale string
}

// ClassificationResult is the core's only output.
type ClassificationResult struct {
	Label       Label
	Confidence  float64
	Explanation string
}

// DetectionRequest is the wire request for POST /api/voice-detection.
type DetectionRequest struct {
	Language    string `json:"language"`
	AudioFormat string `json:"audioFormat"`
	AudioBase64 string `json:"audioBase64"`
}

// DetectionResponse is the wire response. Status is "success" for any
// produced classification, including UNKNOWN from a recoverable failure;
// "error" is reserved for payloads that could not be decoded at all.
type DetectionResponse struct {
	Status          string  `json:"status"`
	Language        string  `json:"language"`
	Classification  Label   `json:"classification"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Explanation     string  `json:"explanation"`
}
