package detection

// The whole decision policy lives here so it can be audited and tested
// independently of feature extraction. None of these values are learned.
const (
	// Detector weights. Must sum to exactly 1.0; NewEnsemble enforces it.
	FrequencyCutoffWeight = 0.5
	TextureWeight         = 0.3
	DynamicsWeight        = 0.2

	// Frequency-cutoff detector.
	LowRateSampleRateMax = 24000   // Hz; Nyquist at or below 12 kHz
	RolloffCeilingHz     = 12000.0 // hard-cutoff threshold in a high-rate container
	HighBandEnergyFloor  = 0.01    // below this the band above 13 kHz counts as dead
	LowRateScore         = 0.2
	HardCutoffScore      = 0.6
	DeadHighBandScore    = 0.3
	BaselineScore        = 0.1

	// Texture detector.
	SmoothTimbreVarianceMax   = 500.0
	ModerateTimbreVarianceMax = 700.0
	SmoothTimbreScore         = 0.7
	ModerateTimbreScore       = 0.4

	// Dynamics detector.
	StableDynamicsVarianceMax = 0.005
	StableDynamicsScore       = 0.6

	// A detector's rationale makes it into the final explanation only above
	// this score.
	NotableScoreThreshold = 0.4

	// Decision engine.
	DecisionThreshold   = 0.45
	AIConfidenceBase    = 0.70
	AIConfidenceSlope   = 0.30
	AIConfidenceCap     = 0.99
	HumanConfidenceBase = 0.85
	HumanConfidenceSpan = 0.10
)

const (
	rationaleSeparator = "; "

	// fallbackExplanation covers an AI verdict reached through combined
	// sub-threshold contributions with no individually notable detector.
	fallbackExplanation = "multiple synthetic anomalies detected"

	// humanExplanation names the checks performed, matching the ensemble.
	humanExplanation = "No synthetic artifacts found: spectral rolloff, timbral texture and signal dynamics are all within natural ranges."
)
