package features

import (
	"fmt"
	"math"
	"math/cmplx"

	"voice-detector/pkg/models"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

const (
	// FrameSize is the short-time analysis window in samples. With HopSize it
	// covers sample rates from 8 kHz up to 48 kHz and beyond.
	FrameSize = 2048
	HopSize   = 512

	// CepstralCoefficients is the size of the per-frame timbre representation.
	CepstralCoefficients = 20

	// HighBandCutoffHz bounds the "natural harmonics" band. Synthetic speech
	// upsampled into a high-rate container tends to be dead above it.
	HighBandCutoffHz = 13000.0

	// rolloffEnergyFraction is the spectral-energy fraction below the rolloff
	// frequency.
	rolloffEnergyFraction = 0.99

	// logFloor keeps the log-magnitude spectrum finite on silent bins.
	logFloor = 1e-10
)

// InsufficientSignalError reports a decoded signal too short to fill one
// analysis frame.
type InsufficientSignalError struct {
	Samples    int
	MinSamples int
}

func (e *InsufficientSignalError) Error() string {
	return fmt.Sprintf("insufficient signal for analysis: %d samples decoded, at least %d required", e.Samples, e.MinSamples)
}

// Extract derives the FeatureSet for one signal. It is deterministic: the
// same signal always yields the same features.
func Extract(signal *models.AudioSignal) (models.FeatureSet, error) {
	if signal == nil || len(signal.Samples) < FrameSize {
		n := 0
		if signal != nil {
			n = len(signal.Samples)
		}
		return models.FeatureSet{}, &InsufficientSignalError{Samples: n, MinSamples: FrameSize}
	}

	var (
		rolloffs  []float64
		zcrs      []float64
		highbands []float64
	)
	cepstra := make([][]float64, CepstralCoefficients)

	windowed := make([]float64, FrameSize)
	for start := 0; start+FrameSize <= len(signal.Samples); start += HopSize {
		frame := signal.Samples[start : start+FrameSize]

		zcrs = append(zcrs, zeroCrossingRate(frame))

		copy(windowed, frame)
		window.Apply(windowed, window.Hann)
		spectrum := fft.FFTReal(windowed)
		mags := magnitudes(spectrum)

		rolloffs = append(rolloffs, rolloffFrequency(mags, signal.SampleRate))
		highbands = append(highbands, highBandMagnitude(mags, signal.SampleRate))

		frameCepstrum := realCepstrum(spectrum)
		for i := 0; i < CepstralCoefficients; i++ {
			cepstra[i] = append(cepstra[i], frameCepstrum[i])
		}
	}

	rolloff, err := stats.Mean(rolloffs)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("aggregate rolloff: %w", err)
	}
	zcrVariance, err := stats.Variance(zcrs)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("aggregate zero-crossing rate: %w", err)
	}
	highband, err := stats.Mean(highbands)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("aggregate high-band energy: %w", err)
	}

	coeffVariances := make([]float64, CepstralCoefficients)
	for i, series := range cepstra {
		v, err := stats.Variance(series)
		if err != nil {
			return models.FeatureSet{}, fmt.Errorf("aggregate cepstral coefficient %d: %w", i, err)
		}
		coeffVariances[i] = v
	}
	cepstralVariance, err := stats.Mean(coeffVariances)
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("aggregate cepstral variance: %w", err)
	}

	return models.FeatureSet{
		SpectralRolloffHz:    rolloff,
		CepstralVariance:     cepstralVariance,
		ZeroCrossingVariance: zcrVariance,
		HighBandEnergy:       highband,
	}, nil
}

// magnitudes returns |X[k]| for the non-redundant half of the spectrum.
func magnitudes(spectrum []complex128) []float64 {
	mags := make([]float64, len(spectrum)/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return mags
}

// rolloffFrequency finds the frequency below which rolloffEnergyFraction of
// the frame's spectral energy is concentrated.
func rolloffFrequency(mags []float64, sampleRate int) float64 {
	energies := make([]float64, len(mags))
	for i, m := range mags {
		energies[i] = m * m
	}
	total := floats.Sum(energies)
	if total == 0 {
		return 0
	}

	target := rolloffEnergyFraction * total
	var cumulative float64
	for i, e := range energies {
		cumulative += e
		if cumulative >= target {
			return binFrequency(i, sampleRate)
		}
	}
	return binFrequency(len(mags)-1, sampleRate)
}

// highBandMagnitude is the mean magnitude of the bins above HighBandCutoffHz,
// or 0 when the sample rate places no bins up there.
func highBandMagnitude(mags []float64, sampleRate int) float64 {
	if float64(sampleRate)/2 <= HighBandCutoffHz {
		return 0
	}
	start := int(math.Ceil(HighBandCutoffHz * FrameSize / float64(sampleRate)))
	if start >= len(mags) {
		return 0
	}
	band := mags[start:]
	return floats.Sum(band) / float64(len(band))
}

// realCepstrum is the inverse transform of the log-magnitude spectrum,
// truncated to the first CepstralCoefficients quefrency bins.
func realCepstrum(spectrum []complex128) []float64 {
	logSpectrum := make([]complex128, len(spectrum))
	for i, c := range spectrum {
		logSpectrum[i] = complex(math.Log(cmplx.Abs(c)+logFloor), 0)
	}
	cepstrum := fft.IFFT(logSpectrum)

	coeffs := make([]float64, CepstralCoefficients)
	for i := range coeffs {
		coeffs[i] = real(cepstrum[i])
	}
	return coeffs
}

// zeroCrossingRate is the fraction of adjacent sample pairs that change sign.
func zeroCrossingRate(frame []float64) float64 {
	var crossings int
	for i := 1; i < len(frame); i++ {
		if (frame[i-1] >= 0) != (frame[i] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

func binFrequency(bin, sampleRate int) float64 {
	return float64(bin) * float64(sampleRate) / FrameSize
}
