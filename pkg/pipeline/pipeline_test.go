package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"voice-detector/pkg/audio"
	"voice-detector/pkg/config"
	"voice-detector/pkg/detection"
	"voice-detector/pkg/features"
	"voice-detector/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	signal *models.AudioSignal
	err    error
}

func (p stubProvider) Decode([]byte) (*models.AudioSignal, error) {
	return p.signal, p.err
}

type gatedProvider struct {
	entered chan struct{}
	release chan struct{}
}

func (p *gatedProvider) Decode([]byte) (*models.AudioSignal, error) {
	p.entered <- struct{}{}
	<-p.release
	return nil, &audio.DecodeError{Reason: "gated"}
}

type panicProvider struct{}

func (panicProvider) Decode([]byte) (*models.AudioSignal, error) {
	panic("decoder bug")
}

func startManager(t *testing.T, provider audio.Provider, workers, queueSize int) *Manager {
	t.Helper()

	ensemble, err := detection.NewEnsemble()
	require.NoError(t, err)

	cfg := config.PipelineConfig{Workers: workers, QueueSize: queueSize, ProcessingTimeout: time.Second}
	manager := NewManager(cfg, provider, ensemble, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, manager.Start(ctx))
	t.Cleanup(func() {
		cancel()
		manager.Stop()
	})
	return manager
}

func TestClassifySyntheticTone(t *testing.T) {
	// A steady bin-centered tone trips all three detectors: hard rolloff
	// under 12 kHz, dead band above 13 kHz, static timbre, static dynamics.
	manager := startManager(t, stubProvider{signal: toneSignal(44100)}, 2, 8)

	result, err := manager.Classify(context.Background(), []byte("payload"))
	require.NoError(t, err)

	assert.Equal(t, models.LabelAIGenerated, result.Label)
	assert.InDelta(t, 0.93, result.Confidence, 0.011)
	assert.NotEmpty(t, result.Explanation)
}

func TestClassifyDecodeError(t *testing.T) {
	manager := startManager(t, stubProvider{err: &audio.DecodeError{Reason: "bad stream"}}, 1, 4)

	result, err := manager.Classify(context.Background(), []byte("junk"))

	var decodeErr *audio.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, models.LabelUnknown, result.Label)
	assert.Zero(t, result.Confidence)
	assert.NotEmpty(t, result.Explanation)
}

func TestClassifyInsufficientSignal(t *testing.T) {
	short := &models.AudioSignal{Samples: make([]float64, 100), SampleRate: 44100}
	manager := startManager(t, stubProvider{signal: short}, 1, 4)

	result, err := manager.Classify(context.Background(), []byte("short"))
	require.NoError(t, err, "insufficient signal is recoverable, not an error")

	assert.Equal(t, models.LabelUnknown, result.Label)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Explanation, "insufficient signal")
}

func TestClassifyEmptySignal(t *testing.T) {
	empty := &models.AudioSignal{Samples: nil, SampleRate: 44100}
	manager := startManager(t, stubProvider{signal: empty}, 1, 4)

	result, err := manager.Classify(context.Background(), []byte(""))
	require.NoError(t, err)
	assert.Equal(t, models.LabelUnknown, result.Label)
	assert.Zero(t, result.Confidence)
	assert.NotEmpty(t, result.Explanation)
}

func TestClassifyRecoversPanic(t *testing.T) {
	manager := startManager(t, panicProvider{}, 1, 4)

	_, err := manager.Classify(context.Background(), []byte("boom"))

	var internal *InternalError
	require.ErrorAs(t, err, &internal)
}

func TestClassifyQueueFull(t *testing.T) {
	provider := &gatedProvider{
		entered: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
	manager := startManager(t, provider, 1, 1)
	defer close(provider.release)

	// Occupy the single worker.
	go manager.Classify(context.Background(), []byte("a")) //nolint:errcheck
	<-provider.entered

	// Fill the single queue slot and wait until it is actually occupied.
	go manager.Classify(context.Background(), []byte("b")) //nolint:errcheck
	require.Eventually(t, func() bool {
		return len(manager.jobs) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := manager.Classify(context.Background(), []byte("c"))
	require.True(t, errors.Is(err, ErrQueueFull), "expected ErrQueueFull, got %v", err)
}

func TestClassifyHonorsContext(t *testing.T) {
	provider := &gatedProvider{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	manager := startManager(t, provider, 1, 4)
	defer close(provider.release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := manager.Classify(ctx, []byte("slow"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

// toneSignal is one second of a bin-centered 990.5 Hz tone.
func toneSignal(sampleRate int) *models.AudioSignal {
	freq := 46.0 * float64(sampleRate) / features.FrameSize
	samples := make([]float64, sampleRate)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return &models.AudioSignal{Samples: samples, SampleRate: sampleRate}
}
