package pipeline

import (
	"context"
	"errors"
	"fmt"

	"voice-detector/pkg/audio"
	"voice-detector/pkg/config"
	"voice-detector/pkg/detection"
	"voice-detector/pkg/features"
	"voice-detector/pkg/models"

	"go.uber.org/zap"
)

// ErrQueueFull is returned when the bounded job queue cannot accept another
// request; the caller should shed load.
var ErrQueueFull = errors.New("classification queue is full")

// InternalError wraps an unexpected failure inside the pipeline. Unlike bad
// input it indicates a defect and escalates to a service-level fault.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal classification failure: %v", e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

type outcome struct {
	result models.ClassificationResult
	err    error
}

type job struct {
	payload []byte
	done    chan outcome
}

// Manager runs classifications on a fixed-size worker pool so that
// concurrent CPU-bound extractions stay bounded. Classification itself is
// stateless; nothing survives a request.
type Manager struct {
	cfg      config.PipelineConfig
	provider audio.Provider
	ensemble *detection.Ensemble
	logger   *zap.Logger

	jobs chan *job
	pool *WorkerPool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewManager(cfg config.PipelineConfig, provider audio.Provider, ensemble *detection.Ensemble, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		provider: provider,
		ensemble: ensemble,
		logger:   logger,
		jobs:     make(chan *job, cfg.QueueSize),
	}
}

func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.pool = NewWorkerPool(m.cfg.Workers, m.jobs, m.process)
	m.pool.Start(m.ctx)

	m.logger.Info("pipeline started",
		zap.Int("workers", m.cfg.Workers),
		zap.Int("queue_size", m.cfg.QueueSize))
	return nil
}

func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.pool.Wait()
	m.logger.Info("pipeline stopped")
}

// Classify submits one encoded payload and waits for its verdict. The call
// is synchronous; the caller bounds it with ctx. A *audio.DecodeError comes
// back alongside the UNKNOWN result it was converted into, so the transport
// layer can mark the envelope accordingly.
func (m *Manager) Classify(ctx context.Context, payload []byte) (models.ClassificationResult, error) {
	j := &job{payload: payload, done: make(chan outcome, 1)}

	select {
	case m.jobs <- j:
	case <-m.ctx.Done():
		return models.ClassificationResult{}, fmt.Errorf("pipeline is shutting down")
	case <-ctx.Done():
		return models.ClassificationResult{}, ctx.Err()
	default:
		return models.ClassificationResult{}, ErrQueueFull
	}

	select {
	case out := <-j.done:
		return out.result, out.err
	case <-ctx.Done():
		return models.ClassificationResult{}, ctx.Err()
	}
}

// process is the per-job body run on the pool: decode, extract, classify.
// Anticipated input failures become UNKNOWN results; anything unexpected is
// wrapped as an InternalError.
func (m *Manager) process(_ context.Context, j *job) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic during classification", zap.Any("panic", r))
			j.done <- outcome{err: &InternalError{Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	signal, err := m.provider.Decode(j.payload)
	if err != nil {
		var decodeErr *audio.DecodeError
		if errors.As(err, &decodeErr) {
			m.logger.Warn("payload rejected by decoder", zap.Error(err))
			j.done <- outcome{result: unknownResult(err), err: err}
			return
		}
		j.done <- outcome{err: &InternalError{Err: err}}
		return
	}

	featureSet, err := features.Extract(signal)
	if err != nil {
		var insufficient *features.InsufficientSignalError
		if errors.As(err, &insufficient) {
			m.logger.Warn("signal too short for analysis",
				zap.Int("samples", insufficient.Samples),
				zap.Int("min_samples", insufficient.MinSamples))
			j.done <- outcome{result: unknownResult(err)}
			return
		}
		j.done <- outcome{err: &InternalError{Err: err}}
		return
	}

	result := m.ensemble.Classify(featureSet, signal.SampleRate)
	m.logger.Info("classification complete",
		zap.String("label", string(result.Label)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("sample_rate", signal.SampleRate),
		zap.Int("samples", len(signal.Samples)))
	j.done <- outcome{result: result}
}

// unknownResult converts a recoverable input failure into the UNKNOWN
// classification so callers always receive a well-formed result.
func unknownResult(err error) models.ClassificationResult {
	return models.ClassificationResult{
		Label:       models.LabelUnknown,
		Confidence:  0.0,
		Explanation: err.Error(),
	}
}
