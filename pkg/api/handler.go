package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"voice-detector/pkg/audio"
	"voice-detector/pkg/config"
	"voice-detector/pkg/models"
	"voice-detector/pkg/pipeline"

	"go.uber.org/zap"
)

// SupportedFormat is the only audio container the boundary accepts; anything
// else is rejected before the signal provider runs.
const SupportedFormat = "mp3"

const invalidFormatDetail = "Invalid audio format. Only 'mp3' is supported."

// Classifier is the pipeline surface the handlers need.
type Classifier interface {
	Classify(ctx context.Context, payload []byte) (models.ClassificationResult, error)
}

type Handlers struct {
	classifier Classifier
	cfg        *config.Config
	logger     *zap.Logger
}

func NewHandlers(classifier Classifier, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// DetectHandler serves POST /api/voice-detection.
//
// Boundary failures (bad schema, unsupported format) are 4xx. Recoverable
// input failures always produce a well-formed envelope: decode failures as
// status "error", insufficient signal as status "success" with an UNKNOWN
// classification. Only defects surface as 5xx.
func (h *Handlers) DetectHandler(w http.ResponseWriter, r *http.Request) {
	var req models.DetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Language == "" || req.AudioBase64 == "" {
		writeDetail(w, http.StatusBadRequest, "language and audioBase64 are required")
		return
	}
	if !strings.EqualFold(req.AudioFormat, SupportedFormat) {
		writeDetail(w, http.StatusBadRequest, invalidFormatDetail)
		return
	}

	payload, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		// Same class as a codec failure: the payload never became samples.
		writeJSON(w, http.StatusOK, models.DetectionResponse{
			Status:          "error",
			Language:        req.Language,
			Classification:  models.LabelUnknown,
			ConfidenceScore: 0.0,
			Explanation:     "audioBase64 is not valid base64 data",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.Pipeline.ProcessingTimeout)
	defer cancel()

	result, err := h.classifier.Classify(ctx, payload)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, envelope("success", req.Language, result))

	case isDecodeError(err):
		writeJSON(w, http.StatusOK, envelope("error", req.Language, result))

	case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn("classification rejected", zap.Error(err))
		writeDetail(w, http.StatusServiceUnavailable, "Service is at capacity, try again later")

	default:
		h.logger.Error("classification failed", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, fmt.Sprintf("Internal error: %v", err))
	}
}

func envelope(status, language string, result models.ClassificationResult) models.DetectionResponse {
	return models.DetectionResponse{
		Status:          status,
		Language:        language,
		Classification:  result.Label,
		ConfidenceScore: result.Confidence,
		Explanation:     result.Explanation,
	}
}

func isDecodeError(err error) bool {
	var decodeErr *audio.DecodeError
	return errors.As(err, &decodeErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
