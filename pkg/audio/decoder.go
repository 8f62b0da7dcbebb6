package audio

import (
	"bytes"
	"fmt"
	"io"

	"voice-detector/pkg/models"

	"github.com/hajimehoshi/go-mp3"
)

// Provider turns an encoded audio payload into a decoded signal. The rest of
// the pipeline never sees encoded bytes.
type Provider interface {
	Decode(payload []byte) (*models.AudioSignal, error)
}

// DecodeError reports a payload that could not be turned into samples.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode audio payload: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MP3Provider decodes MP3 payloads, the only supported container. Output is
// mono: go-mp3 always yields 16-bit stereo PCM, which is downmixed by
// averaging channels.
type MP3Provider struct{}

func NewMP3Provider() *MP3Provider {
	return &MP3Provider{}
}

func (p *MP3Provider) Decode(payload []byte) (*models.AudioSignal, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(payload))
	if err != nil {
		return nil, &DecodeError{Reason: "malformed mp3 stream", Err: err}
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, &DecodeError{Reason: "truncated mp3 stream", Err: err}
	}
	if len(pcm) < bytesPerFrame {
		return nil, &DecodeError{Reason: "decoded stream contains no samples"}
	}

	samples := make([]float64, 0, len(pcm)/bytesPerFrame)
	for i := 0; i+bytesPerFrame <= len(pcm); i += bytesPerFrame {
		left := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		right := int16(uint16(pcm[i+2]) | uint16(pcm[i+3])<<8)
		samples = append(samples, (float64(left)+float64(right))/2/32768)
	}

	return &models.AudioSignal{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
	}, nil
}

// 16-bit little-endian PCM, two channels.
const bytesPerFrame = 4
