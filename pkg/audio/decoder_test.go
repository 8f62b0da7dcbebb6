package audio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRejectsGarbage(t *testing.T) {
	provider := NewMP3Provider()

	_, err := provider.Decode(bytes.Repeat([]byte{0xde, 0xad}, 512))
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Contains(t, decodeErr.Error(), "unable to decode audio payload")
}

func TestDecodeRejectsEmptyPayload(t *testing.T) {
	provider := NewMP3Provider()

	_, err := provider.Decode(nil)
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
}
