package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePayload(t *testing.T) {
	body := []byte(`{"results":[]}`)
	payload, err := encodePayload(200, map[string]string{"Content-Type": "application/json"}, body)
	require.NoError(t, err)

	status, hdr, got, err := decodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "application/json", hdr["Content-Type"])
	assert.Equal(t, body, got)
}

func TestDecodePayload_Truncated(t *testing.T) {
	_, _, _, err := decodePayload([]byte{0, 0})
	assert.Error(t, err)

	payload, err := encodePayload(200, map[string]string{"a": "b"}, []byte("x"))
	require.NoError(t, err)
	_, _, _, err = decodePayload(payload[:9])
	assert.Error(t, err)
}
