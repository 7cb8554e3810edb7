package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestUploadMessageJSON(t *testing.T) {
	uploaded := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(UploadMessage{ID: "u-1", Filename: "sample.wav", Size: 2048, UploadedAt: uploaded})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01T12:00:00Z", gjson.GetBytes(body, "uploaded_at").String())
	assert.False(t, gjson.GetBytes(body, "filepath").Exists())
	assert.Equal(t, int64(2048), gjson.GetBytes(body, "size").Int())

	// A producer that omits the timestamp still yields a decodable message.
	var msg UploadMessage
	require.NoError(t, json.Unmarshal([]byte(`{"filename":"sample.wav","size":2048}`), &msg))
	assert.True(t, msg.UploadedAt.IsZero())
}
