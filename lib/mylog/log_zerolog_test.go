package mylog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/fpsgateway/lib/mycontext"
)

func TestCloudLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter("amazonfps", buf, true)

	c := context.WithValue(context.Background(), mycontext.CtxTraceContext{}, "projects/p/traces/abc")
	logger.Log(c, "purchase_123", SeverityWarn, "Pay request failed: %d", 503)

	record := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARNING", record["severity"])
	assert.Equal(t, "amazonfps", record["component"])
	assert.Equal(t, "amazonfps:Pay request failed: 503", record["message"])
	assert.Equal(t, "projects/p/traces/abc", record["logging.googleapis.com/trace"])
	assert.Equal(t, map[string]any{"aggregate": "purchase_123"}, record["labels"])
}

func TestCloudSeverity(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter("amazonfps", buf, true)

	for severity, expected := range map[Severity]string{
		SeverityDebug: "DEBUG",
		SeverityInfo:  "INFO",
		SeverityWarn:  "WARNING",
		SeverityError: "ERROR",
	} {
		buf.Reset()
		logger.Log(context.Background(), "", severity, "hello")

		record := map[string]any{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, expected, record["severity"], string(severity))
	}
}
