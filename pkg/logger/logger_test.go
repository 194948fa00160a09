package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONFieldsAndCaller(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "debug", Format: "json", Output: &buf})

	Info("order created", map[string]interface{}{"order_id": 7})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["message"])
	assert.Equal(t, float64(7), entry["order_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "warn", Format: "json", Output: &buf})

	Debug("hidden")
	Info("hidden")
	assert.Zero(t, buf.Len())

	Error("visible", errors.New("boom"))
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	Initialize(Config{Level: "info", Format: "json", Output: &buf})

	WithContext(map[string]interface{}{"request_id": "abc"}).Warn("slow provider")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "warn", entry["level"])
}
