package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerV2_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf).With(Fields{"service": "invoice-service"})

	logger.Info("Invoice created", Fields{"invoice_number": "INV2610123"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Invoice created", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "invoice-service", entry["service"])
	assert.Equal(t, "INV2610123", entry["invoice_number"])
}

func TestLoggerV2_MultipleFieldSets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	logger.Error("Store failed", Fields{"user_id": "u1"}, Fields{"error": "boom"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "u1", entry["user_id"])
	assert.Equal(t, "boom", entry["error"])
}

func TestConfigure(t *testing.T) {
	l := logrus.New()

	Configure(l, "debug", "text")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	Configure(l, "not-a-level", "")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)
}
