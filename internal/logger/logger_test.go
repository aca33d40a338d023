package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitDebugUsesTextFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(true, &buf)

	Log().Debug("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestInitProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(false, &buf)

	Log().Debug("dropped below info level")
	assert.Empty(t, buf.String())

	WithFields(logrus.Fields{"component": "api"}).Info("started")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"component":"api"`)
}
