package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeContent(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeContent("  hello world  "))
	assert.Equal(t, "hello", SanitizeContent("<script>alert(1)</script>hello"))
	assert.Equal(t, "a b", SanitizeContent("a\x00\x01b"))
	assert.Equal(t, "a b", SanitizeContent("a    b"))
	assert.Equal(t, "", SanitizeContent("<b></b>"))
}

func TestSanitizeForLog(t *testing.T) {
	assert.Equal(t, "a b", SanitizeForLog("a\r\nb"))
	assert.Equal(t, "a b", SanitizeForLog("a\nb"))
	assert.Equal(t, "", SanitizeForLog(""))
}
