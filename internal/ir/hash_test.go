package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentVersion(t *testing.T) {
	v1 := ContentVersion([]byte("key,status\n"))
	v2 := ContentVersion([]byte("key,status\n"))
	v3 := ContentVersion([]byte("key,status\r\n"))

	assert.Equal(t, v1, v2, "version must be deterministic")
	assert.NotEqual(t, v1, v3)
	assert.Len(t, v1, 64, "SHA-256 hex is 64 characters")
}

func TestNormalizeSubject(t *testing.T) {
	composed := "Zo\u00eb"
	decomposed := "Zoe\u0308"
	assert.Equal(t, composed, NormalizeSubject("  "+decomposed+" "))
}
