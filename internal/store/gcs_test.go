package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestGCSConditions(t *testing.T) {
	cond, err := gcsConditions("")
	require.NoError(t, err)
	assert.True(t, cond.DoesNotExist)
	assert.Zero(t, cond.GenerationMatch)

	cond, err = gcsConditions("1712345678901234")
	require.NoError(t, err)
	assert.False(t, cond.DoesNotExist)
	assert.Equal(t, int64(1712345678901234), cond.GenerationMatch)

	_, err = gcsConditions("abc")
	assert.Error(t, err)
}

func TestIsPreconditionFailed(t *testing.T) {
	pf := &googleapi.Error{Code: http.StatusPreconditionFailed}
	assert.True(t, isPreconditionFailed(pf))
	assert.True(t, isPreconditionFailed(fmt.Errorf("close writer: %w", pf)))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isPreconditionFailed(errors.New("boom")))
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	_, err := NewGCS(t.Context(), "", "", "")
	assert.Error(t, err)
}
