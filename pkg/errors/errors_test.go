package errors

import (
	stderr "errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsToInternalCode(t *testing.T) {
	err := New("Logic.Op", "error.internal", stderr.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, err.GetCode())
	assert.Equal(t, "error.internal", err.Message())
}

func TestCodeOverride(t *testing.T) {
	err := New("Logic.Op", "error.forbidden", nil).Code(http.StatusForbidden)
	assert.Equal(t, http.StatusForbidden, err.GetCode())
}

func TestTraceAppendsOnCustomizedError(t *testing.T) {
	err := New("Store.Get", "error.internal", stderr.New("boom"))
	traced := Trace("Logic.Op", err)

	assert.Same(t, err, traced)
	assert.True(t, strings.Contains(traced.Error(), "Store.Get->Logic.Op"))
}

func TestTraceWrapsPlainError(t *testing.T) {
	plain := stderr.New("boom")
	traced := Trace("Logic.Op", plain)

	assert.Equal(t, "boom", traced.Message())
	assert.True(t, strings.Contains(traced.Error(), "Logic.Op"))
}

func TestWrapKeepsCode(t *testing.T) {
	inner := New("Store.Get", "error.notfound", nil).Code(http.StatusNotFound)
	outer := Wrap(inner, "Logic.Op", "error.notfound")
	assert.Equal(t, http.StatusNotFound, outer.GetCode())
}

func TestMessageFallsBackToCause(t *testing.T) {
	err := New("Logic.Op", "", stderr.New("boom"))
	assert.Equal(t, "boom", err.Message())
}
