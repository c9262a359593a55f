package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	err := Error(EUNSUPPORTED, "font format %q", "pfb")
	assert.Equal(t, EUNSUPPORTED, Code(err))
	assert.Equal(t, `font format "pfb"`, UserMessage(err))
	wrapped := fmt.Errorf("probing: %w", err)
	assert.Equal(t, EUNSUPPORTED, Code(wrapped), "code should survive wrapping")
	assert.Equal(t, NOERROR, Code(nil))
	assert.Equal(t, EINTERNAL, Code(errors.New("plain")))
}

func TestWrapError(t *testing.T) {
	base := errors.New("short read")
	err := WrapError(base, EIO, "reading table %s", "cmap")
	assert.True(t, errors.Is(err, base))
	assert.Equal(t, EIO, Code(err))
	assert.Equal(t, "reading table cmap", UserMessage(err))
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "never") })
	assert.Panics(t, func() { Assert(false, "refcount underflow") })
	defer func() {
		r := recover()
		err, ok := r.(error)
		assert.True(t, ok)
		assert.Equal(t, EINTERNAL, Code(err))
	}()
	Fatal("unknown bitmap format %d", 7)
}
