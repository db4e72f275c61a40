package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructorsMatchSentinels(t *testing.T) {
	cause := errors.New("connection reset")

	assert.ErrorIs(t, TransportError("parse call", cause), ErrTransport)
	assert.ErrorIs(t, TransportError("parse call", cause), cause)
	assert.ErrorIs(t, ValidationError("bad schema", nil), ErrValidation)
	assert.ErrorIs(t, IOError("write file", cause), ErrIO)
	assert.ErrorIs(t, UnsupportedFormatError(".txt"), ErrUnsupportedFormat)
}

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError("IO_ERROR", "write failed", errors.New("disk full"))
	assert.Equal(t, "IO_ERROR: write failed: disk full", err.Error())

	var appErr *AppError
	require.ErrorAs(t, IOError("write file", errors.New("disk full")), &appErr)
	assert.Equal(t, "IO_ERROR", appErr.Code)
}
