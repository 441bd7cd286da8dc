package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Unwrap(t *testing.T) {
	err := NewError("catalog.parse", ErrMissingColumn)
	wrapped := fmt.Errorf("load: %w", err)

	assert.True(t, errors.Is(wrapped, ErrMissingColumn))

	var ce *Error
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "catalog.parse", ce.Op)
}

func TestError_Message(t *testing.T) {
	err := NewError("fuzzy.match", ErrInvalidArgument)
	assert.Equal(t, "fuzzy.match: invalid argument", err.Error())

	WithContext(err, "n", 0)
	assert.Equal(t, "fuzzy.match map[n:0]: invalid argument", err.Error())
}
