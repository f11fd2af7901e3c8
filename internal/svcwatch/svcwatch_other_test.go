//go:build !windows

package svcwatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnsupportedOnThisPlatform(t *testing.T) {
	w, err := New()
	assert.Nil(t, w)
	assert.ErrorIs(t, err, ErrUnsupported)
}
