package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "66.7%", FormatPercent(66.66666))
	assert.Equal(t, "0.0%", FormatPercent(0))
	assert.Equal(t, "100.0%", FormatPercent(100))
}

func TestFormatCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "25", FormatCount(25))
	assert.Equal(t, "2.5", FormatCount(2.5))
	assert.Equal(t, "0", FormatCount(0))
}
