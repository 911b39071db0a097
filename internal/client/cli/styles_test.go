package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := map[string]float64{
		"":      0,
		"0%":    0,
		"50%":   50,
		"42.5%": 42.5,
		"100%":  100,
		"150%":  100,
		"-3%":   0,
		"abc":   0,
	}
	for in, want := range tests {
		assert.Equal(t, want, percent(in), in)
	}
}

func TestRenderBar(t *testing.T) {
	half := renderBar("photo", "50%")
	assert.Contains(t, half, "photo")
	assert.Contains(t, half, " 50%")
	assert.Equal(t, barCells/2, strings.Count(half, "█"))
	assert.Equal(t, barCells/2, strings.Count(half, "░"))

	full := renderBar("video", "100%")
	assert.Equal(t, barCells, strings.Count(full, "█"))
	assert.Contains(t, full, "100%")
}
