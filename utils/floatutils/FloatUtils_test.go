package floatutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClip(t *testing.T) {
	assert.Equal(t, 0.5, Clip(0.5, 0, 1))
	assert.Equal(t, 1.0, Clip(3, 0, 1))
	assert.Equal(t, 0.0, Clip(-3, 0, 1))
	assert.Equal(t, 1.0, Clip(math.Inf(1), 0, 1))
}
