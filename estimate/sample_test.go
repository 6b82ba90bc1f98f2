package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSample(t *testing.T) {
	t.Run("test ExactCount", testExactCount)
	t.Run("test Extrapolation", testExtrapolation)
	t.Run("test EmptySample", testEmptySample)
}

func testExactCount(t *testing.T) {
	sample := NewSample(10, 1000)

	// no rounding drift when nothing changed
	assert.Equal(t, int64(1000), sample.Estimate(10))
}

func testExtrapolation(t *testing.T) {
	sample := NewSample(10, 1000)

	assert.Equal(t, int64(2000), sample.Estimate(20))
	assert.Equal(t, int64(500), sample.Estimate(5))
	assert.Equal(t, int64(0), sample.Estimate(0))

	// integer scaling truncates
	odd := NewSample(3, 10)
	assert.Equal(t, int64(23), odd.Estimate(7))
}

func testEmptySample(t *testing.T) {
	sample := NewSample(0, 0)

	assert.Equal(t, int64(0), sample.Estimate(0))
	assert.Equal(t, int64(0), sample.Estimate(100))
}
