package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trananhvu/shoe-catalog/internal/service"
)

func TestUUIDGenerator(t *testing.T) {
	gen := service.UUIDGenerator{}

	first, err := gen.NewID()
	require.NoError(t, err)
	second, err := gen.NewID()
	require.NoError(t, err)

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}

func TestSystemClockIsNonDecreasing(t *testing.T) {
	clock := service.NewSystemClock()

	last := clock.Now()
	for range 1000 {
		now := clock.Now()
		require.GreaterOrEqual(t, now, last)
		last = now
	}
}
