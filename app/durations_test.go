package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1w2d3h4m5s")
	assert.NoError(t, err)
	assert.Equal(t, 9*24*time.Hour+3*time.Hour+4*time.Minute+5*time.Second, d)
}

func TestParseDurationNoUnits(t *testing.T) {
	_, err := ParseDuration("nothing")
	assert.EqualError(t, err, "invalid duration: nothing")
}

func TestParseDurationSubSecond(t *testing.T) {
	d, err := ParseDuration("250ms")
	assert.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}
