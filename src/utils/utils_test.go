package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, "a", OrDefault("a", "b"))
	assert.Equal(t, "b", OrDefault("", "b"))
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, ErrSleepInterrupted)

	err = SleepContext(context.Background(), time.Millisecond)
	assert.Nil(t, err)
}
