package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimiter_FailAndExhausted(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewAttemptLimiter(time.Minute, 2, time.Hour)
	l.now = func() time.Time { return now }

	assert.False(t, l.Exhausted("a"))
	assert.Empty(t, l.buckets)

	l.Fail("a")
	assert.False(t, l.Exhausted("a"))
	l.Fail("a")
	assert.True(t, l.Exhausted("a"))
	assert.False(t, l.Exhausted("b"))

	now = now.Add(time.Minute)
	assert.False(t, l.Exhausted("a"))
	l.Fail("a")
	assert.True(t, l.Exhausted("a"))

	l.Forget("a")
	assert.False(t, l.Exhausted("a"))
}

func TestAttemptLimiter_ExhaustedDoesNotSpend(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewAttemptLimiter(time.Hour, 1, time.Hour)
	l.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		assert.False(t, l.Exhausted("a"))
	}
	assert.Empty(t, l.buckets)

	l.Fail("a")
	assert.True(t, l.Exhausted("a"))
}

func TestAttemptLimiter_Disabled(t *testing.T) {
	t.Parallel()

	var nilLimiter *AttemptLimiter
	nilLimiter.Fail("a")
	assert.False(t, nilLimiter.Exhausted("a"))
	assert.Zero(t, nilLimiter.Sweep())
	nilLimiter.Forget("a")

	off := NewAttemptLimiter(time.Minute, 0, time.Hour)
	for i := 0; i < 10; i++ {
		off.Fail("a")
	}
	assert.False(t, off.Exhausted("a"))
	assert.Empty(t, off.buckets)
}

func TestAttemptLimiter_Sweep(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewAttemptLimiter(time.Minute, 1, 10*time.Minute)
	l.now = func() time.Time { return now }

	l.Fail("old")
	now = now.Add(15 * time.Minute)
	l.Fail("fresh")

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.buckets, 1)
}
