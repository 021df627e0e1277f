package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/kapu-recovery/internal/mocks"
	"github.com/dtroode/kapu-recovery/internal/testutil"
)

type purgeCounter struct {
	total int
}

func (p *purgeCounter) Operation(string, string) {}

func (p *purgeCounter) CipherDuration(string, time.Duration) {}

func (p *purgeCounter) Purged(n int) { p.total += n }

func TestJanitor_Sweep(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	store := mocks.NewBackupStore(t)
	store.On("PurgeExpired", mock.Anything, now).Return(2, nil).Once()
	store.On("PurgeExpired", mock.Anything, now).Return(0, errors.New("db down")).Once()

	counter := &purgeCounter{}
	j := NewJanitor(store, nil, counter, testutil.MakeNoopLogger(), time.Minute)
	j.now = func() time.Time { return now }

	j.Sweep(context.Background())
	j.Sweep(context.Background())
	assert.Equal(t, 2, counter.total)
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := mocks.NewBackupStore(t)
	store.On("PurgeExpired", mock.Anything, mock.Anything).Return(0, nil).Maybe()

	j := NewJanitor(store, NewAttemptLimiter(time.Minute, 1, time.Minute), nil, testutil.MakeNoopLogger(), time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitor_RunNonPositiveInterval(t *testing.T) {
	t.Parallel()

	for _, interval := range []time.Duration{0, -time.Second} {
		j := NewJanitor(mocks.NewBackupStore(t), nil, nil, testutil.MakeNoopLogger(), interval)

		assert.NotPanics(t, func() {
			j.Run(context.Background())
		})
	}
}
