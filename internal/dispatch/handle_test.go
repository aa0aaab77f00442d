package dispatch

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofsheet/proofsheet-api/internal/domain"
)

func TestHandleLifecycle(t *testing.T) {
	t.Parallel()

	h := newHandle(uuid.New())
	assert.False(t, h.Running())
	assert.False(t, h.Done())
	assert.False(t, h.submittedAt.IsZero())
	assert.True(t, h.ProcessingStartedAt().IsZero())

	require.True(t, h.begin())
	assert.True(t, h.Running())
	assert.False(t, h.Done())

	img := &domain.Image{Data: []byte{0x1}, MIMEType: "image/png"}
	h.complete(img, nil)
	assert.False(t, h.Running())
	assert.True(t, h.Done())

	result, err, ok := h.Await(time.Millisecond)
	require.True(t, ok)
	assert.NoError(t, err)
	assert.Same(t, img, result)
}

func TestHandleCancelBeforeStart(t *testing.T) {
	t.Parallel()

	h := newHandle(uuid.New())
	assert.True(t, h.Cancel())
	assert.True(t, h.Done())

	// A worker picking the job up afterwards must not run it.
	assert.False(t, h.begin())

	_, err, ok := h.Await(time.Millisecond)
	require.True(t, ok)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestHandleCancelAfterStartFails(t *testing.T) {
	t.Parallel()

	h := newHandle(uuid.New())
	require.True(t, h.begin())
	assert.False(t, h.Cancel())
	assert.True(t, h.Running())

	h.complete(nil, errors.New("backend unavailable"))
	assert.False(t, h.Cancel())
}

func TestAwaitTimesOutWhileRunning(t *testing.T) {
	t.Parallel()

	h := newHandle(uuid.New())
	require.True(t, h.begin())

	start := time.Now()
	_, _, ok := h.Await(20 * time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestMarkProcessingStarted(t *testing.T) {
	t.Parallel()

	h := newHandle(uuid.New())
	now := time.Now().UTC()
	h.MarkProcessingStarted(now)
	assert.Equal(t, now, h.ProcessingStartedAt())
}
