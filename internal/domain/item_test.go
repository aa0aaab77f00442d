package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() ImageOptions {
	return ImageOptions{Size: "1024x1024", Quality: QualityMedium}
}

func TestNewTextItem(t *testing.T) {
	t.Parallel()

	item, err := NewTextItem("a lighthouse at dusk", testOptions())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, KindTextToImage, item.Kind)
	assert.Equal(t, StatusGenerating, item.Status)
	assert.Nil(t, item.Result)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, QualityMedium, item.Options.Quality)
}

func TestNewTextItemEmptyPrompt(t *testing.T) {
	t.Parallel()

	item, err := NewTextItem("", testOptions())
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestNewTransformItem(t *testing.T) {
	t.Parallel()

	source := &Image{Data: []byte{0x1}, MIMEType: "image/png"}
	item, err := NewTransformItem(source, "make it warmer", "photo.png", testOptions())
	require.NoError(t, err)

	assert.Equal(t, KindImageTransform, item.Kind)
	assert.Same(t, source, item.Source)
	assert.Equal(t, "photo.png", item.OriginalFilename)
}

func TestNewTransformItemEmptyInstruction(t *testing.T) {
	t.Parallel()

	// An empty instruction is valid for transforms; the backend applies a
	// generic enhancement request.
	source := &Image{Data: []byte{0x1}, MIMEType: "image/png"}
	item, err := NewTransformItem(source, "", "photo.png", testOptions())
	require.NoError(t, err)
	assert.Empty(t, item.Prompt)
}

func TestNewTransformItemMissingSource(t *testing.T) {
	t.Parallel()

	item, err := NewTransformItem(nil, "make it warmer", "photo.png", testOptions())
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestValidateResultStatusInvariant(t *testing.T) {
	t.Parallel()

	result := &Image{Data: []byte{0x2}, MIMEType: "image/png"}

	tests := []struct {
		name    string
		status  ItemStatus
		result  *Image
		wantErr error
	}{
		{"generating without result", StatusGenerating, nil, nil},
		{"ready with result", StatusReady, result, nil},
		{"ready without result", StatusReady, nil, ErrValidation},
		{"generating with result", StatusGenerating, result, ErrValidation},
		{"failed with result", StatusFailed, result, ErrValidation},
		{"timeout without result", StatusTimeout, nil, nil},
		{"cancelled without result", StatusCancelled, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, err := NewTextItem("a lighthouse at dusk", testOptions())
			require.NoError(t, err)

			item.Status = tt.status
			item.Result = tt.result

			err = item.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompleteAndFailKeepInvariant(t *testing.T) {
	t.Parallel()

	item, err := NewTextItem("a lighthouse at dusk", testOptions())
	require.NoError(t, err)

	item.Complete(&Image{Data: []byte{0x3}, MIMEType: "image/png"})
	assert.Equal(t, StatusReady, item.Status)
	assert.NoError(t, item.Validate())

	item.Fail(StatusFailed, "backend error")
	assert.Equal(t, StatusFailed, item.Status)
	assert.Nil(t, item.Result)
	assert.Equal(t, "backend error", item.LastError)
	assert.NoError(t, item.Validate())
}

func TestResetForRetry(t *testing.T) {
	t.Parallel()

	item, err := NewTextItem("a lighthouse at dusk", testOptions())
	require.NoError(t, err)

	item.Fail(StatusTimeout, "took too long")
	item.ResetForRetry()

	assert.Equal(t, StatusGenerating, item.Status)
	assert.Nil(t, item.Result)
	assert.Empty(t, item.LastError)
	assert.NoError(t, item.Validate())
}

func TestStatusPredicates(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusGenerating.IsTerminal())
	assert.True(t, StatusReady.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusTimeout.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())

	assert.False(t, StatusGenerating.CanRetry())
	assert.False(t, StatusReady.CanRetry())
	assert.True(t, StatusFailed.CanRetry())
	assert.True(t, StatusTimeout.CanRetry())
	assert.True(t, StatusCancelled.CanRetry())
}
