package media

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeekFlag_Has(t *testing.T) {
	assert.True(t, Default.Has(KeyFrame))
	assert.True(t, Default.Has(FromStart))
	assert.False(t, Default.Has(FromNow))
	assert.True(t, Default.IsFast())
	assert.False(t, FromStart.IsFast())
}

func TestSeekFlag_String(t *testing.T) {
	tests := []struct {
		flag SeekFlag
		want string
	}{
		{Default, "FromStart|KeyFrame"},
		{FromNow, "FromNow"},
		{0, "Accurate"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.flag.String())
		})
	}
}

func TestDecoderCategory(t *testing.T) {
	assert.Equal(t, "decoder.video", DecoderCategory(Video))
	assert.Equal(t, "decoder.audio", DecoderCategory(Audio))
	assert.Equal(t, "thread.subtitle", ThreadCategory(Subtitle))
}

func TestCodeOf(t *testing.T) {
	coded := &Error{Code: CodeInvalid, Category: CategoryReader, Detail: "bad header"}

	tests := []struct {
		name string
		err  error
		want int64
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), CodeUnknown},
		{"coded error", coded, CodeInvalid},
		{"wrapped coded error", fmt.Errorf("open: %w", coded), CodeInvalid},
		{"non-negative code", &Error{Code: 3}, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestMediaEvent_IsError(t *testing.T) {
	assert.False(t, MediaEvent{Error: 50, Category: CategoryReaderBuffering, Stream: -1}.IsError())
	assert.True(t, MediaEvent{Error: CodeDecoder, Category: DecoderCategory(Video)}.IsError())
}
