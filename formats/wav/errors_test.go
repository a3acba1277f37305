// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{ErrNotWavFile, "not a WAV file"},
		{ErrUnsupportedFormat, "unsupported WAV encoding"},
		{ErrUnsupportedBitDepth, "unsupported WAV bit depth"},
		{ErrNoPCMData, "WAV file has no data chunk"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
		}

		wrapped := fmt.Errorf("decode: %w", tt.err)
		if !errors.Is(wrapped, tt.err) {
			t.Errorf("errors.Is(wrapped, %v) = false", tt.err)
		}
	}
}
