// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize        = errors.New("dst size must be multiple of channels")
	ErrUnsupportedConversion = errors.New("unsupported format conversion")
	ErrUnknownFormat         = errors.New("no decoder registered for format")
	ErrNotSeekable           = errors.New("source is not seekable")
	ErrSeekOutOfRange        = errors.New("seek position out of range")
	ErrClosed                = errors.New("source is closed")
)
