// SPDX-License-Identifier: EPL-2.0

package spatial

import "errors"

var (
	ErrUnknownFalloff = errors.New("spatial: unknown falloff")
	ErrInvalidRange   = errors.New("spatial: near must be >= 0 and <= far")
)
