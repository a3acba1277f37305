// SPDX-License-Identifier: EPL-2.0

package transition

import "errors"

var (
	ErrNegativeDuration = errors.New("transition duration must not be negative")
	ErrTargetOutOfRange = errors.New("transition target must be within [0,1]")
	ErrUnknownKind      = errors.New("unknown transition kind")
)
