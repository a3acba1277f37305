// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrAlreadyStarted = errors.New("backend: already started")
	ErrNotStarted     = errors.New("backend: not started")
	ErrClosed         = errors.New("backend: closed")
	ErrInvalidFormat  = errors.New("backend: invalid output format")
)
