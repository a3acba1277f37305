// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var (
	ErrAlreadyInitialized = errors.New("audmix: already initialized")
	ErrNotInitialized     = errors.New("audmix: not initialized")
	ErrRestartRequired    = errors.New("audmix: output format changed, Close and Init again")
	ErrUnknownMusic       = errors.New("audmix: no music at index")
	ErrUnknownEffect      = errors.New("audmix: no effect at index")
)
