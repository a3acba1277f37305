// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidSetting = errors.New("config: invalid setting")
	ErrLoad           = errors.New("config: cannot load settings")
)
