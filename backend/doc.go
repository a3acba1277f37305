// SPDX-License-Identifier: EPL-2.0

// Package backend connects a Renderer to an output.
//
// Oto pulls from the system audio device through ebitengine/oto. The device
// goroutine calls Render whenever it needs more samples, which makes it the
// engine's real-time goroutine.
//
// Offline renders only when asked, either one period at a time with Pump or
// straight into a WAV file with Bounce.
package backend
