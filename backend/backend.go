// SPDX-License-Identifier: EPL-2.0

package backend

// Renderer produces the next len(out)/channels frames of interleaved audio.
// *engine.Engine implements it.
type Renderer interface {
	Render(out []float32)
}

// Backend drives a Renderer from its own real-time goroutine.
type Backend interface {
	// Start begins pulling audio from r. A backend can be started once.
	Start(r Renderer) error
	// Close stops pulling. Render is not called once Close returns.
	Close() error
}
