// Package progress provides the simulated telemetry shown while a
// remote operation runs. Everything here is a pure function of elapsed
// time; nothing reflects or influences actual operation completion.
package progress

import "time"

var generateMessages = []string{
	"Igniting propulsion systems...",
	"Calculating warp trajectory...",
	"Scanning sector for cosmic anomalies...",
	"Synthesizing starlight data...",
	"Materializing high-resolution photons...",
	"Calibrating orbital sensors...",
	"Downloading spectral map...",
	"Finalizing atmospheric rendering...",
}

var upscaleMessages = []string{
	"Enhancing cosmic resolution...",
	"De-noising deep space signals...",
	"Reconstructing stellar textures...",
	"Injecting 4K photon density...",
	"Polishing nebula gradients...",
	"Deep-learning spectral upscale...",
	"Finalizing 4K hyper-render...",
}

const (
	messagePeriod = 3 * time.Second
	tick          = 500 * time.Millisecond

	// Percent per tick; upscales ramp slower.
	generateStep = 5.0
	upscaleStep  = 2.0

	// The bar never reports completion on its own.
	maxPercent = 90.0
)

// Percent returns the simulated completion percentage after elapsed
// time.
func Percent(elapsed time.Duration, upscaling bool) float64 {
	if elapsed < 0 {
		return 0
	}
	step := generateStep
	if upscaling {
		step = upscaleStep
	}
	p := float64(elapsed/tick) * step
	if p > maxPercent {
		return maxPercent
	}
	return p
}

// Message returns the status line to show after elapsed time, cycling
// through the mission log.
func Message(elapsed time.Duration, upscaling bool) string {
	messages := generateMessages
	if upscaling {
		messages = upscaleMessages
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return messages[int(elapsed/messagePeriod)%len(messages)]
}
