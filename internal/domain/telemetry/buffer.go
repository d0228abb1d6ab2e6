package telemetry

import "sync"

// SequenceBuffer keeps a bounded, time-ordered window of recent samples per
// device. It is the in-memory source the pipeline falls back to when the
// remote store is unreachable.
type SequenceBuffer struct {
	mu       sync.RWMutex
	capacity int
	windows  map[string][]Sample
}

// NewSequenceBuffer constructs a buffer with the given per-device capacity.
func NewSequenceBuffer(capacity int) *SequenceBuffer {
	if capacity <= 0 {
		capacity = 24
	}
	return &SequenceBuffer{
		capacity: capacity,
		windows:  make(map[string][]Sample),
	}
}

// Push appends a sample to the device's window, creating it on first use.
// Once the window is full the oldest sample is evicted silently.
func (b *SequenceBuffer) Push(deviceID string, sample Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	window := append(b.windows[deviceID], sample)
	if len(window) > b.capacity {
		window = window[len(window)-b.capacity:]
	}
	b.windows[deviceID] = window
}

// Snapshot returns an ordered copy of the device's current window.
func (b *SequenceBuffer) Snapshot(deviceID string) []Sample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	window := b.windows[deviceID]
	out := make([]Sample, len(window))
	copy(out, window)
	return out
}

// Devices lists every device that has reported at least one sample.
func (b *SequenceBuffer) Devices() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.windows))
	for id := range b.windows {
		ids = append(ids, id)
	}
	return ids
}
