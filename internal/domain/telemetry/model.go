package telemetry

import "time"

// Sample is one telemetry reading reported by a panel. Samples are immutable
// once created; the ingestion layer fills missing fields with defaults rather
// than rejecting the payload.
type Sample struct {
	Timestamp    time.Time `json:"ts"`
	DeviceID     string    `json:"device_id"`
	Voltage      float64   `json:"voltage"`
	Illumination float64   `json:"illumination"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	TiltAngle    float64   `json:"tilt_angle"`
	Current      float64   `json:"current"`
}
