package location

import (
	"math"
	"time"
)

// Authorization mirrors the platform permission states for location access.
type Authorization string

const (
	AuthUndetermined Authorization = "undetermined"
	AuthGranted      Authorization = "granted"
	AuthDenied       Authorization = "denied"
	AuthRestricted   Authorization = "restricted"
)

// Sample is one position fix. Speed is meters per second; a negative speed means the
// provider could not measure it.
type Sample struct {
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	Speed              float64   `json:"speed"`
	HorizontalAccuracy float64   `json:"horizontalAccuracy"`
	Timestamp          time.Time `json:"timestamp"`
}

// Sink receives provider callbacks. Calls may arrive on any goroutine.
type Sink interface {
	OnSample(Sample)
	OnAuthorization(Authorization)
}

// Provider is the platform location source. RequestAuthorization answers through
// sink.OnAuthorization, possibly later and on another goroutine.
type Provider interface {
	Authorization() Authorization
	RequestAuthorization(sink Sink)
	Start(sink Sink) error
	Stop()
}

// Status is the coarse movement classification shown on the map.
type Status string

const (
	StatusDriving Status = "driving"
	StatusWalking Status = "walking"
	StatusParked  Status = "parked"
)

const (
	mphPerMetersPerSecond = 2.237
	earthRadiusMeters     = 6371000.0
)

// MPH converts meters per second to miles per hour.
func MPH(metersPerSecond float64) float64 {
	return metersPerSecond * mphPerMetersPerSecond
}

// StatusForSpeed classifies a speed in mph: driving above 5, walking above 1.
func StatusForSpeed(mph float64) Status {
	switch {
	case mph > 5:
		return StatusDriving
	case mph > 1:
		return StatusWalking
	default:
		return StatusParked
	}
}

// Distance is the great-circle distance between two samples in meters.
func Distance(a, b Sample) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
