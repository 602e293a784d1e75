package location

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Waypoint is a point on a simulated route with the speed reported on arrival (m/s).
type Waypoint struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Speed     float64 `yaml:"speed"`
}

// DefaultRoute is a short loop through downtown Atlanta.
var DefaultRoute = []Waypoint{
	{Latitude: 33.7490, Longitude: -84.3880, Speed: 0},
	{Latitude: 33.7502, Longitude: -84.3871, Speed: 4.5},
	{Latitude: 33.7517, Longitude: -84.3860, Speed: 11.2},
	{Latitude: 33.7533, Longitude: -84.3849, Speed: 13.4},
	{Latitude: 33.7546, Longitude: -84.3862, Speed: 8.9},
	{Latitude: 33.7540, Longitude: -84.3881, Speed: 1.2},
	{Latitude: 33.7528, Longitude: -84.3890, Speed: 0},
}

// SimulatedProvider replays a route at a fixed interval. It stands in for device GPS when
// the core runs without one.
type SimulatedProvider struct {
	route    []Waypoint
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	auth   Authorization
	cancel context.CancelFunc
}

// NewSimulatedProvider starts undetermined; RequestAuthorization grants immediately.
func NewSimulatedProvider(route []Waypoint, interval time.Duration) *SimulatedProvider {
	if len(route) == 0 {
		route = DefaultRoute
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &SimulatedProvider{
		route:    route,
		interval: interval,
		now:      time.Now,
		auth:     AuthUndetermined,
	}
}

func (p *SimulatedProvider) Authorization() Authorization {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.auth
}

// RequestAuthorization grants access and reports it to sink.
func (p *SimulatedProvider) RequestAuthorization(sink Sink) {
	p.mu.Lock()
	p.auth = AuthGranted
	p.mu.Unlock()
	sink.OnAuthorization(AuthGranted)
}

func (p *SimulatedProvider) Start(sink Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.auth != AuthGranted {
		return errors.New("location access not granted")
	}
	if p.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.run(ctx, sink)
	return nil
}

// Stop does not wait for the replay goroutine; a sample already in flight may still be
// delivered and is dropped by a disabled tracker.
func (p *SimulatedProvider) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *SimulatedProvider) run(ctx context.Context, sink Sink) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for i := 0; ; i = (i + 1) % len(p.route) {
		w := p.route[i]
		sink.OnSample(Sample{
			Latitude:           w.Latitude,
			Longitude:          w.Longitude,
			Speed:              w.Speed,
			HorizontalAccuracy: 5,
			Timestamp:          p.now(),
		})
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ErrUnavailable is returned by Unavailable.Start.
var ErrUnavailable = errors.New("location services unavailable")

// Unavailable is the provider for hosts without location services. Authorization is
// always restricted.
type Unavailable struct{}

func (Unavailable) Authorization() Authorization { return AuthRestricted }

func (Unavailable) RequestAuthorization(sink Sink) { sink.OnAuthorization(AuthRestricted) }

func (Unavailable) Start(Sink) error { return ErrUnavailable }

func (Unavailable) Stop() {}
