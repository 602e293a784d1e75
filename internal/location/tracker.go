package location

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	maxHistory      = 10
	maxSampleAge    = 10 * time.Second
	maxAccuracy     = 50.0 // meters
	speedWindow     = 3
	movingThreshold = 0.5 // mph
)

// Reading is the tracker state published to subscribers.
type Reading struct {
	Authorization Authorization `json:"authorization"`
	Enabled       bool          `json:"enabled"`
	Current       *Sample       `json:"current,omitempty"`
	SpeedMPH      float64       `json:"speedMph"`
	AverageMPH    float64       `json:"averageMph"`
	Moving        bool          `json:"moving"`
	Status        Status        `json:"status"`
}

// Dispatcher runs fn on the application's event loop. It reports false when fn was dropped.
type Dispatcher func(fn func()) bool

// Tracker turns raw provider callbacks into a smoothed movement reading. It is constructed
// once by the application root and handed to whichever screens need it.
type Tracker struct {
	provider Provider
	dispatch Dispatcher
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	auth    Authorization
	enabled bool
	running bool
	history []Sample
	current *Sample
	speed   float64
	average float64
	moving  bool

	subMu     sync.Mutex
	listeners []*listener
}

type listener struct {
	fn     func(Reading)
	active atomic.Bool
}

type Option func(*Tracker)

// WithDispatcher routes provider callbacks through fn, typically EventLoop.Post.
func WithDispatcher(fn Dispatcher) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.dispatch = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker builds a tracker over provider. Tracking starts enabled but the provider is
// not started until Enable is called with authorization granted.
func NewTracker(provider Provider, opts ...Option) *Tracker {
	t := &Tracker{
		provider: provider,
		dispatch: func(fn func()) bool { fn(); return true },
		now:      time.Now,
		logger:   zap.NewNop(),
		auth:     provider.Authorization(),
		enabled:  true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enable turns tracking on. With undetermined authorization it asks the provider; the
// provider answers later through OnAuthorization.
func (t *Tracker) Enable() {
	t.mu.Lock()
	t.enabled = true
	auth := t.auth
	t.mu.Unlock()

	switch auth {
	case AuthUndetermined:
		t.provider.RequestAuthorization(t)
	case AuthGranted:
		t.start()
	}
	t.publish()
}

// Disable stops the provider and clears the current fix and derived speeds.
func (t *Tracker) Disable() {
	t.mu.Lock()
	t.enabled = false
	t.history = nil
	t.current = nil
	t.speed = 0
	t.average = 0
	t.moving = false
	t.mu.Unlock()

	t.stop()
	t.publish()
}

func (t *Tracker) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Reading returns the current state.
func (t *Tracker) Reading() Reading {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readingLocked()
}

// Subscribe registers fn for every state change; the returned cancel is idempotent.
func (t *Tracker) Subscribe(fn func(Reading)) (cancel func()) {
	l := &listener{fn: fn}
	l.active.Store(true)

	t.subMu.Lock()
	t.listeners = append(t.listeners, l)
	t.subMu.Unlock()

	return func() {
		if !l.active.Swap(false) {
			return
		}
		t.subMu.Lock()
		defer t.subMu.Unlock()
		for i, other := range t.listeners {
			if other == l {
				t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
				break
			}
		}
	}
}

// OnSample implements Sink.
func (t *Tracker) OnSample(s Sample) {
	if !t.dispatch(func() { t.handleSample(s) }) {
		t.logger.Debug("location sample dropped")
	}
}

// OnAuthorization implements Sink.
func (t *Tracker) OnAuthorization(a Authorization) {
	if !t.dispatch(func() { t.handleAuthorization(a) }) {
		t.logger.Debug("location authorization dropped", zap.String("authorization", string(a)))
	}
}

func (t *Tracker) handleSample(s Sample) {
	t.mu.Lock()
	if !t.enabled {
		t.mu.Unlock()
		return
	}
	if t.now().Sub(s.Timestamp) >= maxSampleAge || s.HorizontalAccuracy < 0 || s.HorizontalAccuracy >= maxAccuracy {
		t.mu.Unlock()
		t.logger.Debug("location sample rejected",
			zap.Time("timestamp", s.Timestamp),
			zap.Float64("accuracy", s.HorizontalAccuracy),
		)
		return
	}

	t.history = append(t.history, s)
	if len(t.history) > maxHistory {
		t.history = append([]Sample(nil), t.history[len(t.history)-maxHistory:]...)
	}
	current := s
	t.current = &current
	t.updateMovementLocked()
	t.mu.Unlock()

	t.publish()
}

func (t *Tracker) handleAuthorization(a Authorization) {
	t.mu.Lock()
	t.auth = a
	enabled := t.enabled
	t.mu.Unlock()

	switch a {
	case AuthGranted:
		if enabled {
			t.start()
		}
	case AuthDenied, AuthRestricted:
		t.stop()
	}
	t.publish()
}

// updateMovementLocked derives current speed from the distance covered by the last three
// fixes and averages the provider-reported speeds over the whole history.
func (t *Tracker) updateMovementLocked() {
	if n := len(t.history); n >= speedWindow {
		recent := t.history[n-speedWindow:]
		var meters float64
		for i := 1; i < len(recent); i++ {
			meters += Distance(recent[i-1], recent[i])
		}
		span := recent[len(recent)-1].Timestamp.Sub(recent[0].Timestamp).Seconds()
		if span > 0 {
			mph := MPH(meters / span)
			t.speed = max(0, mph)
			t.moving = mph > movingThreshold
		}
	}

	if len(t.history) >= 2 {
		var sum float64
		var valid int
		for _, s := range t.history {
			if s.Speed >= 0 {
				sum += MPH(s.Speed)
				valid++
			}
		}
		if valid > 0 {
			t.average = sum / float64(valid)
		}
	}
}

func (t *Tracker) readingLocked() Reading {
	r := Reading{
		Authorization: t.auth,
		Enabled:       t.enabled,
		SpeedMPH:      t.speed,
		AverageMPH:    t.average,
		Moving:        t.moving,
		Status:        StatusParked,
	}
	if t.current != nil {
		c := *t.current
		r.Current = &c
		r.Status = StatusForSpeed(MPH(c.Speed))
	}
	return r
}

func (t *Tracker) start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	if err := t.provider.Start(t); err != nil {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		t.logger.Warn("location provider failed to start", zap.Error(err))
	}
}

func (t *Tracker) stop() {
	t.mu.Lock()
	wasRunning := t.running
	t.running = false
	t.mu.Unlock()

	if wasRunning {
		t.provider.Stop()
	}
}

func (t *Tracker) publish() {
	reading := t.Reading()

	t.subMu.Lock()
	listeners := append([]*listener(nil), t.listeners...)
	t.subMu.Unlock()

	for _, l := range listeners {
		if l.active.Load() {
			l.fn(reading)
		}
	}
}
