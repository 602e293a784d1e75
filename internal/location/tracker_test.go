package location

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	auth     Authorization
	grant    Authorization
	starts   int
	stops    int
	startErr error
	sink     Sink
}

func (p *fakeProvider) Authorization() Authorization { return p.auth }

func (p *fakeProvider) RequestAuthorization(sink Sink) {
	p.auth = p.grant
	sink.OnAuthorization(p.grant)
}

func (p *fakeProvider) Start(sink Sink) error {
	if p.startErr != nil {
		return p.startErr
	}
	p.starts++
	p.sink = sink
	return nil
}

func (p *fakeProvider) Stop() { p.stops++ }

var base = time.Date(2025, 6, 18, 16, 0, 0, 0, time.UTC)

func newTestTracker(p *fakeProvider, now *time.Time) *Tracker {
	return NewTracker(p, WithClock(func() time.Time { return *now }))
}

func TestEnableRequestsAuthorizationThenStarts(t *testing.T) {
	p := &fakeProvider{auth: AuthUndetermined, grant: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)

	tr.Enable()

	assert.Equal(t, 1, p.starts)
	assert.Equal(t, AuthGranted, tr.Reading().Authorization)

	tr.Enable()
	assert.Equal(t, 1, p.starts, "already running")
}

func TestDeniedAuthorizationNeverStarts(t *testing.T) {
	p := &fakeProvider{auth: AuthUndetermined, grant: AuthDenied}
	now := base
	tr := newTestTracker(p, &now)

	tr.Enable()

	assert.Zero(t, p.starts)
	assert.Equal(t, AuthDenied, tr.Reading().Authorization)
}

func TestProviderStartFailureIsLoggedAndRetried(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted, startErr: errors.New("no gps")}
	now := base
	tr := newTestTracker(p, &now)

	tr.Enable()
	assert.Zero(t, p.starts)

	p.startErr = nil
	tr.Enable()
	assert.Equal(t, 1, p.starts)
}

func TestSamplesAreFilteredAndBounded(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)
	tr.Enable()

	tr.OnSample(Sample{Latitude: 33.749, Longitude: -84.388, HorizontalAccuracy: 80, Timestamp: now})
	tr.OnSample(Sample{Latitude: 33.749, Longitude: -84.388, HorizontalAccuracy: 5, Timestamp: now.Add(-11 * time.Second)})
	assert.Nil(t, tr.Reading().Current, "inaccurate and stale fixes are ignored")

	for i := 0; i < 15; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		tr.OnSample(Sample{Latitude: 33.749 + float64(i)*0.0001, Longitude: -84.388, Speed: 11, HorizontalAccuracy: 5, Timestamp: now})
	}

	assert.Len(t, tr.history, maxHistory)
	assert.InDelta(t, 33.7504, tr.Reading().Current.Latitude, 1e-9)
}

func TestMovementFromLastThreeSamples(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)
	tr.Enable()

	// 0.0001 degrees of latitude is about 11.1 m; one fix per second is about 24.9 mph.
	for i := 0; i < 3; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		tr.OnSample(Sample{Latitude: 33.749 + float64(i)*0.0001, Longitude: -84.388, Speed: 11.1, HorizontalAccuracy: 5, Timestamp: now})
	}

	r := tr.Reading()
	assert.InDelta(t, 24.9, r.SpeedMPH, 0.2)
	assert.True(t, r.Moving)
	assert.InDelta(t, 11.1*2.237, r.AverageMPH, 1e-9)
	assert.Equal(t, StatusDriving, r.Status)
}

func TestAverageSkipsInvalidSpeeds(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)
	tr.Enable()

	tr.OnSample(Sample{Speed: 1, HorizontalAccuracy: 5, Timestamp: now})
	tr.OnSample(Sample{Speed: -1, HorizontalAccuracy: 5, Timestamp: now})

	r := tr.Reading()
	assert.InDelta(t, 2.237, r.AverageMPH, 1e-9)
	assert.False(t, r.Moving, "fewer than three fixes")
	assert.Equal(t, StatusParked, r.Status)
}

func TestDisableClearsAndStops(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)
	tr.Enable()

	var readings []Reading
	cancel := tr.Subscribe(func(r Reading) { readings = append(readings, r) })
	defer cancel()

	tr.OnSample(Sample{Speed: 2, HorizontalAccuracy: 5, Timestamp: now})
	tr.Disable()
	tr.OnSample(Sample{Speed: 2, HorizontalAccuracy: 5, Timestamp: now})

	require.Len(t, readings, 2)
	assert.Equal(t, StatusWalking, readings[0].Status)
	assert.False(t, readings[1].Enabled)
	assert.Nil(t, readings[1].Current)
	assert.Zero(t, readings[1].AverageMPH)
	assert.Equal(t, 1, p.stops)
}

func TestRevokedAuthorizationStops(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	now := base
	tr := newTestTracker(p, &now)
	tr.Enable()

	tr.OnAuthorization(AuthRestricted)

	assert.Equal(t, 1, p.stops)
	assert.Equal(t, AuthRestricted, tr.Reading().Authorization)
}

func TestDispatcherReceivesCallbacks(t *testing.T) {
	p := &fakeProvider{auth: AuthGranted}
	var queued []func()
	tr := NewTracker(p, WithDispatcher(func(fn func()) bool {
		queued = append(queued, fn)
		return true
	}))

	tr.OnSample(Sample{Speed: 3, HorizontalAccuracy: 5, Timestamp: time.Now()})
	assert.Nil(t, tr.Reading().Current, "not applied until the loop runs it")

	require.Len(t, queued, 1)
	queued[0]()
	assert.NotNil(t, tr.Reading().Current)
}

func TestStatusForSpeed(t *testing.T) {
	assert.Equal(t, StatusDriving, StatusForSpeed(5.1))
	assert.Equal(t, StatusWalking, StatusForSpeed(5))
	assert.Equal(t, StatusWalking, StatusForSpeed(1.1))
	assert.Equal(t, StatusParked, StatusForSpeed(1))
	assert.Equal(t, StatusParked, StatusForSpeed(-2))
}

func TestDistance(t *testing.T) {
	a := Sample{Latitude: 33.7490, Longitude: -84.3880}
	b := Sample{Latitude: 33.7590, Longitude: -84.3880}
	assert.InDelta(t, 1112, Distance(a, b), 2)
	assert.Zero(t, Distance(a, a))
}
