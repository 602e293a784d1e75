package location

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	samples []Sample
	auths   []Authorization
}

func (s *recordingSink) OnSample(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
}

func (s *recordingSink) OnAuthorization(a Authorization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auths = append(s.auths, a)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

func TestSimulatedProviderRequiresAuthorization(t *testing.T) {
	p := NewSimulatedProvider(nil, time.Millisecond)
	sink := &recordingSink{}

	require.Error(t, p.Start(sink))

	p.RequestAuthorization(sink)
	assert.Equal(t, []Authorization{AuthGranted}, sink.auths)
	assert.Equal(t, AuthGranted, p.Authorization())
}

func TestSimulatedProviderReplaysRoute(t *testing.T) {
	p := NewSimulatedProvider(DefaultRoute, 5*time.Millisecond)
	sink := &recordingSink{}
	p.RequestAuthorization(sink)

	require.NoError(t, p.Start(sink))
	require.NoError(t, p.Start(sink), "second start is a no-op")
	assert.Eventually(t, func() bool { return sink.count() >= 3 }, time.Second, 5*time.Millisecond)
	p.Stop()
	p.Stop()

	sink.mu.Lock()
	first := sink.samples[0]
	sink.mu.Unlock()
	assert.Equal(t, DefaultRoute[0].Latitude, first.Latitude)
	assert.Less(t, first.HorizontalAccuracy, maxAccuracy)
}

func TestUnavailableProviderIsRestricted(t *testing.T) {
	tr := NewTracker(Unavailable{})
	tr.Enable()

	r := tr.Reading()
	assert.Equal(t, AuthRestricted, r.Authorization)
	assert.Nil(t, r.Current)
	assert.ErrorIs(t, Unavailable{}.Start(&recordingSink{}), ErrUnavailable)
}
