package screen

import "drivequest/internal/location"

const (
	defaultLatitude  = 33.7490
	defaultLongitude = -84.3880

	overviewSpan = 0.05
	followSpan   = 0.005
)

var statusLabels = map[location.Status]struct{ label, icon string }{
	location.StatusDriving: {"Driving", "car.fill"},
	location.StatusWalking: {"Walking", "figure.walk"},
	location.StatusParked:  {"Parked", "parkingsign"},
}

type Region struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Span      float64 `json:"span"`
}

// Marker is the live position of the tracked device.
type Marker struct {
	Name        string          `json:"name"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	SpeedMPH    int             `json:"speedMph"`
	Status      location.Status `json:"status"`
	StatusLabel string          `json:"statusLabel"`
	Icon        string          `json:"icon"`
	Active      bool            `json:"active"`
}

type MapsView struct {
	Enabled       bool                   `json:"enabled"`
	Authorization location.Authorization `json:"authorization"`
	Region        Region                 `json:"region"`
	Marker        *Marker                `json:"marker,omitempty"`
	Locating      bool                   `json:"locating"`
	AverageMPH    float64                `json:"averageMph"`
	Moving        bool                   `json:"moving"`
	Alert         string                 `json:"alert,omitempty"`
}

// Maps renders the location tab from the tracker.
type Maps struct {
	notifier
	tracker LocationTracker
	cancel  func()
	reading location.Reading
	alert   bool
}

func NewMaps(tracker LocationTracker) *Maps {
	m := &Maps{tracker: tracker, reading: tracker.Reading()}
	m.cancel = tracker.Subscribe(func(r location.Reading) {
		m.reading = r
		m.changed()
	})
	return m
}

func (m *Maps) Close() {
	m.cancel()
}

// LocateMe recenters on the live fix, or explains why there is none.
func (m *Maps) LocateMe() {
	switch {
	case !m.reading.Enabled, m.reading.Authorization == location.AuthDenied, m.reading.Authorization == location.AuthRestricted:
		m.alert = true
		m.changed()
	case m.reading.Authorization == location.AuthUndetermined:
		m.tracker.Enable()
	}
}

func (m *Maps) DismissAlert() {
	m.alert = false
	m.changed()
}

func (m *Maps) Render() MapsView {
	r := m.reading
	v := MapsView{
		Enabled:       r.Enabled,
		Authorization: r.Authorization,
		Region:        Region{Latitude: defaultLatitude, Longitude: defaultLongitude, Span: overviewSpan},
		AverageMPH:    r.AverageMPH,
		Moving:        r.Moving,
	}
	if m.alert {
		if !r.Enabled {
			v.Alert = "Location tracking is disabled in app settings. Please enable it in the Settings tab to see your live location."
		} else {
			v.Alert = "Please enable location services in System Settings to track location."
		}
	}
	if !r.Enabled {
		return v
	}
	if r.Current == nil {
		v.Locating = true
		return v
	}

	label := statusLabels[r.Status]
	v.Region = Region{Latitude: r.Current.Latitude, Longitude: r.Current.Longitude, Span: followSpan}
	v.Marker = &Marker{
		Name:        "Me",
		Latitude:    r.Current.Latitude,
		Longitude:   r.Current.Longitude,
		SpeedMPH:    int(max(0, location.MPH(r.Current.Speed))),
		Status:      r.Status,
		StatusLabel: label.label,
		Icon:        label.icon,
		Active:      true,
	}
	return v
}
