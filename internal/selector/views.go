package selector

import (
	"fmt"
	"time"

	"drivequest/internal/domain"
)

// RatingView is the display form of a safety rating.
type RatingView struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Tone        Tier   `json:"tone"`
}

var ratingViews = map[domain.SafetyRating]RatingView{
	domain.SafetySafe: {
		Label:       "Safe",
		Description: "Excellent habits. Keep up the safe driving!",
		Icon:        "checkmark.shield.fill",
		Tone:        TierBest,
	},
	domain.SafetyModerate: {
		Label:       "Moderate",
		Description: "Good driving with a few areas for improvement.",
		Icon:        "exclamationmark.shield.fill",
		Tone:        TierMid,
	},
	domain.SafetyRisky: {
		Label:       "Risky",
		Description: "Multiple safety concerns detected. Review incidents.",
		Icon:        "xmark.shield.fill",
		Tone:        TierLow,
	},
}

// SafetyRatingView maps a rating to its label. Unknown or empty ratings display as safe,
// matching the rating a new student starts with.
func SafetyRatingView(r domain.SafetyRating) RatingView {
	if v, ok := ratingViews[r]; ok {
		return v
	}
	return ratingViews[domain.SafetySafe]
}

// FocusArea is one card of the AI insights sheet.
type FocusArea struct {
	Title          string `json:"title"`
	Icon           string `json:"icon"`
	Value          string `json:"value"`
	Recommendation string `json:"recommendation"`
	Tone           Tier   `json:"tone"`
}

// FocusAreas lists the incident categories in fixed order. Tone is low when any event was
// recorded and best otherwise.
func FocusAreas(m domain.Metrics) []FocusArea {
	return []FocusArea{
		{
			Title:          "Hard Braking",
			Icon:           "exclamationmark.triangle.fill",
			Value:          events(m.HardBraking),
			Recommendation: "Increase following distance, especially in stop-and-go traffic. Aim for smoother, more gradual braking.",
			Tone:           incidentTone(m.HardBraking),
		},
		{
			Title:          "Rapid Acceleration",
			Icon:           "forward.fill",
			Value:          events(m.RapidAcceleration),
			Recommendation: "Apply gentle pressure to the accelerator. Smooth starts from a stoplight improve control and save fuel.",
			Tone:           incidentTone(m.RapidAcceleration),
		},
		{
			Title:          "Speeding",
			Icon:           "speedometer",
			Value:          events(m.SpeedingInstances),
			Recommendation: "Use GPS to stay aware of speed limits. A crucial step for safety and avoiding tickets.",
			Tone:           incidentTone(m.SpeedingInstances),
		},
	}
}

func events(n int) string {
	return fmt.Sprintf("%d events", n)
}

func incidentTone(n int) Tier {
	if n > 0 {
		return TierLow
	}
	return TierBest
}

// PracticeBar is one day of a goal's weekly practice chart.
type PracticeBar struct {
	Day   string `json:"day"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PracticeSeries returns seven daily buckets ending at today, oldest first. Days without
// practice have a zero count.
func PracticeSeries(g domain.Goal, today time.Time) []PracticeBar {
	counts := make(map[string]int, len(g.Practice))
	for _, p := range g.Practice {
		counts[p.Day] += p.Count
	}

	const days = 7
	bars := make([]PracticeBar, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-(days-1))
		key := day.Format(time.DateOnly)
		bars[i] = PracticeBar{
			Day:   key,
			Label: day.Format("Mon"),
			Count: counts[key],
		}
	}
	return bars
}
