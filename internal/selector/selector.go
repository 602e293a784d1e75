// Package selector holds pure functions that turn store snapshots and catalog content into
// presentation-ready values. None of them fail; missing data yields an empty slice or a
// defined default.
package selector

import (
	"strings"

	"drivequest/internal/domain"
)

// Tier is a three-level color classification of a 0..100 score.
type Tier string

const (
	TierBest Tier = "best"
	TierMid  Tier = "mid"
	TierLow  Tier = "low"
)

// DashboardScoreTier classifies scores on dashboards and lists: best 90+, mid 70-89.
func DashboardScoreTier(score int) Tier {
	switch {
	case score >= 90:
		return TierBest
	case score >= 70:
		return TierMid
	default:
		return TierLow
	}
}

// TripScoreTier classifies the score ring of a single drive: best 90+, mid 80-89.
// Scores 70-79 are mid on dashboards but low here.
func TripScoreTier(score int) Tier {
	switch {
	case score >= 90:
		return TierBest
	case score >= 80:
		return TierMid
	default:
		return TierLow
	}
}

// GradeClass buckets a letter grade such as "B+".
type GradeClass string

const (
	GradeA     GradeClass = "A"
	GradeB     GradeClass = "B"
	GradeC     GradeClass = "C"
	GradeOther GradeClass = "other"
)

// GradeTier classifies by the first character only; lowercase grades are "other".
func GradeTier(grade string) GradeClass {
	if grade == "" {
		return GradeOther
	}
	switch grade[0] {
	case 'A':
		return GradeA
	case 'B':
		return GradeB
	case 'C':
		return GradeC
	default:
		return GradeOther
	}
}

// FilterCourses applies the category filter, then a case-insensitive substring search over
// title and description. CategoryAll and an empty search both pass everything.
func FilterCourses(courses []domain.Course, category domain.Category, search string) []domain.Course {
	needle := strings.ToLower(search)
	out := make([]domain.Course, 0, len(courses))
	for _, c := range courses {
		if category != domain.CategoryAll && c.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Title), needle) &&
			!strings.Contains(strings.ToLower(c.Description), needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// RecommendedCoursesFor joins the student's recommendation set against courses, in catalog order.
func RecommendedCoursesFor(student domain.Student, courses []domain.Course, kind domain.RecommendationKind) []domain.Course {
	set := student.Recommended(kind)
	out := make([]domain.Course, 0, len(set))
	for _, c := range courses {
		if set[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// LicenseProgress is hours/required clamped to [0, 1]. A non-positive requirement counts as met.
func LicenseProgress(hours, required float64) float64 {
	if required <= 0 {
		return 1
	}
	return min(max(hours/required, 0), 1)
}

// HoursRemaining never goes below zero.
func HoursRemaining(hours, required float64) float64 {
	return max(required-hours, 0)
}

// BreakdownOrZero applies the all-zero default for drives recorded without a breakdown.
func BreakdownOrZero(b *domain.PerformanceBreakdown) domain.PerformanceBreakdown {
	if b == nil {
		return domain.PerformanceBreakdown{}
	}
	return *b
}

// GoalFraction is progress/target for progress bars, clamped to [0, 1].
func GoalFraction(g domain.Goal) float64 {
	if g.Target <= 0 {
		return 0
	}
	return min(max(float64(g.Progress)/float64(g.Target), 0), 1)
}
