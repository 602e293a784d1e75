package screen

import (
	"time"

	"drivequest/internal/domain"
	"drivequest/internal/selector"
)

type ScoreView struct {
	Value int           `json:"value"`
	Tone  selector.Tier `json:"tone"`
}

func scoreView(v int) ScoreView {
	return ScoreView{Value: v, Tone: selector.DashboardScoreTier(v)}
}

// StudentOverview is the header and metrics block shared by both dashboards.
type StudentOverview struct {
	ID               domain.StudentID    `json:"id"`
	Name             string              `json:"name"`
	Age              string              `json:"age"`
	State            string              `json:"state"`
	ExpectedTestDate *time.Time          `json:"expectedTestDate,omitempty"`
	Recent           ScoreView           `json:"recent"`
	Week             ScoreView           `json:"week"`
	Month            ScoreView           `json:"month"`
	Metrics          domain.Metrics      `json:"metrics"`
	Rating           selector.RatingView `json:"rating"`
}

func renderOverview(s domain.Student) StudentOverview {
	return StudentOverview{
		ID:               s.ID,
		Name:             s.Name,
		Age:              s.Age,
		State:            s.State,
		ExpectedTestDate: s.ExpectedTestDate,
		Recent:           scoreView(s.RecentDriveScore),
		Week:             scoreView(s.WeekScore),
		Month:            scoreView(s.MonthScore),
		Metrics:          s.Metrics,
		Rating:           selector.SafetyRatingView(s.Metrics.SafetyRating),
	}
}

type GoalView struct {
	ID          domain.GoalID `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Progress    int           `json:"progress"`
	Target      int           `json:"target"`
	Fraction    float64       `json:"fraction"`
	Color       string        `json:"color"`
}

// GoalDetailView adds the tip and the weekly practice chart.
type GoalDetailView struct {
	GoalView
	Tip      string                 `json:"tip"`
	Practice []selector.PracticeBar `json:"practice"`
}

func renderGoal(g domain.Goal) GoalView {
	return GoalView{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		Progress:    g.Progress,
		Target:      g.Target,
		Fraction:    selector.GoalFraction(g),
		Color:       g.Color,
	}
}

func renderGoals(goals []domain.Goal) []GoalView {
	out := make([]GoalView, len(goals))
	for i, g := range goals {
		out[i] = renderGoal(g)
	}
	return out
}

func renderGoalDetail(g domain.Goal, today time.Time) GoalDetailView {
	return GoalDetailView{
		GoalView: renderGoal(g),
		Tip:      g.Tip,
		Practice: selector.PracticeSeries(g, today),
	}
}

// CourseCard is a course row annotated with the student's recommendation flags.
type CourseCard struct {
	ID                domain.CourseID `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Duration          string          `json:"duration"`
	Icon              string          `json:"icon"`
	Color             string          `json:"color"`
	Image             string          `json:"image"`
	Category          domain.Category `json:"category"`
	AIRecommended     bool            `json:"aiRecommended"`
	ParentRecommended bool            `json:"parentRecommended"`
}

func courseCards(courses []domain.Course, s domain.Student) []CourseCard {
	out := make([]CourseCard, len(courses))
	for i, c := range courses {
		out[i] = CourseCard{
			ID:                c.ID,
			Title:             c.Title,
			Description:       c.Description,
			Duration:          c.Duration,
			Icon:              c.Icon,
			Color:             c.Color,
			Image:             c.Image,
			Category:          c.Category,
			AIRecommended:     s.AIRecommended[c.ID],
			ParentRecommended: s.ParentRecommended[c.ID],
		}
	}
	return out
}
