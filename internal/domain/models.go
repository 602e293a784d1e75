package domain

import "time"

type (
	StudentID string
	DriveID   string
	GoalID    string
	CourseID  string
)

// SafetyRating is the coarse classification attached to a metrics snapshot.
type SafetyRating string

const (
	SafetySafe     SafetyRating = "safe"
	SafetyModerate SafetyRating = "moderate"
	SafetyRisky    SafetyRating = "risky"
)

// Metrics is an immutable telemetry snapshot; RecordDrive replaces it wholesale.
type Metrics struct {
	AverageSpeed      float64      `json:"averageSpeed" yaml:"averageSpeed" validate:"gte=0"`
	DistanceDriven    float64      `json:"distanceDriven" yaml:"distanceDriven" validate:"gte=0"`
	HardBraking       int          `json:"hardBraking" yaml:"hardBraking" validate:"gte=0"`
	RapidAcceleration int          `json:"rapidAcceleration" yaml:"rapidAcceleration" validate:"gte=0"`
	SpeedingInstances int          `json:"speedingInstances" yaml:"speedingInstances" validate:"gte=0"`
	SafetyRating      SafetyRating `json:"safetyRating" yaml:"safetyRating" validate:"omitempty,oneof=safe moderate risky"`
	DriveDuration     int          `json:"driveDuration" yaml:"driveDuration" validate:"gte=0"` // minutes
	TotalHoursDriven  float64      `json:"totalHoursDriven" yaml:"totalHoursDriven" validate:"gte=0"`
}

// PerformanceBreakdown holds five independent 0..100 sub-scores for a drive.
type PerformanceBreakdown struct {
	Control int `json:"control" yaml:"control" validate:"gte=0,lte=100"`
	Speed   int `json:"speed" yaml:"speed" validate:"gte=0,lte=100"`
	Aware   int `json:"aware" yaml:"aware" validate:"gte=0,lte=100"`
	Follow  int `json:"follow" yaml:"follow" validate:"gte=0,lte=100"`
	Smooth  int `json:"smooth" yaml:"smooth" validate:"gte=0,lte=100"`
}

// ManeuverAnalysis is graded commentary on one skill within a drive.
type ManeuverAnalysis struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Icon        string `json:"icon" yaml:"icon"`
	Grade       string `json:"grade" yaml:"grade"`
	Description string `json:"description" yaml:"description"`
}

// DriveHistory summarizes one completed trip. Date is a display label, not a timestamp.
type DriveHistory struct {
	ID        DriveID               `json:"id" yaml:"id"`
	Date      string                `json:"date" yaml:"date"`
	Distance  float64               `json:"distance" yaml:"distance"`
	Score     int                   `json:"score" yaml:"score"`
	Breakdown *PerformanceBreakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
	Maneuvers []ManeuverAnalysis    `json:"maneuvers" yaml:"maneuvers"`
}

// PracticeDay counts goal practice on a single calendar day (YYYY-MM-DD).
type PracticeDay struct {
	Day   string `json:"day" yaml:"day"`
	Count int    `json:"count" yaml:"count"`
}

// Goal is a parent-assigned practice target. The store clamps Progress to [0, Target].
type Goal struct {
	ID          GoalID        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Tip         string        `json:"tip" yaml:"tip"`
	Progress    int           `json:"progress" yaml:"progress"`
	Target      int           `json:"target" yaml:"target"`
	Color       string        `json:"color" yaml:"color"`
	Practice    []PracticeDay `json:"practice,omitempty" yaml:"practice,omitempty"`
}

// RecommendationKind selects which recommendation set a command targets.
type RecommendationKind string

const (
	RecommendedByAI     RecommendationKind = "ai"
	RecommendedByParent RecommendationKind = "parent"
)

// Student is a monitored teen driver profile.
type Student struct {
	ID                StudentID         `json:"id" yaml:"id"`
	Name              string            `json:"name" yaml:"name"`
	Age               string            `json:"age" yaml:"age"`
	State             string            `json:"state" yaml:"state"`
	ExpectedTestDate  *time.Time        `json:"expectedTestDate,omitempty" yaml:"expectedTestDate,omitempty"`
	Metrics           Metrics           `json:"metrics" yaml:"metrics"`
	RecentDriveScore  int               `json:"recentDriveScore" yaml:"recentDriveScore"`
	WeekScore         int               `json:"weekScore" yaml:"weekScore"`
	MonthScore        int               `json:"monthScore" yaml:"monthScore"`
	DriveHistory      []DriveHistory    `json:"driveHistory" yaml:"driveHistory"`
	Goals             []Goal            `json:"goals" yaml:"goals"`
	AIRecommended     map[CourseID]bool `json:"aiRecommended" yaml:"aiRecommended"`
	ParentRecommended map[CourseID]bool `json:"parentRecommended" yaml:"parentRecommended"`
}

// Recommended returns the recommendation set for kind. The map is nil for unknown kinds.
func (s *Student) Recommended(kind RecommendationKind) map[CourseID]bool {
	switch kind {
	case RecommendedByAI:
		return s.AIRecommended
	case RecommendedByParent:
		return s.ParentRecommended
	default:
		return nil
	}
}

// Goal returns a pointer into the student's goal list.
func (s *Student) Goal(id GoalID) *Goal {
	for i := range s.Goals {
		if s.Goals[i].ID == id {
			return &s.Goals[i]
		}
	}
	return nil
}

// Clone returns a deep copy so callers can never reach the store's own slices or maps.
func (s Student) Clone() Student {
	out := s
	if s.ExpectedTestDate != nil {
		d := *s.ExpectedTestDate
		out.ExpectedTestDate = &d
	}
	out.DriveHistory = make([]DriveHistory, len(s.DriveHistory))
	for i, d := range s.DriveHistory {
		if d.Breakdown != nil {
			b := *d.Breakdown
			d.Breakdown = &b
		}
		d.Maneuvers = append([]ManeuverAnalysis(nil), d.Maneuvers...)
		out.DriveHistory[i] = d
	}
	out.Goals = make([]Goal, len(s.Goals))
	for i, g := range s.Goals {
		g.Practice = append([]PracticeDay(nil), g.Practice...)
		out.Goals[i] = g
	}
	out.AIRecommended = cloneSet(s.AIRecommended)
	out.ParentRecommended = cloneSet(s.ParentRecommended)
	return out
}

func cloneSet(in map[CourseID]bool) map[CourseID]bool {
	out := make(map[CourseID]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

// NewStudent is the input of the add-student command.
type NewStudent struct {
	Name             string `validate:"required"`
	Age              string `validate:"required"`
	State            string `validate:"required"`
	ExpectedTestDate *time.Time
}

// NewGoal is the input of the assign-goal command.
type NewGoal struct {
	Title       string `validate:"required"`
	Description string
	Tip         string
	Target      int `validate:"gt=0"`
	Color       string
}

// NewDrive is the input of the record-drive command.
type NewDrive struct {
	Date      string  `validate:"required"`
	Distance  float64 `validate:"gte=0"`
	Score     int     `validate:"gte=0,lte=100"`
	Breakdown *PerformanceBreakdown
	Maneuvers []ManeuverAnalysis
	Metrics   Metrics
}

// Role is the outcome of a credential check.
type Role string

const (
	RoleStudent  Role = "student"
	RoleParent   Role = "parent"
	RoleRejected Role = "rejected"
)
