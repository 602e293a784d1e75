package screen

import (
	"drivequest/internal/domain"
	"drivequest/internal/selector"
)

type ManeuverView struct {
	Name        string              `json:"name"`
	Icon        string              `json:"icon"`
	Grade       string              `json:"grade"`
	GradeClass  selector.GradeClass `json:"gradeClass"`
	Description string              `json:"description"`
}

// DriveSummary is one row of a drive list.
type DriveSummary struct {
	ID       domain.DriveID `json:"id"`
	Date     string         `json:"date"`
	Distance float64        `json:"distance"`
	Score    int            `json:"score"`
	Tone     selector.Tier  `json:"tone"`
}

// DriveDetailView is the trip report of one drive.
type DriveDetailView struct {
	DriveSummary
	Breakdown domain.PerformanceBreakdown `json:"breakdown"`
	Maneuvers []ManeuverView              `json:"maneuvers"`
}

func summarizeDrive(d domain.DriveHistory) DriveSummary {
	return DriveSummary{
		ID:       d.ID,
		Date:     d.Date,
		Distance: d.Distance,
		Score:    d.Score,
		Tone:     selector.DashboardScoreTier(d.Score),
	}
}

func summarizeDrives(drives []domain.DriveHistory, limit int) []DriveSummary {
	if limit >= 0 && len(drives) > limit {
		drives = drives[:limit]
	}
	out := make([]DriveSummary, len(drives))
	for i, d := range drives {
		out[i] = summarizeDrive(d)
	}
	return out
}

// RenderDriveDetail builds the trip report. The score ring uses the trip tier table and a
// drive recorded without a breakdown shows all zeros.
func RenderDriveDetail(d domain.DriveHistory) DriveDetailView {
	v := DriveDetailView{
		DriveSummary: summarizeDrive(d),
		Breakdown:    selector.BreakdownOrZero(d.Breakdown),
		Maneuvers:    make([]ManeuverView, len(d.Maneuvers)),
	}
	v.Tone = selector.TripScoreTier(d.Score)
	for i, m := range d.Maneuvers {
		v.Maneuvers[i] = ManeuverView{
			Name:        m.Name,
			Icon:        m.Icon,
			Grade:       m.Grade,
			GradeClass:  selector.GradeTier(m.Grade),
			Description: m.Description,
		}
	}
	return v
}

func findDrive(s domain.Student, id domain.DriveID) (domain.DriveHistory, bool) {
	for _, d := range s.DriveHistory {
		if d.ID == id {
			return d, true
		}
	}
	return domain.DriveHistory{}, false
}
