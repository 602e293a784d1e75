package file

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"drivequest/internal/catalog"
	"drivequest/internal/domain"
	"drivequest/internal/validation"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed assets/catalog.yaml assets/seed.yaml
var assets embed.FS

const (
	defaultCatalogAsset = "assets/catalog.yaml"
	defaultSeedAsset    = "assets/seed.yaml"
)

// CatalogLoader reads the catalog document from a YAML file, or from the embedded
// default asset when path is empty.
type CatalogLoader struct {
	path string
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

func (l *CatalogLoader) Load(_ context.Context) (catalog.Document, error) {
	data, err := readAsset(l.path, defaultCatalogAsset)
	if err != nil {
		return catalog.Document{}, err
	}
	var doc catalog.Document
	if err := decodeStrict(data, &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("decode catalog %s: %w", l.source(), err)
	}
	return doc, nil
}

func (l *CatalogLoader) source() string {
	if l.path == "" {
		return "(embedded)"
	}
	return l.path
}

// SeedLoader reads the initial student list. Course recommendations are written as id
// lists in the asset and become sets on the student.
type SeedLoader struct {
	path  string
	newID func() string
}

func NewSeedLoader(path string) *SeedLoader {
	return &SeedLoader{path: path, newID: uuid.NewString}
}

type seedDocument struct {
	Students []seedStudent `yaml:"students"`
}

type seedStudent struct {
	ID                domain.StudentID      `yaml:"id"`
	Name              string                `yaml:"name"`
	Age               string                `yaml:"age"`
	State             string                `yaml:"state"`
	ExpectedTestDate  *time.Time            `yaml:"expectedTestDate"`
	Metrics           domain.Metrics        `yaml:"metrics"`
	RecentDriveScore  int                   `yaml:"recentDriveScore"`
	WeekScore         int                   `yaml:"weekScore"`
	MonthScore        int                   `yaml:"monthScore"`
	DriveHistory      []domain.DriveHistory `yaml:"driveHistory"`
	Goals             []domain.Goal         `yaml:"goals"`
	AIRecommended     []domain.CourseID     `yaml:"aiRecommended"`
	ParentRecommended []domain.CourseID     `yaml:"parentRecommended"`
}

func (s seedStudent) student() domain.Student {
	return domain.Student{
		ID:                s.ID,
		Name:              s.Name,
		Age:               s.Age,
		State:             s.State,
		ExpectedTestDate:  s.ExpectedTestDate,
		Metrics:           s.Metrics,
		RecentDriveScore:  s.RecentDriveScore,
		WeekScore:         s.WeekScore,
		MonthScore:        s.MonthScore,
		DriveHistory:      s.DriveHistory,
		Goals:             s.Goals,
		AIRecommended:     toSet(s.AIRecommended),
		ParentRecommended: toSet(s.ParentRecommended),
	}
}

func (l *SeedLoader) LoadSeed(_ context.Context) ([]domain.Student, error) {
	data, err := readAsset(l.path, defaultSeedAsset)
	if err != nil {
		return nil, err
	}
	var doc seedDocument
	if err := decodeStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	students := make([]domain.Student, 0, len(doc.Students))
	for i, raw := range doc.Students {
		s := raw.student()
		if err := validation.Struct(domain.NewStudent{Name: s.Name, Age: s.Age, State: s.State}); err != nil {
			return nil, fmt.Errorf("seed student %d: %w", i, err)
		}
		if err := validation.Struct(s.Metrics); err != nil {
			return nil, fmt.Errorf("seed student %q metrics: %w", s.Name, err)
		}
		if s.ID == "" {
			s.ID = domain.StudentID(l.newID())
		}
		for d := range s.DriveHistory {
			drive := &s.DriveHistory[d]
			if drive.ID == "" {
				drive.ID = domain.DriveID(l.newID())
			}
			for m := range drive.Maneuvers {
				if drive.Maneuvers[m].ID == "" {
					drive.Maneuvers[m].ID = l.newID()
				}
			}
		}
		for g := range s.Goals {
			goal := &s.Goals[g]
			if goal.ID == "" {
				goal.ID = domain.GoalID(l.newID())
			}
			if goal.Target <= 0 {
				return nil, fmt.Errorf("seed student %q goal %q: target must be positive", s.Name, goal.Title)
			}
			goal.Progress = min(max(goal.Progress, 0), goal.Target)
		}
		students = append(students, s)
	}
	return students, nil
}

func toSet(ids []domain.CourseID) map[domain.CourseID]bool {
	set := make(map[domain.CourseID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func readAsset(path, fallback string) ([]byte, error) {
	if path == "" {
		return assets.ReadFile(fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(out)
}
