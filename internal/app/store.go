package app

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"drivequest/internal/domain"
	"drivequest/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// practiceDays bounds the per-goal practice log; older days never reach the display series.
const practiceDays = 7

// SeedLoader supplies the initial student list at process start.
type SeedLoader interface {
	LoadSeed(ctx context.Context) ([]domain.Student, error)
}

// Snapshot is what subscribers receive after each applied command.
// Students are deep copies shared by all listeners of one round; treat them as read-only.
type Snapshot struct {
	Version  uint64
	Students []domain.Student
}

// Listener is invoked synchronously, on the goroutine that issued the command.
type Listener func(Snapshot)

// Store is the single source of truth for the mutable student list.
type Store struct {
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
	metrics *Metrics

	mu       sync.Mutex
	version  uint64
	students []domain.Student

	subMu       sync.Mutex
	subscribers []*subscription
}

type subscription struct {
	listener Listener
	active   atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed dangling references.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches command counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides time.Now for deterministic practice logs in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// NewStore builds a store seeded with copies of the given students.
func NewStore(seed []domain.Student, opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.students = make([]domain.Student, 0, len(seed))
	for _, st := range seed {
		st = st.Clone()
		if st.ID == "" {
			st.ID = domain.StudentID(s.newID())
		}
		s.students = append(s.students, st)
	}
	s.metrics.setStudents(len(s.students))
	return s
}

// NewStoreFromLoader loads seed data through loader and builds the store.
func NewStoreFromLoader(ctx context.Context, loader SeedLoader, opts ...Option) (*Store, error) {
	seed, err := loader.LoadSeed(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(seed, opts...), nil
}

// Students returns a read-only copy of the current list, in insertion order.
func (s *Store) Students() []domain.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked().Students
}

// Student looks up a single student by id.
func (s *Store) Student(id domain.StudentID) (domain.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.students[i].Clone(), true
	}
	return domain.Student{}, false
}

// Version increments once per applied command.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// AddStudent appends a new student with zeroed metrics and empty collections.
func (s *Store) AddStudent(in domain.NewStudent) (domain.StudentID, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Age = strings.TrimSpace(in.Age)
	in.State = strings.TrimSpace(in.State)
	if err := validation.Struct(in); err != nil {
		s.metrics.command("add_student", outcomeRejected)
		return "", err
	}

	student := domain.Student{
		ID:                domain.StudentID(s.newID()),
		Name:              in.Name,
		Age:               in.Age,
		State:             in.State,
		Metrics:           domain.Metrics{SafetyRating: domain.SafetySafe},
		DriveHistory:      []domain.DriveHistory{},
		Goals:             []domain.Goal{},
		AIRecommended:     map[domain.CourseID]bool{},
		ParentRecommended: map[domain.CourseID]bool{},
	}
	if in.ExpectedTestDate != nil {
		d := *in.ExpectedTestDate
		student.ExpectedTestDate = &d
	}

	s.mu.Lock()
	s.students = append(s.students, student)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("add_student", outcomeApplied)
	s.notify(snap)
	return student.ID, nil
}

// RemoveStudent deletes the student with id. Absent ids are a no-op.
func (s *Store) RemoveStudent(id domain.StudentID) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("remove student: already absent", zap.String("student_id", string(id)))
		s.metrics.command("remove_student", outcomeNoop)
		return
	}
	s.students = append(s.students[:i], s.students[i+1:]...)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("remove_student", outcomeApplied)
	s.notify(snap)
}

// AdjustGoalProgress adds delta to the goal's progress, clamped to [0, target].
// Unresolved ids are logged and ignored.
func (s *Store) AdjustGoalProgress(studentID domain.StudentID, goalID domain.GoalID, delta int) {
	s.mu.Lock()
	goal := s.goalLocked("adjust goal progress", studentID, goalID)
	if goal == nil {
		s.mu.Unlock()
		s.metrics.command("adjust_goal_progress", outcomeNoop)
		return
	}

	next := clamp(saturatingAdd(goal.Progress, delta, goal.Target), 0, goal.Target)
	applied := next - goal.Progress
	if applied == 0 {
		s.mu.Unlock()
		s.metrics.command("adjust_goal_progress", outcomeNoop)
		return
	}
	goal.Progress = next
	recordPractice(goal, s.now(), applied)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("adjust_goal_progress", outcomeApplied)
	s.notify(snap)
}

// ToggleRecommendation adds courseID to the kind's set when absent and removes it when present.
func (s *Store) ToggleRecommendation(studentID domain.StudentID, courseID domain.CourseID, kind domain.RecommendationKind) {
	s.mu.Lock()
	i := s.indexLocked(studentID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn("toggle recommendation: student not found",
			zap.String("student_id", string(studentID)),
			zap.String("course_id", string(courseID)),
		)
		s.metrics.command("toggle_recommendation", outcomeNoop)
		return
	}

	student := &s.students[i]
	set := student.Recommended(kind)
	if set == nil {
		if kind != domain.RecommendedByAI && kind != domain.RecommendedByParent {
			s.mu.Unlock()
			s.logger.Warn("toggle recommendation: unknown kind", zap.String("kind", string(kind)))
			s.metrics.command("toggle_recommendation", outcomeNoop)
			return
		}
		set = map[domain.CourseID]bool{}
		if kind == domain.RecommendedByAI {
			student.AIRecommended = set
		} else {
			student.ParentRecommended = set
		}
	}

	if set[courseID] {
		delete(set, courseID)
	} else {
		set[courseID] = true
	}
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("toggle_recommendation", outcomeApplied)
	s.notify(snap)
}

// RecordDrive prepends a drive, replaces the metrics snapshot and updates the recent score.
func (s *Store) RecordDrive(studentID domain.StudentID, in domain.NewDrive) (domain.DriveID, error) {
	if err := validation.Struct(in); err != nil {
		s.metrics.command("record_drive", outcomeRejected)
		return "", err
	}

	drive := domain.DriveHistory{
		ID:        domain.DriveID(s.newID()),
		Date:      in.Date,
		Distance:  in.Distance,
		Score:     in.Score,
		Maneuvers: append([]domain.ManeuverAnalysis(nil), in.Maneuvers...),
	}
	if in.Breakdown != nil {
		b := *in.Breakdown
		drive.Breakdown = &b
	}
	for i := range drive.Maneuvers {
		if drive.Maneuvers[i].ID == "" {
			drive.Maneuvers[i].ID = s.newID()
		}
	}

	s.mu.Lock()
	i := s.indexLocked(studentID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn("record drive: student not found", zap.String("student_id", string(studentID)))
		s.metrics.command("record_drive", outcomeNoop)
		return "", nil
	}
	student := &s.students[i]
	student.DriveHistory = append([]domain.DriveHistory{drive}, student.DriveHistory...)
	student.Metrics = in.Metrics
	student.RecentDriveScore = in.Score
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("record_drive", outcomeApplied)
	s.notify(snap)
	return drive.ID, nil
}

// AssignGoal adds a parent-assigned goal with zero progress.
func (s *Store) AssignGoal(studentID domain.StudentID, in domain.NewGoal) (domain.GoalID, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		s.metrics.command("assign_goal", outcomeRejected)
		return "", err
	}

	goal := domain.Goal{
		ID:          domain.GoalID(s.newID()),
		Title:       in.Title,
		Description: in.Description,
		Tip:         in.Tip,
		Target:      in.Target,
		Color:       in.Color,
	}

	s.mu.Lock()
	i := s.indexLocked(studentID)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn("assign goal: student not found", zap.String("student_id", string(studentID)))
		s.metrics.command("assign_goal", outcomeNoop)
		return "", nil
	}
	s.students[i].Goals = append(s.students[i].Goals, goal)
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("assign_goal", outcomeApplied)
	s.notify(snap)
	return goal.ID, nil
}

// UpdateGoalTip replaces the goal's "why it matters" text.
func (s *Store) UpdateGoalTip(studentID domain.StudentID, goalID domain.GoalID, tip string) {
	s.mu.Lock()
	goal := s.goalLocked("update goal tip", studentID, goalID)
	if goal == nil || goal.Tip == tip {
		s.mu.Unlock()
		s.metrics.command("update_goal_tip", outcomeNoop)
		return
	}
	goal.Tip = tip
	snap := s.commitLocked()
	s.mu.Unlock()

	s.metrics.command("update_goal_tip", outcomeApplied)
	s.notify(snap)
}

// Subscribe registers l for every subsequent applied command. The returned cancel is
// idempotent and safe to call from inside a notification.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	sub := &subscription{listener: l}
	sub.active.Store(true)

	s.subMu.Lock()
	s.subscribers = append(s.subscribers, sub)
	s.subMu.Unlock()

	return func() {
		if !sub.active.Swap(false) {
			return
		}
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, other := range s.subscribers {
			if other == sub {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	subs := append([]*subscription(nil), s.subscribers...)
	s.subMu.Unlock()

	for _, sub := range subs {
		if !sub.active.Load() {
			continue
		}
		sub.listener(snap)
		s.metrics.notification()
	}
}

func (s *Store) commitLocked() Snapshot {
	s.version++
	s.metrics.setStudents(len(s.students))
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	students := make([]domain.Student, len(s.students))
	for i := range s.students {
		students[i] = s.students[i].Clone()
	}
	return Snapshot{Version: s.version, Students: students}
}

func (s *Store) indexLocked(id domain.StudentID) int {
	for i := range s.students {
		if s.students[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) goalLocked(op string, studentID domain.StudentID, goalID domain.GoalID) *domain.Goal {
	i := s.indexLocked(studentID)
	if i < 0 {
		s.logger.Warn(op+": student not found",
			zap.String("student_id", string(studentID)),
			zap.String("goal_id", string(goalID)),
		)
		return nil
	}
	goal := s.students[i].Goal(goalID)
	if goal == nil {
		s.logger.Warn(op+": goal not found",
			zap.String("student_id", string(studentID)),
			zap.String("goal_id", string(goalID)),
		)
	}
	return goal
}

// recordPractice folds an applied delta into today's bucket and keeps the log bounded.
func recordPractice(goal *domain.Goal, now time.Time, applied int) {
	day := now.Format(time.DateOnly)
	n := len(goal.Practice)
	if n > 0 && goal.Practice[n-1].Day == day {
		goal.Practice[n-1].Count = max(0, goal.Practice[n-1].Count+applied)
	} else if applied > 0 {
		goal.Practice = append(goal.Practice, domain.PracticeDay{Day: day, Count: applied})
	}
	if len(goal.Practice) > practiceDays {
		goal.Practice = append([]domain.PracticeDay(nil), goal.Practice[len(goal.Practice)-practiceDays:]...)
	}
}

// saturatingAdd returns progress+delta, saturating at 0 and target instead of overflowing.
func saturatingAdd(progress, delta, target int) int {
	switch {
	case delta > 0 && delta > target-progress:
		return target
	case delta < 0 && delta < -progress:
		return 0
	default:
		return progress + delta
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
