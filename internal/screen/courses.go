package screen

import (
	"errors"

	"drivequest/internal/app"
	"drivequest/internal/domain"
	"drivequest/internal/selector"
)

// ComingSoon labels a course that has no quiz yet.
const ComingSoon = "Coming Soon"

type CourseDetailView struct {
	CourseCard
	Modules  []domain.Module `json:"modules"`
	HasQuiz  bool            `json:"hasQuiz"`
	QuizNote string          `json:"quizNote,omitempty"`
}

type CoursesView struct {
	Category          domain.Category   `json:"category"`
	Search            string            `json:"search"`
	Courses           []CourseCard      `json:"courses"`
	AIRecommended     []CourseCard      `json:"aiRecommended"`
	ParentRecommended []CourseCard      `json:"parentRecommended"`
	Course            *CourseDetailView `json:"course,omitempty"`
	Quiz              *QuizView         `json:"quiz,omitempty"`
}

// Courses is the student's course browser. Filtering is local state; the recommendation
// flags follow the store.
type Courses struct {
	notifier
	catalog  CourseCatalog
	focus    studentFocus
	cancel   func()
	category domain.Category
	search   string
	course   domain.CourseID
	quiz     *Quiz
}

func NewCourses(store StudentStore, catalog CourseCatalog, id domain.StudentID) *Courses {
	c := &Courses{
		catalog:  catalog,
		focus:    studentFocus{id: id, students: store.Students()},
		category: domain.CategoryAll,
	}
	c.cancel = store.Subscribe(func(snap app.Snapshot) {
		c.focus.students = snap.Students
		c.changed()
	})
	return c
}

func (c *Courses) Close() {
	c.cancel()
}

// SetCategory ignores values that are neither a real category nor CategoryAll.
func (c *Courses) SetCategory(cat domain.Category) {
	if cat != domain.CategoryAll && !cat.Valid() {
		return
	}
	c.category = cat
	c.changed()
}

func (c *Courses) SetSearch(text string) {
	c.search = text
	c.changed()
}

func (c *Courses) OpenCourse(id domain.CourseID) {
	c.course = id
	c.quiz = nil
	c.changed()
}

func (c *Courses) CloseCourse() {
	c.course = ""
	c.quiz = nil
	c.changed()
}

// StartQuiz opens the quiz of the open course. Courses without one stay on the detail page.
func (c *Courses) StartQuiz() {
	if c.course == "" {
		return
	}
	quiz, err := c.catalog.QuizForCourse(c.course)
	if err != nil {
		return
	}
	c.quiz = NewQuiz(quiz)
	c.quiz.OnChange(c.changed)
	c.changed()
}

// Quiz returns the running quiz, or nil.
func (c *Courses) Quiz() *Quiz { return c.quiz }

func (c *Courses) CloseQuiz() {
	c.quiz = nil
	c.changed()
}

func (c *Courses) Render() CoursesView {
	student, _ := c.focus.current()
	all := c.catalog.Courses()
	v := CoursesView{
		Category:          c.category,
		Search:            c.search,
		Courses:           courseCards(selector.FilterCourses(all, c.category, c.search), student),
		AIRecommended:     courseCards(selector.RecommendedCoursesFor(student, all, domain.RecommendedByAI), student),
		ParentRecommended: courseCards(selector.RecommendedCoursesFor(student, all, domain.RecommendedByParent), student),
	}
	for _, course := range all {
		if course.ID != c.course {
			continue
		}
		detail := CourseDetailView{
			CourseCard: courseCards([]domain.Course{course}, student)[0],
			Modules:    course.Modules,
		}
		_, err := c.catalog.QuizForCourse(course.ID)
		detail.HasQuiz = err == nil
		if errors.Is(err, domain.ErrQuizNotFound) {
			detail.QuizNote = ComingSoon
		}
		v.Course = &detail
	}
	if c.quiz != nil {
		q := c.quiz.Render()
		v.Quiz = &q
	}
	return v
}
