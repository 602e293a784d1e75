package catalog

import (
	"context"
	"fmt"
	"strings"

	"drivequest/internal/domain"
)

// Document is the externalized course/quiz asset as stored on disk or in the database.
type Document struct {
	Courses []domain.Course `json:"courses" yaml:"courses"`
	Quizzes []domain.Quiz   `json:"quizzes" yaml:"quizzes"`
}

// Loader fetches the catalog document from a backing store.
type Loader interface {
	Load(ctx context.Context) (Document, error)
}

// Catalog is the validated, read-only course and quiz set. It is built once at startup.
type Catalog struct {
	courses     []domain.Course
	courseIndex map[domain.CourseID]int
	quizzes     map[string]domain.Quiz
}

// New validates doc and builds an immutable catalog from a private copy of it.
func New(doc Document) (*Catalog, error) {
	c := &Catalog{
		courses:     make([]domain.Course, 0, len(doc.Courses)),
		courseIndex: make(map[domain.CourseID]int, len(doc.Courses)),
		quizzes:     make(map[string]domain.Quiz, len(doc.Quizzes)),
	}

	for _, q := range doc.Quizzes {
		if strings.TrimSpace(q.ID) == "" {
			return nil, invalid("quiz %q has no id", q.Title)
		}
		if _, dup := c.quizzes[q.ID]; dup {
			return nil, invalid("duplicate quiz id %q", q.ID)
		}
		if len(q.Questions) == 0 {
			return nil, invalid("quiz %q has no questions", q.ID)
		}
		for i, question := range q.Questions {
			if len(question.Answers) == 0 {
				return nil, invalid("quiz %q question %d has no answers", q.ID, i)
			}
			if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Answers) {
				return nil, invalid("quiz %q question %d: correct answer %d out of range [0,%d)",
					q.ID, i, question.CorrectAnswer, len(question.Answers))
			}
		}
		c.quizzes[q.ID] = cloneQuiz(q)
	}

	for _, course := range doc.Courses {
		if strings.TrimSpace(string(course.ID)) == "" {
			return nil, invalid("course %q has no id", course.Title)
		}
		if _, dup := c.courseIndex[course.ID]; dup {
			return nil, invalid("duplicate course id %q", course.ID)
		}
		if !course.Category.Valid() {
			return nil, invalid("course %q has category %q", course.ID, course.Category)
		}
		for _, m := range course.Modules {
			if m.QuizID == "" {
				continue
			}
			if _, ok := c.quizzes[m.QuizID]; !ok {
				return nil, invalid("course %q module %q references unknown quiz %q", course.ID, m.Title, m.QuizID)
			}
		}
		c.courseIndex[course.ID] = len(c.courses)
		c.courses = append(c.courses, cloneCourse(course))
	}

	return c, nil
}

// Load fetches a document through loader and validates it.
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	doc, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(doc)
}

// Courses returns every course in catalog order.
func (c *Catalog) Courses() []domain.Course {
	out := make([]domain.Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = cloneCourse(course)
	}
	return out
}

func (c *Catalog) Course(id domain.CourseID) (domain.Course, error) {
	i, ok := c.courseIndex[id]
	if !ok {
		return domain.Course{}, fmt.Errorf("%w: %s", domain.ErrCourseNotFound, id)
	}
	return cloneCourse(c.courses[i]), nil
}

func (c *Catalog) Quiz(id string) (domain.Quiz, error) {
	q, ok := c.quizzes[id]
	if !ok {
		return domain.Quiz{}, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, id)
	}
	return cloneQuiz(q), nil
}

// QuizForCourse returns the first quiz referenced by the course's modules.
func (c *Catalog) QuizForCourse(id domain.CourseID) (domain.Quiz, error) {
	course, err := c.Course(id)
	if err != nil {
		return domain.Quiz{}, err
	}
	for _, m := range course.Modules {
		if m.QuizID != "" {
			return c.Quiz(m.QuizID)
		}
	}
	return domain.Quiz{}, fmt.Errorf("%w: course %s has no quiz", domain.ErrQuizNotFound, id)
}

// Len is the number of courses.
func (c *Catalog) Len() int {
	return len(c.courses)
}

// QuizCount is the number of quizzes.
func (c *Catalog) QuizCount() int {
	return len(c.quizzes)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrCatalogInvalid, fmt.Sprintf(format, args...))
}

func cloneCourse(c domain.Course) domain.Course {
	modules := make([]domain.Module, len(c.Modules))
	for i, m := range c.Modules {
		m.Items = append([]domain.ContentItem(nil), m.Items...)
		modules[i] = m
	}
	c.Modules = modules
	return c
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Answers = append([]string(nil), question.Answers...)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
