package domain

// Category groups courses. CategoryAll is a filter value and never appears on a course.
type Category string

const (
	CategoryAll         Category = "all"
	CategoryCore        Category = "core"
	CategoryAdvanced    Category = "advanced"
	CategorySituational Category = "situational"
)

// Valid reports whether c may be assigned to a real course.
func (c Category) Valid() bool {
	switch c {
	case CategoryCore, CategoryAdvanced, CategorySituational:
		return true
	default:
		return false
	}
}

// ContentType tags a module content item.
type ContentType string

const (
	ContentVideo   ContentType = "video"
	ContentReading ContentType = "reading"
)

// ContentItem is one lesson inside a module.
type ContentItem struct {
	Title string      `json:"title" yaml:"title"`
	Type  ContentType `json:"type" yaml:"type"`
}

// Module is an ordered section of a course with an optional quiz reference.
type Module struct {
	Title  string        `json:"title" yaml:"title"`
	Items  []ContentItem `json:"items" yaml:"items"`
	QuizID string        `json:"quizId,omitempty" yaml:"quizId,omitempty"`
}

// Course is read-only catalog content.
type Course struct {
	ID          CourseID `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Duration    string   `json:"duration" yaml:"duration"`
	Icon        string   `json:"icon" yaml:"icon"`
	Color       string   `json:"color" yaml:"color"`
	Category    Category `json:"category" yaml:"category"`
	Image       string   `json:"image" yaml:"image"`
	Modules     []Module `json:"modules" yaml:"modules"`
}

// QuizQuestion models a multiple-choice question; CorrectAnswer indexes Answers.
type QuizQuestion struct {
	Prompt        string   `json:"prompt" yaml:"prompt"`
	Answers       []string `json:"answers" yaml:"answers"`
	CorrectAnswer int      `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string   `json:"explanation" yaml:"explanation"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string         `json:"id" yaml:"id"`
	Title     string         `json:"title" yaml:"title"`
	Questions []QuizQuestion `json:"questions" yaml:"questions"`
}
