package screen

import "drivequest/internal/domain"

// QuizState is the phase of a quiz run.
type QuizState string

const (
	QuizInProgress QuizState = "inProgress"
	QuizFinished   QuizState = "finished"
)

// AnswerMark tells the shell how to paint an answer once one has been picked.
type AnswerMark string

const (
	AnswerUnmarked  AnswerMark = ""
	AnswerCorrect   AnswerMark = "correct"
	AnswerIncorrect AnswerMark = "incorrect"
)

type AnswerView struct {
	Text string     `json:"text"`
	Mark AnswerMark `json:"mark,omitempty"`
}

type QuizView struct {
	Title        string       `json:"title"`
	State        QuizState    `json:"state"`
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	Prompt       string       `json:"prompt,omitempty"`
	Answers      []AnswerView `json:"answers,omitempty"`
	Selected     *int         `json:"selected,omitempty"`
	Explanation  string       `json:"explanation,omitempty"`
	CanAdvance   bool         `json:"canAdvance"`
	LastQuestion bool         `json:"lastQuestion"`
	Score        int          `json:"score"`
}

// Quiz runs one quiz. The first answer picked for a question is final and is scored
// immediately; Advance needs a pick and turns into Finished on the last question.
type Quiz struct {
	notifier
	quiz     domain.Quiz
	state    QuizState
	index    int
	selected *int
	score    int
}

// NewQuiz starts quiz at its first question. A quiz without questions is finished at once.
func NewQuiz(quiz domain.Quiz) *Quiz {
	q := &Quiz{quiz: quiz}
	q.reset()
	return q
}

// Select records an answer for the current question. Repeated or out-of-range picks are ignored.
func (q *Quiz) Select(answer int) {
	if q.state != QuizInProgress || q.selected != nil {
		return
	}
	question := q.quiz.Questions[q.index]
	if answer < 0 || answer >= len(question.Answers) {
		return
	}
	q.selected = &answer
	if answer == question.CorrectAnswer {
		q.score++
	}
	q.changed()
}

// Advance moves to the next question, or to Finished from the last one.
func (q *Quiz) Advance() {
	if q.state != QuizInProgress || q.selected == nil {
		return
	}
	q.selected = nil
	if q.index == len(q.quiz.Questions)-1 {
		q.state = QuizFinished
	} else {
		q.index++
	}
	q.changed()
}

// Reset restarts the run with a zero score.
func (q *Quiz) Reset() {
	q.reset()
	q.changed()
}

func (q *Quiz) reset() {
	q.index = 0
	q.selected = nil
	q.score = 0
	q.state = QuizInProgress
	if len(q.quiz.Questions) == 0 {
		q.state = QuizFinished
	}
}

func (q *Quiz) Render() QuizView {
	v := QuizView{
		Title: q.quiz.Title,
		State: q.state,
		Index: q.index,
		Total: len(q.quiz.Questions),
		Score: q.score,
	}
	if q.state == QuizFinished {
		return v
	}

	question := q.quiz.Questions[q.index]
	v.Prompt = question.Prompt
	v.LastQuestion = q.index == len(q.quiz.Questions)-1
	v.Answers = make([]AnswerView, len(question.Answers))
	for i, text := range question.Answers {
		v.Answers[i] = AnswerView{Text: text}
	}
	if q.selected != nil {
		sel := *q.selected
		v.Selected = &sel
		v.CanAdvance = true
		v.Explanation = question.Explanation
		v.Answers[question.CorrectAnswer].Mark = AnswerCorrect
		if sel != question.CorrectAnswer {
			v.Answers[sel].Mark = AnswerIncorrect
		}
	}
	return v
}
