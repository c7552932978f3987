package grading

import (
	"math"

	"github.com/mind-engage/mindengage-scorm/internal/course"
	"github.com/mind-engage/mindengage-scorm/internal/scorm/hostapi"
)

// PassThreshold is the minimum ratio of fully correct questions for a pass.
const PassThreshold = 0.7

// Strategy decides whether a response to one question is fully correct.
type Strategy interface {
	Correct(q course.Question, chosen []int64) bool
}

// Grader routes by question type to the matching Strategy.
type Grader interface {
	Correct(q course.Question, chosen []int64) bool
}

type defaultGrader struct {
	strategies map[course.QuestionType]Strategy
}

func (g *defaultGrader) Correct(q course.Question, chosen []int64) bool {
	s, ok := g.strategies[q.Type]
	if !ok {
		return false
	}
	return s.Correct(q, chosen)
}

// NewDefaultGrader installs the single and multiple choice strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[course.QuestionType]Strategy{
			course.QuestionSingle:   singleStrategy{},
			course.QuestionMultiple: multipleStrategy{},
		},
	}
}

// --- Strategies ---

// A single question with several options flagged correct can never be
// answered correctly; that is accepted as authored.
type singleStrategy struct{}

func (singleStrategy) Correct(q course.Question, chosen []int64) bool {
	if len(chosen) > 1 {
		chosen = chosen[len(chosen)-1:]
	}
	return setEqual(correctSet(q), toSet(chosen))
}

type multipleStrategy struct{}

func (multipleStrategy) Correct(q course.Question, chosen []int64) bool {
	return setEqual(correctSet(q), toSet(chosen))
}

// Result is the outcome of grading a whole quiz.
type Result struct {
	Correct     int            `json:"correct"`
	Total       int            `json:"total"`
	Percent     int            `json:"percent"`
	Passed      bool           `json:"passed"`
	Status      string         `json:"status"`
	PerQuestion map[int64]bool `json:"per_question"`
}

// Score grades answers (question id to chosen option ids) against quiz.
// Unanswered questions count as wrong; a quiz without questions scores 100.
func Score(g Grader, quiz course.Quiz, answers map[int64][]int64) Result {
	res := Result{Total: len(quiz.Questions), PerQuestion: make(map[int64]bool, len(quiz.Questions))}
	for _, q := range quiz.Questions {
		ok := g.Correct(q, answers[q.ID])
		res.PerQuestion[q.ID] = ok
		if ok {
			res.Correct++
		}
	}
	ratio := 1.0
	if res.Total > 0 {
		ratio = float64(res.Correct) / float64(res.Total)
	}
	res.Percent = int(math.Floor(ratio*100 + 0.5))
	res.Passed = ratio >= PassThreshold
	res.Status = hostapi.StatusFailed
	if res.Passed {
		res.Status = hostapi.StatusPassed
	}
	return res
}

// helpers

func correctSet(q course.Question) map[int64]struct{} {
	m := make(map[int64]struct{}, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			m[o.ID] = struct{}{}
		}
	}
	return m
}

func toSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func setEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
