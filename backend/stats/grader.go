package stats

import (
	"errors"
	"strings"
)

// ErrNoQuestions is returned when an empty question set is handed to Grade.
// Callers should treat it as a configuration error, not as a 0% score.
var ErrNoQuestions = errors.New("stats: quiz has no questions")

// Question is the authoritative version of a quiz question, including the
// correct label and the explanation shown after grading.
type Question struct {
	ID            uint
	Text          string
	CorrectAnswer string // A, B, C or D
	Explanation   string
}

type QuestionResult struct {
	QuestionID    uint   `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
}

type GradingResult struct {
	Score          float64          `json:"score"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Results        []QuestionResult `json:"results"`
}

// Grade scores a submitted answer set against the question bank. The
// submission may be partial: a missing answer counts as incorrect, never as an
// error. Labels are upper-cased before comparison, and the explanation is
// returned for every question regardless of correctness. Grading is stateless,
// so the same inputs always produce the same result.
func Grade(questions []Question, answers map[uint]string) (*GradingResult, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	result := &GradingResult{
		TotalQuestions: len(questions),
		Results:        make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		userAnswer := strings.ToUpper(strings.TrimSpace(answers[q.ID]))
		isCorrect := userAnswer != "" && userAnswer == q.CorrectAnswer
		if isCorrect {
			result.CorrectCount++
		}

		result.Results = append(result.Results, QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
		})
	}

	result.Score = round2(100 * float64(result.CorrectCount) / float64(result.TotalQuestions))
	return result, nil
}
