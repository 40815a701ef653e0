package controllers_test

import (
	"fmt"
	"testing"

	"project/backend/ai"
	"project/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupQuiz(t *testing.T) (*fiber.App, *gorm.DB, string, map[string]interface{}) {
	t.Helper()

	app, db, token := setupApp(t, &stubGenerator{
		lessons:   defaultLessons(),
		questions: defaultQuestions(),
	})
	planID := generatePlan(t, app, token)

	var lesson models.Lesson
	db.Where("plan_id = ?", planID).First(&lesson)

	quiz := request(t, app, "POST", lessonPath(lesson.ID, "/quiz/generate"), token, nil, fiber.StatusCreated)
	return app, db, token, quiz
}

func TestGenerateQuiz(t *testing.T) {
	_, _, _, quiz := setupQuiz(t)

	assert.Equal(t, 4.0, quiz["question_count"])
	questions := quiz["questions"].([]interface{})
	require.Len(t, questions, 4)

	// Correct answers must not leak before grading.
	first := questions[0].(map[string]interface{})
	assert.Equal(t, "Q1", first["question"])
	assert.NotContains(t, first, "correct_answer")
	assert.NotContains(t, first, "explanation")
}

func TestGenerateQuizIsIdempotent(t *testing.T) {
	app, db, token := setupApp(t, &stubGenerator{
		lessons:   defaultLessons(),
		questions: defaultQuestions(),
	})
	planID := generatePlan(t, app, token)

	var lesson models.Lesson
	db.Where("plan_id = ?", planID).First(&lesson)

	created := request(t, app, "POST", lessonPath(lesson.ID, "/quiz/generate"), token, nil, fiber.StatusCreated)
	// Second call returns the stored quiz instead of regenerating.
	again := request(t, app, "POST", lessonPath(lesson.ID, "/quiz/generate"), token, nil, fiber.StatusOK)
	assert.Equal(t, created["id"], again["id"])

	var count int64
	db.Model(&models.Quiz{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGenerateQuizDropsInvalidQuestions(t *testing.T) {
	questions := append(defaultQuestions(), ai.QuestionContent{
		Question: "Broken", OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectAnswer: "E", Explanation: "bad label",
	})
	app, db, token := setupApp(t, &stubGenerator{lessons: defaultLessons(), questions: questions})
	planID := generatePlan(t, app, token)

	var lesson models.Lesson
	db.Where("plan_id = ?", planID).First(&lesson)

	quiz := request(t, app, "POST", lessonPath(lesson.ID, "/quiz/generate"), token, nil, fiber.StatusCreated)
	assert.Equal(t, 4.0, quiz["question_count"])
}

func TestSubmitQuiz(t *testing.T) {
	app, _, token, quiz := setupQuiz(t)

	questions := quiz["questions"].([]interface{})
	answers := map[string]string{}
	labels := []string{"A", "C", "B", "X"}
	for i, raw := range questions {
		q := raw.(map[string]interface{})
		answers[fmt.Sprintf("%v", q["id"])] = labels[i]
	}

	body := request(t, app, "POST", quizPath(quiz["id"], "/submit"), token,
		map[string]interface{}{"answers": answers}, fiber.StatusOK)

	assert.Equal(t, 75.0, body["score"])
	assert.Equal(t, 3.0, body["correct_count"])
	assert.Equal(t, 4.0, body["total_questions"])

	results := body["results"].([]interface{})
	require.Len(t, results, 4)
	last := results[3].(map[string]interface{})
	assert.Equal(t, "X", last["user_answer"])
	assert.Equal(t, "D", last["correct_answer"])
	assert.Equal(t, false, last["is_correct"])
	assert.Equal(t, "Because D", last["explanation"])
}

func TestSubmitQuizRetakeCreatesNewAttempt(t *testing.T) {
	app, db, token, quiz := setupQuiz(t)

	payload := map[string]interface{}{"answers": map[string]string{"1": "A"}}
	request(t, app, "POST", quizPath(quiz["id"], "/submit"), token, payload, fiber.StatusOK)
	request(t, app, "POST", quizPath(quiz["id"], "/submit"), token, payload, fiber.StatusOK)

	// Both attempts are kept; prior ones are never mutated.
	var attempts []models.QuizAttempt
	db.Order("id").Find(&attempts)
	require.Len(t, attempts, 2)
	assert.Equal(t, attempts[0].Score, attempts[1].Score)
	assert.NotEqual(t, attempts[0].ID, attempts[1].ID)
}

func TestSubmitQuizBumpsStreak(t *testing.T) {
	app, _, token, quiz := setupQuiz(t)

	request(t, app, "POST", quizPath(quiz["id"], "/submit"), token,
		map[string]interface{}{"answers": map[string]string{}}, fiber.StatusOK)

	body := request(t, app, "GET", "/api/analytics/streak", token, nil, fiber.StatusOK)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "active_today", data["streak_status"])
}

func quizPath(quizID interface{}, suffix string) string {
	return fmt.Sprintf("/api/quizzes/%v%s", quizID, suffix)
}
