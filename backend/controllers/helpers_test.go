package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/routes"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubGenerator stands in for the OpenAI client in tests.
type stubGenerator struct {
	lessons   []ai.LessonContent
	questions []ai.QuestionContent
	err       error
}

func (s *stubGenerator) GenerateLearningPlan(topic, level string, weeklyHours int) ([]ai.LessonContent, error) {
	return s.lessons, s.err
}

func (s *stubGenerator) GenerateQuizQuestions(lessonTitle, theory string, numQuestions int) ([]ai.QuestionContent, error) {
	return s.questions, s.err
}

func defaultLessons() []ai.LessonContent {
	return []ai.LessonContent{
		{Day: 1, Title: "Basics", TheoryMD: "# Basics", Task: "Read", TaskType: "theory", TimeEstimate: 30, ExtraLinks: []string{"https://example.com"}},
		{Day: 2, Title: "Practice", TheoryMD: "# Practice", Task: "Code", TaskType: "practice", TimeEstimate: 45},
		{Day: 3, Title: "Project", TheoryMD: "# Project", Task: "Build", TaskType: "project", TimeEstimate: 60},
	}
}

func defaultQuestions() []ai.QuestionContent {
	return []ai.QuestionContent{
		{Question: "Q1", OptionA: "a1", OptionB: "b1", OptionC: "c1", OptionD: "d1", CorrectAnswer: "A", Explanation: "Because A"},
		{Question: "Q2", OptionA: "a2", OptionB: "b2", OptionC: "c2", OptionD: "d2", CorrectAnswer: "C", Explanation: "Because C"},
		{Question: "Q3", OptionA: "a3", OptionB: "b3", OptionC: "c3", OptionD: "d3", CorrectAnswer: "B", Explanation: "Because B"},
		{Question: "Q4", OptionA: "a4", OptionB: "b4", OptionC: "c4", OptionD: "d4", CorrectAnswer: "D", Explanation: "Because D"},
	}
}

// setupApp builds a fiber app over a fresh in-memory database, registers a
// user and returns the app, the database handle and a valid JWT.
func setupApp(t *testing.T, generator ai.Generator) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	cfg := &config.Config{JWTSecret: "testsecret", JWTExpiryHours: 1}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, generator)

	body := request(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "tester",
		"email":    "tester@example.com",
		"password": "password123",
	}, fiber.StatusOK)

	token, ok := body["token"].(string)
	require.True(t, ok, "register must return a token")

	return app, db, token
}

// request performs a JSON request against the app and decodes the response,
// asserting on the status code.
func request(t *testing.T, app *fiber.App, method, path, token string, payload interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status for %s %s: %s", method, path, raw)

	if resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &result), "invalid JSON: %s", raw)
	return result
}

// generatePlan creates a plan through the API and returns its id.
func generatePlan(t *testing.T, app *fiber.App, token string) uint {
	t.Helper()

	body := request(t, app, "POST", "/api/plans/generate", token, map[string]interface{}{
		"topic":           "Go Programming",
		"knowledge_level": "beginner",
		"weekly_hours":    5,
	}, fiber.StatusCreated)

	planID, ok := body["plan_id"].(float64)
	require.True(t, ok, "generate must return plan_id")
	return uint(planID)
}

func lessonPath(lessonID interface{}, suffix string) string {
	return fmt.Sprintf("/api/lessons/%v%s", lessonID, suffix)
}
