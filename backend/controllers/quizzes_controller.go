package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/models"
	"project/backend/stats"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuizzesController struct {
	DB  *gorm.DB
	Cfg *config.Config
	AI  ai.Generator
}

func NewQuizzesController(db *gorm.DB, cfg *config.Config, generator ai.Generator) *QuizzesController {
	return &QuizzesController{DB: db, Cfg: cfg, AI: generator}
}

// GenerateQuiz returns the lesson's quiz, creating it on first request. A quiz
// is generated at most once per lesson; repeated calls return the stored one.
func (qc *QuizzesController) GenerateQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var lesson models.Lesson
	if err := qc.DB.Joins("JOIN learning_plans ON learning_plans.id = lessons.plan_id").
		Where("lessons.id = ? AND learning_plans.user_id = ?", lessonID, userID).
		First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var existing models.Quiz
	if err := qc.DB.Preload("Questions").Where("lesson_id = ?", lesson.ID).First(&existing).Error; err == nil {
		return c.JSON(quizResponse(&existing))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var input struct {
		NumQuestions int `json:"num_questions"`
	}
	c.BodyParser(&input)
	if input.NumQuestions <= 0 {
		input.NumQuestions = 5
	}

	generated, err := qc.AI.GenerateQuizQuestions(lesson.Title, lesson.TheoryMD, input.NumQuestions)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate quiz",
		})
	}

	questions := make([]models.QuizQuestion, 0, len(generated))
	for _, q := range generated {
		question := models.QuizQuestion{
			QuestionText:  q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if validQuestion(&question) {
			questions = append(questions, question)
		}
	}
	if len(questions) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate quiz",
		})
	}

	quiz := models.Quiz{
		LessonID:  lesson.ID,
		Title:     "Quiz: " + lesson.Title,
		Questions: questions,
	}
	if err := qc.DB.Create(&quiz).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create quiz",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(quizResponse(&quiz))
}

func (qc *QuizzesController) GetQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	quiz, err := qc.findUserQuiz(uint(quizID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(quizResponse(quiz))
}

// SubmitQuiz grades the submitted answers, stores an immutable attempt and
// bumps today's streak. Retakes create new attempts, never overwrite old ones.
func (qc *QuizzesController) SubmitQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, qc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	quizID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid quiz ID",
		})
	}

	var input struct {
		Answers map[string]string `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	quiz, err := qc.findUserQuiz(uint(quizID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Quiz not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	questions := make([]stats.Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, stats.Question{
			ID:            q.ID,
			Text:          q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	answers := make(map[uint]string, len(input.Answers))
	for key, label := range input.Answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		answers[uint(id)] = label
	}

	result, err := stats.Grade(questions, answers)
	if err != nil {
		// A quiz with no questions is a configuration problem, not a 0% score.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Quiz has no questions",
		})
	}

	answersJSON, _ := json.Marshal(input.Answers)
	attempt := models.QuizAttempt{
		UserID:      userID,
		QuizID:      quiz.ID,
		Score:       result.Score,
		Answers:     string(answersJSON),
		CompletedAt: time.Now(),
	}
	if err := qc.DB.Create(&attempt).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save attempt",
		})
	}

	if err := bumpStreak(qc.DB, userID, func(s *models.StudyStreak) {
		s.QuizzesTaken++
	}); err != nil {
		log.Printf("streak update failed for user %d: %v", userID, err)
	}

	return c.JSON(fiber.Map{
		"score":           result.Score,
		"correct_count":   result.CorrectCount,
		"total_questions": result.TotalQuestions,
		"results":         result.Results,
	})
}

func (qc *QuizzesController) findUserQuiz(quizID, userID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := qc.DB.Preload("Questions").
		Joins("JOIN lessons ON lessons.id = quizzes.lesson_id").
		Joins("JOIN learning_plans ON learning_plans.id = lessons.plan_id").
		Where("quizzes.id = ? AND learning_plans.user_id = ?", quizID, userID).
		First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// quizResponse serializes a quiz without the correct answers.
func quizResponse(quiz *models.Quiz) fiber.Map {
	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, fiber.Map{
			"id":       q.ID,
			"question": q.QuestionText,
			"option_a": q.OptionA,
			"option_b": q.OptionB,
			"option_c": q.OptionC,
			"option_d": q.OptionD,
		})
	}

	return fiber.Map{
		"id":             quiz.ID,
		"lesson_id":      quiz.LessonID,
		"title":          quiz.Title,
		"question_count": len(quiz.Questions),
		"questions":      questions,
	}
}

// validQuestion enforces the invariant on generated questions: the correct
// label must be A-D and the matching option must be non-empty.
func validQuestion(q *models.QuizQuestion) bool {
	option := map[string]string{
		"A": q.OptionA,
		"B": q.OptionB,
		"C": q.OptionC,
		"D": q.OptionD,
	}
	text, ok := option[q.CorrectAnswer]
	return ok && text != "" && q.QuestionText != ""
}
