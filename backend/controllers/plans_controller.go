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

type PlansController struct {
	DB  *gorm.DB
	Cfg *config.Config
	AI  ai.Generator
}

func NewPlansController(db *gorm.DB, cfg *config.Config, generator ai.Generator) *PlansController {
	return &PlansController{DB: db, Cfg: cfg, AI: generator}
}

func (pc *PlansController) GetUserPlans(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var plans []models.LearningPlan
	pc.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&plans)

	result := make([]fiber.Map, 0, len(plans))
	for _, plan := range plans {
		result = append(result, fiber.Map{
			"id":              plan.ID,
			"topic":           plan.Topic,
			"progress":        plan.Progress,
			"knowledge_level": plan.KnowledgeLevel,
			"weekly_hours":    plan.WeeklyHours,
			"created_at":      plan.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"plans": result,
	})
}

// GeneratePlan godoc
// @Summary Generate a learning plan
// @Description Generates a new AI-powered learning plan with lessons
// @Tags plans
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /plans/generate [post]
func (pc *PlansController) GeneratePlan(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Topic          string `json:"topic"`
		KnowledgeLevel string `json:"knowledge_level"`
		WeeklyHours    int    `json:"weekly_hours"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.Topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Topic is required",
		})
	}
	if input.KnowledgeLevel == "" {
		input.KnowledgeLevel = "beginner"
	}
	if input.WeeklyHours <= 0 {
		input.WeeklyHours = 5
	}

	lessons, err := pc.AI.GenerateLearningPlan(input.Topic, input.KnowledgeLevel, input.WeeklyHours)
	if err != nil || len(lessons) == 0 {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate learning plan",
		})
	}

	plan := models.LearningPlan{
		UserID:         userID,
		Topic:          input.Topic,
		KnowledgeLevel: input.KnowledgeLevel,
		WeeklyHours:    input.WeeklyHours,
	}

	// Plan and lessons land together or not at all.
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		for _, item := range lessons {
			links, _ := json.Marshal(item.ExtraLinks)
			lesson := models.Lesson{
				PlanID:       plan.ID,
				Title:        item.Title,
				TheoryMD:     item.TheoryMD,
				Task:         item.Task,
				LessonType:   item.TaskType,
				TimeEstimate: item.TimeEstimate,
				DayNumber:    item.Day,
				ExtraLinks:   string(links),
			}
			if err := tx.Create(&lesson).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create plan",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Learning plan was successfully created",
		"plan_id": plan.ID,
	})
}

func (pc *PlansController) GetPlanLessons(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	planID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid plan ID",
		})
	}

	var plan models.LearningPlan
	if err := pc.DB.Preload("Lessons").Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Plan not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	completed := pc.completionMap(userID, plan.Lessons)

	lessons := make([]fiber.Map, 0, len(plan.Lessons))
	for _, lesson := range plan.Lessons {
		lessons = append(lessons, fiber.Map{
			"id":            lesson.ID,
			"title":         lesson.Title,
			"day_number":    lesson.DayNumber,
			"time_estimate": lesson.TimeEstimate,
			"lesson_type":   lesson.LessonType,
			"is_completed":  completed[lesson.ID],
		})
	}

	return c.JSON(fiber.Map{
		"plan_id":  plan.ID,
		"topic":    plan.Topic,
		"progress": plan.Progress,
		"lessons":  lessons,
	})
}

func (pc *PlansController) GetLessonDetail(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
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

	lesson, err := pc.findUserLesson(uint(lessonID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var extraLinks []string
	json.Unmarshal([]byte(lesson.ExtraLinks), &extraLinks)

	var progress models.UserProgress
	pc.DB.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress)

	return c.JSON(fiber.Map{
		"id":            lesson.ID,
		"title":         lesson.Title,
		"theory_md":     lesson.TheoryMD,
		"task":          lesson.Task,
		"lesson_type":   lesson.LessonType,
		"time_estimate": lesson.TimeEstimate,
		"day_number":    lesson.DayNumber,
		"extra_links":   extraLinks,
		"is_completed":  progress.IsCompleted,
	})
}

// CompleteLesson toggles the completion flag for a lesson. Completing sets the
// timestamp, seeds time spent from the lesson estimate on first completion,
// recomputes the plan's cached progress and bumps today's streak counters.
// Reverting clears the timestamp but keeps accumulated time.
func (pc *PlansController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
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

	lesson, err := pc.findUserLesson(uint(lessonID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var progress models.UserProgress
	if err := pc.DB.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not query database",
			})
		}
		progress = models.UserProgress{UserID: userID, LessonID: lesson.ID}
	}

	progress.IsCompleted = !progress.IsCompleted
	if progress.IsCompleted {
		now := time.Now()
		progress.CompletedAt = &now
		if progress.TimeSpent == 0 {
			progress.TimeSpent = lesson.TimeEstimate
		}
	} else {
		progress.CompletedAt = nil
	}

	if err := pc.DB.Save(&progress).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save progress",
		})
	}

	planProgress, err := pc.recalculatePlanProgress(lesson.PlanID, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update plan progress",
		})
	}

	if progress.IsCompleted {
		minutes := progress.TimeSpent
		err := bumpStreak(pc.DB, userID, func(s *models.StudyStreak) {
			s.LessonsCompleted++
			s.TotalTimeSpent += minutes
		})
		if err != nil {
			// Streak bumps are best-effort; the completion already succeeded.
			log.Printf("streak update failed for user %d: %v", userID, err)
		}
	}

	return c.JSON(fiber.Map{
		"lesson_id":    lesson.ID,
		"is_completed": progress.IsCompleted,
		"progress":     planProgress,
	})
}

// findUserLesson loads a lesson only if its plan belongs to the user.
func (pc *PlansController) findUserLesson(lessonID, userID uint) (*models.Lesson, error) {
	var lesson models.Lesson
	err := pc.DB.Joins("JOIN learning_plans ON learning_plans.id = lessons.plan_id").
		Where("lessons.id = ? AND learning_plans.user_id = ?", lessonID, userID).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (pc *PlansController) completionMap(userID uint, lessons []models.Lesson) map[uint]bool {
	ids := make([]uint, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}

	var progress []models.UserProgress
	if len(ids) > 0 {
		pc.DB.Where("user_id = ? AND lesson_id IN ? AND is_completed = ?", userID, ids, true).Find(&progress)
	}

	completed := make(map[uint]bool, len(progress))
	for _, p := range progress {
		completed[p.LessonID] = true
	}
	return completed
}

// recalculatePlanProgress refreshes the plan's cached progress percentage from
// the current completion state. The stored value is only a materialized view
// of stats.ComputeProgress, never authoritative on its own.
func (pc *PlansController) recalculatePlanProgress(planID, userID uint) (float64, error) {
	var plan models.LearningPlan
	if err := pc.DB.Preload("Lessons").First(&plan, planID).Error; err != nil {
		return 0, err
	}

	completed := pc.completionMap(userID, plan.Lessons)

	statuses := make([]stats.LessonStatus, 0, len(plan.Lessons))
	for _, lesson := range plan.Lessons {
		statuses = append(statuses, stats.LessonStatus{
			LessonID:  lesson.ID,
			Completed: completed[lesson.ID],
		})
	}

	plan.Progress = stats.ComputeProgress(statuses)
	if err := pc.DB.Model(&plan).Update("progress", plan.Progress).Error; err != nil {
		return 0, err
	}
	return plan.Progress, nil
}
