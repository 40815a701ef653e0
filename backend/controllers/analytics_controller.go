package controllers

import (
	"time"

	"project/backend/config"
	"project/backend/models"
	"project/backend/stats"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg}
}

// GetAnalytics returns the user's overall learning statistics: lesson and plan
// totals, completion rate, time spent, quiz average, per-plan breakdown and
// the recent-activity feed. All aggregation happens in the stats package; this
// handler only fetches the snapshots.
func (ac *AnalyticsController) GetAnalytics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var plans []models.LearningPlan
	if err := ac.DB.Preload("Lessons").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&plans).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch plans")
	}

	var progress []models.UserProgress
	if err := ac.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch progress")
	}

	var attempts []models.QuizAttempt
	if err := ac.DB.Where("user_id = ?", userID).Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch quiz attempts")
	}

	completed := make(map[uint]bool, len(progress))
	for _, p := range progress {
		if p.IsCompleted {
			completed[p.LessonID] = true
		}
	}

	lessonTitles := make(map[uint]string)
	planInputs := make([]stats.PlanProgress, 0, len(plans))
	for _, plan := range plans {
		statuses := make([]stats.LessonStatus, 0, len(plan.Lessons))
		for _, lesson := range plan.Lessons {
			lessonTitles[lesson.ID] = lesson.Title
			statuses = append(statuses, stats.LessonStatus{
				LessonID:  lesson.ID,
				Completed: completed[lesson.ID],
			})
		}
		planInputs = append(planInputs, stats.PlanProgress{
			PlanID:    plan.ID,
			Topic:     plan.Topic,
			CreatedAt: plan.CreatedAt,
			Lessons:   statuses,
		})
	}

	records := make([]stats.CompletionRecord, 0, len(progress))
	for _, p := range progress {
		records = append(records, stats.CompletionRecord{
			LessonID:    p.LessonID,
			LessonTitle: lessonTitles[p.LessonID],
			Completed:   p.IsCompleted,
			CompletedAt: p.CompletedAt,
			TimeSpent:   p.TimeSpent,
		})
	}

	scores := make([]stats.AttemptScore, 0, len(attempts))
	for _, a := range attempts {
		scores = append(scores, stats.AttemptScore{Score: a.Score})
	}

	summary := stats.Aggregate(planInputs, records, scores)
	return utils.Success(c, fiber.StatusOK, summary)
}

// GetStreak returns streak statistics and the 365-day activity calendar
// recomputed from the stored per-day counters.
func (ac *AnalyticsController) GetStreak(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var streaks []models.StudyStreak
	if err := ac.DB.Where("user_id = ?", userID).Find(&streaks).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch streak data")
	}

	days := make([]stats.DayActivity, 0, len(streaks))
	for _, s := range streaks {
		days = append(days, stats.DayActivity{
			Date:             s.Date,
			LessonsCompleted: s.LessonsCompleted,
			QuizzesTaken:     s.QuizzesTaken,
			NotesCreated:     s.NotesCreated,
			TotalTimeSpent:   s.TotalTimeSpent,
		})
	}

	summary := stats.ComputeStreak(days, time.Now())
	return utils.Success(c, fiber.StatusOK, summary)
}
