package routes

import (
	"project/backend/ai"
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, generator ai.Generator) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// Profile routes
	userController := controllers.NewUserController(db, cfg)
	user := app.Group("/api/user", authMiddleware)
	user.Get("/profile", userController.GetProfile)
	user.Put("/profile", userController.UpdateProfile)
	user.Post("/change_password", userController.ChangePassword)

	// Plan and lesson routes
	plansController := controllers.NewPlansController(db, cfg, generator)
	plans := app.Group("/api/plans", authMiddleware)
	plans.Get("/", plansController.GetUserPlans)
	plans.Post("/generate", plansController.GeneratePlan)
	plans.Get("/:id/lessons", plansController.GetPlanLessons)

	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Get("/:id", plansController.GetLessonDetail)
	lessons.Post("/:id/complete", plansController.CompleteLesson)

	// Quiz routes
	quizzesController := controllers.NewQuizzesController(db, cfg, generator)
	lessons.Post("/:id/quiz/generate", quizzesController.GenerateQuiz)
	quizzes := app.Group("/api/quizzes", authMiddleware)
	quizzes.Get("/:id", quizzesController.GetQuiz)
	quizzes.Post("/:id/submit", quizzesController.SubmitQuiz)

	// Note routes
	notesController := controllers.NewNotesController(db, cfg)
	lessons.Get("/:id/notes", notesController.GetLessonNotes)
	lessons.Post("/:id/notes", notesController.CreateLessonNote)
	notes := app.Group("/api/notes", authMiddleware)
	notes.Get("/:id", notesController.GetNote)
	notes.Put("/:id", notesController.UpdateNote)
	notes.Delete("/:id", notesController.DeleteNote)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, cfg)
	analytics := app.Group("/api/analytics", authMiddleware)
	analytics.Get("/", analyticsController.GetAnalytics)
	analytics.Get("/streak", analyticsController.GetStreak)
}
