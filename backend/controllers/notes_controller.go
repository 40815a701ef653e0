package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type NotesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewNotesController(db *gorm.DB, cfg *config.Config) *NotesController {
	return &NotesController{DB: db, Cfg: cfg}
}

func (nc *NotesController) GetLessonNotes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
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

	var notes []models.LessonNote
	nc.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).Order("created_at DESC").Find(&notes)

	result := make([]fiber.Map, 0, len(notes))
	for _, note := range notes {
		result = append(result, noteResponse(&note))
	}

	return c.JSON(fiber.Map{
		"notes": result,
	})
}

func (nc *NotesController) CreateLessonNote(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
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

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Note content cannot be empty",
		})
	}

	// The lesson must belong to one of the user's plans.
	var lesson models.Lesson
	if err := nc.DB.Joins("JOIN learning_plans ON learning_plans.id = lessons.plan_id").
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

	note := models.LessonNote{
		UserID:   userID,
		LessonID: lesson.ID,
		Content:  input.Content,
	}
	if err := nc.DB.Create(&note).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create note",
		})
	}

	if err := bumpStreak(nc.DB, userID, func(s *models.StudyStreak) {
		s.NotesCreated++
	}); err != nil {
		log.Printf("streak update failed for user %d: %v", userID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(noteResponse(&note))
}

func (nc *NotesController) GetNote(c *fiber.Ctx) error {
	note, errResp := nc.findUserNote(c)
	if note == nil {
		return errResp
	}
	return c.JSON(noteResponse(note))
}

func (nc *NotesController) UpdateNote(c *fiber.Ctx) error {
	note, errResp := nc.findUserNote(c)
	if note == nil {
		return errResp
	}

	var input struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	input.Content = strings.TrimSpace(input.Content)
	if input.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Note content cannot be empty",
		})
	}

	note.Content = input.Content
	if err := nc.DB.Save(note).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update note",
		})
	}

	return c.JSON(noteResponse(note))
}

func (nc *NotesController) DeleteNote(c *fiber.Ctx) error {
	note, errResp := nc.findUserNote(c)
	if note == nil {
		return errResp
	}

	if err := nc.DB.Delete(note).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete note",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// findUserNote loads the note from the :id param if it belongs to the caller.
// On failure it returns nil and the already-written error response.
func (nc *NotesController) findUserNote(c *fiber.Ctx) (*models.LessonNote, error) {
	userID, err := utils.ExtractUserIDFromToken(c, nc.Cfg)
	if err != nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	noteID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid note ID",
		})
	}

	var note models.LessonNote
	if err := nc.DB.Where("id = ? AND user_id = ?", noteID, userID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Note not found",
			})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return &note, nil
}

func noteResponse(note *models.LessonNote) fiber.Map {
	return fiber.Map{
		"id":         note.ID,
		"lesson_id":  note.LessonID,
		"content":    note.Content,
		"created_at": note.CreatedAt,
		"updated_at": note.UpdatedAt,
	}
}
