package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type BookmarksController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewBookmarksController(db *gorm.DB, cfg *config.Config) *BookmarksController {
	return &BookmarksController{DB: db, Cfg: cfg}
}

// ToggleBookmark creates the bookmark when absent and removes it when
// present, reporting the resulting state.
func (bc *BookmarksController) ToggleBookmark(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Type string `json:"type"` // sermon or course
		ID   uint   `json:"id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Type != "sermon" && input.Type != "course" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Type must be sermon or course",
		})
	}
	if input.ID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing target ID",
		})
	}

	column := "course_id"
	if input.Type == "sermon" {
		column = "sermon_id"
	}

	var existing models.Bookmark
	err = bc.DB.Where("user_id = ? AND "+column+" = ?", userID, input.ID).First(&existing).Error
	switch {
	case err == nil:
		if err := bc.DB.Delete(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not remove bookmark",
			})
		}
		return c.JSON(fiber.Map{"bookmarked": false})
	case errors.Is(err, gorm.ErrRecordNotFound):
		bookmark := models.Bookmark{UserID: userID}
		if input.Type == "sermon" {
			bookmark.SermonID = &input.ID
		} else {
			bookmark.CourseID = &input.ID
		}
		if err := bc.DB.Create(&bookmark).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create bookmark",
			})
		}
		return c.JSON(fiber.Map{"bookmarked": true})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}
}

func (bc *BookmarksController) GetMyBookmarks(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, bc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var bookmarks []models.Bookmark
	err = bc.DB.Preload("Sermon").Preload("Sermon.Category").
		Preload("Course").Preload("Course.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"bookmarks": bookmarks,
	})
}
