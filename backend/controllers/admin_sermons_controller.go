package controllers

import (
	"errors"
	"project/backend/models"
	"project/backend/utils"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Admin handlers for sermons and sermon categories.

func (ac *AdminController) CreateSermonCategory(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		SortOrder   int    `json:"sort_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	category := models.SermonCategory{
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		SortOrder:   input.SortOrder,
	}

	if err := ac.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A category with this name already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create category",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Category created",
		"category": category,
	})
}

func (ac *AdminController) DeleteSermonCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	if err := ac.DB.Delete(&models.SermonCategory{}, categoryID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete category",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Category deleted",
	})
}

func (ac *AdminController) ListSermons(c *fiber.Ctx) error {
	var sermons []models.Sermon
	err := ac.DB.Preload("Category").Order("sermon_date DESC").Find(&sermons).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(fiber.Map{
		"sermons": sermons,
	})
}

func (ac *AdminController) CreateSermon(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		CategoryID   uint   `json:"category_id"`
		VideoURL     string `json:"video_url"`
		ThumbnailURL string `json:"thumbnail_url"`
		Speaker      string `json:"speaker"`
		SermonDate   string `json:"sermon_date"` // YYYY-MM-DD
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" || input.CategoryID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title and category are required",
		})
	}

	sermonDate := time.Now()
	if input.SermonDate != "" {
		parsed, err := time.Parse("2006-01-02", input.SermonDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid sermon date, expected YYYY-MM-DD",
			})
		}
		sermonDate = parsed
	}

	sermon := models.Sermon{
		CategoryID:   input.CategoryID,
		Title:        input.Title,
		Slug:         utils.Slugify(input.Title),
		Description:  input.Description,
		VideoURL:     input.VideoURL,
		ThumbnailURL: input.ThumbnailURL,
		Speaker:      input.Speaker,
		SermonDate:   sermonDate,
		IsPublished:  true,
		CreatedBy:    userID,
	}

	if err := ac.DB.Create(&sermon).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A sermon with this title already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create sermon",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sermon created",
		"sermon":  sermon,
	})
}

func (ac *AdminController) UpdateSermon(c *fiber.Ctx) error {
	sermonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sermon ID",
		})
	}

	var input struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		CategoryID   uint   `json:"category_id"`
		VideoURL     string `json:"video_url"`
		ThumbnailURL string `json:"thumbnail_url"`
		Speaker      string `json:"speaker"`
		SermonDate   string `json:"sermon_date"`
		IsPublished  *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var sermon models.Sermon
	if err := ac.DB.First(&sermon, sermonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Sermon not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Title != "" {
		sermon.Title = input.Title
		sermon.Slug = utils.Slugify(input.Title)
	}
	if input.Description != "" {
		sermon.Description = input.Description
	}
	if input.CategoryID != 0 {
		sermon.CategoryID = input.CategoryID
	}
	if input.VideoURL != "" {
		sermon.VideoURL = input.VideoURL
	}
	if input.ThumbnailURL != "" {
		sermon.ThumbnailURL = input.ThumbnailURL
	}
	if input.Speaker != "" {
		sermon.Speaker = input.Speaker
	}
	if input.SermonDate != "" {
		parsed, err := time.Parse("2006-01-02", input.SermonDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid sermon date, expected YYYY-MM-DD",
			})
		}
		sermon.SermonDate = parsed
	}
	if input.IsPublished != nil {
		sermon.IsPublished = *input.IsPublished
	}

	if err := ac.DB.Save(&sermon).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update sermon",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sermon updated",
		"sermon":  sermon,
	})
}

func (ac *AdminController) DeleteSermon(c *fiber.Ctx) error {
	sermonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sermon ID",
		})
	}

	if err := ac.DB.Delete(&models.Sermon{}, sermonID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete sermon",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sermon deleted",
	})
}
