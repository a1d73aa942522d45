package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SermonsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSermonsController(db *gorm.DB, cfg *config.Config) *SermonsController {
	return &SermonsController{DB: db, Cfg: cfg}
}

func (sc *SermonsController) GetSermonCategories(c *fiber.Ctx) error {
	var categories []models.SermonCategory
	if err := sc.DB.Order("sort_order").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(categories)
}

// GetSermons lists published sermons, newest first, with optional category
// and free-text filters.
func (sc *SermonsController) GetSermons(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 12)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 12
	}
	if offset < 0 {
		offset = 0
	}

	query := sc.DB.Model(&models.Sermon{}).
		Preload("Category").
		Where("is_published = ?", true)

	if categorySlug := c.Query("category"); categorySlug != "" {
		var category models.SermonCategory
		if err := sc.DB.Where("slug = ?", categorySlug).First(&category).Error; err == nil {
			query = query.Where("category_id = ?", category.ID)
		}
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR speaker LIKE ? OR description LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var sermons []models.Sermon
	err := query.Order("sermon_date DESC").Limit(limit).Offset(offset).Find(&sermons).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return utils.Paginate(c, sermons, total, limit, offset)
}

func (sc *SermonsController) GetSermonBySlug(c *fiber.Ctx) error {
	var sermon models.Sermon
	err := sc.DB.Preload("Category").
		Where("slug = ? AND is_published = ?", c.Params("slug"), true).
		First(&sermon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Sermon not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(sermon)
}
