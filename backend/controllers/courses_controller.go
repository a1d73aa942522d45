package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Service *services.EnrollmentService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Service: services.NewEnrollmentService(db)}
}

func (cc *CoursesController) GetCategories(c *fiber.Ctx) error {
	var categories []models.CourseCategory
	if err := cc.DB.Order("sort_order").Find(&categories).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	return c.JSON(categories)
}

func (cc *CoursesController) GetCoursesByCategory(c *fiber.Ctx) error {
	var category models.CourseCategory
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var courses []models.Course
	err := cc.DB.Where("category_id = ? AND is_published = ?", category.ID, true).
		Order("sort_order").
		Find(&courses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, course := range courses {
		var lessonCount int64
		cc.DB.Model(&models.Lesson{}).
			Where("course_id = ? AND is_published = ?", course.ID, true).
			Count(&lessonCount)

		result = append(result, fiber.Map{
			"id":            course.ID,
			"title":         course.Title,
			"slug":          course.Slug,
			"description":   course.Description,
			"thumbnail_url": course.ThumbnailURL,
			"lesson_count":  lessonCount,
		})
	}

	return c.JSON(fiber.Map{
		"category": category,
		"courses":  result,
	})
}

// GetCourseDetails returns the course with its published lessons in order.
// When the caller is enrolled, the enrollment and computed progress are
// included so the lesson list can show completion state.
func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var course models.Course
	err = cc.DB.Preload("Category").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_published = ?", true).Order("sort_order")
		}).
		Where("slug = ?", c.Params("slug")).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	response := fiber.Map{
		"course":   course,
		"enrolled": false,
	}

	var enrollment models.Enrollment
	err = cc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment).Error
	if err == nil {
		progress, perr := cc.Service.ComputeProgress(userID, course.ID)
		if perr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not compute progress",
			})
		}

		var completedIDs []uint
		cc.DB.Model(&models.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
			Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ?", userID, true).
			Where("lessons.course_id = ?", course.ID).
			Pluck("lesson_progresses.lesson_id", &completedIDs)

		response["enrolled"] = true
		response["enrollment"] = enrollment
		response["progress"] = progress
		response["completed_lesson_ids"] = completedIDs
	}

	return c.JSON(response)
}

func (cc *CoursesController) GetLesson(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, cc.Cfg); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var lesson models.Lesson
	err := cc.DB.Where("course_id = ? AND slug = ? AND is_published = ?", course.ID, c.Params("lessonSlug"), true).
		First(&lesson).Error
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

	return c.JSON(lesson)
}
