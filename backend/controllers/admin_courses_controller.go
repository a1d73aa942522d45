package controllers

import (
	"errors"
	"project/backend/models"
	"project/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Admin handlers for the course catalog: categories, courses and lessons.
// All of them sit behind the admin middleware.

func (ac *AdminController) CreateCourseCategory(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
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

	category := models.CourseCategory{
		Name:        input.Name,
		Slug:        utils.Slugify(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
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

func (ac *AdminController) UpdateCourseCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		SortOrder   *int   `json:"sort_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var category models.CourseCategory
	if err := ac.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Category not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Name != "" {
		category.Name = input.Name
		category.Slug = utils.Slugify(input.Name)
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.ImageURL != "" {
		category.ImageURL = input.ImageURL
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := ac.DB.Save(&category).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update category",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Category updated",
		"category": category,
	})
}

func (ac *AdminController) DeleteCourseCategory(c *fiber.Ctx) error {
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid category ID",
		})
	}

	if err := ac.DB.Delete(&models.CourseCategory{}, categoryID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete category",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Category deleted",
	})
}

func (ac *AdminController) ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	err := ac.DB.Preload("Category").Order("created_at DESC").Find(&courses).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var result []fiber.Map
	for _, course := range courses {
		var lessonCount int64
		ac.DB.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessonCount)

		result = append(result, fiber.Map{
			"id":           course.ID,
			"title":        course.Title,
			"slug":         course.Slug,
			"category":     course.Category.Name,
			"is_published": course.IsPublished,
			"lesson_count": lessonCount,
			"created_at":   course.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"courses": result,
	})
}

func (ac *AdminController) GetCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	err = ac.DB.Preload("Category").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order")
		}).
		First(&course, courseID).Error
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

	return c.JSON(course)
}

func (ac *AdminController) CreateCourse(c *fiber.Ctx) error {
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
		ThumbnailURL string `json:"thumbnail_url"`
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

	course := models.Course{
		CategoryID:   input.CategoryID,
		Title:        input.Title,
		Slug:         utils.Slugify(input.Title),
		Description:  input.Description,
		ThumbnailURL: input.ThumbnailURL,
		IsPublished:  false,
		CreatedBy:    userID,
	}

	if err := ac.DB.Create(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A course with this title already exists",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (ac *AdminController) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		CategoryID   uint   `json:"category_id"`
		ThumbnailURL string `json:"thumbnail_url"`
		IsPublished  *bool  `json:"is_published"`
		SortOrder    *int   `json:"sort_order"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	if input.Title != "" {
		course.Title = input.Title
		course.Slug = utils.Slugify(input.Title)
	}
	if input.Description != "" {
		course.Description = input.Description
	}
	if input.CategoryID != 0 {
		course.CategoryID = input.CategoryID
	}
	if input.ThumbnailURL != "" {
		course.ThumbnailURL = input.ThumbnailURL
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}
	if input.SortOrder != nil {
		course.SortOrder = *input.SortOrder
	}

	if err := ac.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course updated",
		"course":  course,
	})
}

func (ac *AdminController) DeleteCourse(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	if err := ac.DB.Delete(&models.Course{}, courseID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course deleted",
	})
}

// AddLesson appends a lesson at the end of the course's sort order.
func (ac *AdminController) AddLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		Title           string `json:"title"`
		ContentType     string `json:"content_type"`
		VideoURL        string `json:"video_url"`
		TextContent     string `json:"text_content"`
		PDFURL          string `json:"pdf_url"`
		DurationMinutes *int   `json:"duration_minutes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	var course models.Course
	if err := ac.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var maxOrder int
	ac.DB.Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(sort_order), -1)").
		Scan(&maxOrder)

	contentType := input.ContentType
	if contentType == "" {
		contentType = "text"
	}

	lesson := models.Lesson{
		CourseID:        uint(courseID),
		Title:           input.Title,
		Slug:            utils.Slugify(input.Title),
		SortOrder:       maxOrder + 1,
		ContentType:     contentType,
		VideoURL:        input.VideoURL,
		TextContent:     input.TextContent,
		PDFURL:          input.PDFURL,
		DurationMinutes: input.DurationMinutes,
		IsPublished:     true,
	}

	if err := ac.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lesson",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson added",
		"lesson":  lesson,
	})
}

func (ac *AdminController) UpdateLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var input struct {
		Title           string `json:"title"`
		ContentType     string `json:"content_type"`
		VideoURL        string `json:"video_url"`
		TextContent     string `json:"text_content"`
		PDFURL          string `json:"pdf_url"`
		DurationMinutes *int   `json:"duration_minutes"`
		SortOrder       *int   `json:"sort_order"`
		IsPublished     *bool  `json:"is_published"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	var lesson models.Lesson
	err = ac.DB.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error
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

	if input.Title != "" {
		lesson.Title = input.Title
		lesson.Slug = utils.Slugify(input.Title)
	}
	if input.ContentType != "" {
		lesson.ContentType = input.ContentType
	}
	if input.VideoURL != "" {
		lesson.VideoURL = input.VideoURL
	}
	if input.TextContent != "" {
		lesson.TextContent = input.TextContent
	}
	if input.PDFURL != "" {
		lesson.PDFURL = input.PDFURL
	}
	if input.DurationMinutes != nil {
		lesson.DurationMinutes = input.DurationMinutes
	}
	if input.SortOrder != nil {
		lesson.SortOrder = *input.SortOrder
	}
	if input.IsPublished != nil {
		lesson.IsPublished = *input.IsPublished
	}

	if err := ac.DB.Save(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update lesson",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson updated",
		"lesson":  lesson,
	})
}

func (ac *AdminController) DeleteLesson(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	result := ac.DB.Where("id = ? AND course_id = ?", lessonID, courseID).Delete(&models.Lesson{})
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete lesson",
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson deleted",
	})
}
