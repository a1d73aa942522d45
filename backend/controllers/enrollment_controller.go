package controllers

import (
	"errors"
	"project/backend/config"
	"project/backend/services"
	"project/backend/utils"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Service *services.EnrollmentService
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg, Service: services.NewEnrollmentService(db)}
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags enrollments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	enrollment, err := ec.Service.Enroll(userID, uint(courseID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEnrollment):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Already enrolled in this course",
			})
		case errors.Is(err, services.ErrCourseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not enroll",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message":    "Enrolled",
		"enrollment": enrollment,
	})
}

func (ec *EnrollmentController) Unenroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	if err := ec.Service.Unenroll(userID, uint(courseID)); err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Not enrolled in this course",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not unenroll",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Unenrolled",
	})
}

// CompleteLesson marks a lesson as done for the caller. Repeated calls for
// the same lesson are harmless.
func (ec *EnrollmentController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
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
		QuizScore *float64 `json:"quiz_score"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot parse JSON",
			})
		}
	}

	if err := ec.Service.MarkLessonComplete(userID, uint(lessonID), input.QuizScore); err != nil {
		if errors.Is(err, services.ErrLessonNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save progress",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson completed",
	})
}

// GetMyCourses godoc
// @Summary List enrollments with progress
// @Tags enrollments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /me/courses [get]
func (ec *EnrollmentController) GetMyCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	enrollments, err := ec.Service.ListEnrollments(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query enrollments",
		})
	}

	return c.JSON(fiber.Map{
		"enrollments": enrollments,
	})
}

func (ec *EnrollmentController) GetMyCertificates(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	certificates, err := ec.Service.ListCertificates(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query certificates",
		})
	}

	var result []fiber.Map
	for _, enrollment := range certificates {
		result = append(result, fiber.Map{
			"course_id":          enrollment.CourseID,
			"course_title":       enrollment.Course.Title,
			"category":           enrollment.Course.Category.Name,
			"completed_at":       enrollment.CompletedAt,
			"certificate_serial": enrollment.CertificateSerial,
		})
	}

	return c.JSON(fiber.Map{
		"certificates": result,
	})
}
