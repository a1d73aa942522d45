package services

import (
	"errors"
	"fmt"
	"math"
	"project/backend/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrDuplicateEnrollment = errors.New("already enrolled in this course")
	ErrNotEnrolled         = errors.New("not enrolled in this course")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
)

// EnrollmentService owns the enrollment lifecycle and the course completion
// state machine. Completion is evaluated only when a lesson is marked
// complete, never retroactively when lessons are published or unpublished.
type EnrollmentService struct {
	DB *gorm.DB
}

func NewEnrollmentService(db *gorm.DB) *EnrollmentService {
	return &EnrollmentService{DB: db}
}

// CourseProgress is the read model for a single enrollment.
type CourseProgress struct {
	CompletedLessons int `json:"completed_lessons"`
	TotalLessons     int `json:"total_lessons"`
	Percent          int `json:"percent"`
}

// EnrollmentWithProgress pairs an enrollment with its computed progress for
// the profile view.
type EnrollmentWithProgress struct {
	models.Enrollment
	Progress CourseProgress `json:"progress"`
}

// Enroll registers a user in a course. The (user, course) unique index is the
// only guard against concurrent double-enrollment; a check-then-insert here
// would be racy.
func (s *EnrollmentService) Enroll(userID, courseID uint) (*models.Enrollment, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var course models.Course
	if err := s.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("could not query course: %w", err)
	}

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	if err := s.DB.Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEnrollment
		}
		return nil, fmt.Errorf("could not create enrollment: %w", err)
	}

	return &enrollment, nil
}

// Unenroll removes the enrollment and every lesson-progress row the user has
// for lessons of that course, published or not. Both deletes run in one
// transaction so a failure cannot leave an enrollment without its progress
// rows or the other way around.
func (s *EnrollmentService) Unenroll(userID, courseID uint) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var enrollment models.Enrollment
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return fmt.Errorf("could not query enrollment: %w", err)
		}

		var lessonIDs []uint
		if err := tx.Model(&models.Lesson{}).Where("course_id = ?", courseID).Pluck("id", &lessonIDs).Error; err != nil {
			return fmt.Errorf("could not query lessons: %w", err)
		}

		if len(lessonIDs) > 0 {
			err := tx.Where("user_id = ? AND lesson_id IN ?", userID, lessonIDs).
				Delete(&models.LessonProgress{}).Error
			if err != nil {
				return fmt.Errorf("could not delete lesson progress: %w", err)
			}
		}

		if err := tx.Delete(&enrollment).Error; err != nil {
			return fmt.Errorf("could not delete enrollment: %w", err)
		}

		return nil
	})
}

// MarkLessonComplete records the lesson as done for the user and, when that
// was the last published lesson of the course, stamps the enrollment as
// completed. Marking an already-completed lesson is a no-op so repeated
// clicks never re-trigger the completion evaluation.
func (s *EnrollmentService) MarkLessonComplete(userID, lessonID uint, quizScore *float64) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}

	var lesson models.Lesson
	if err := s.DB.First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return fmt.Errorf("could not query lesson: %w", err)
	}

	var existing models.LessonProgress
	err := s.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&existing).Error
	if err == nil && existing.Completed {
		return nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("could not query lesson progress: %w", err)
	}

	now := time.Now()
	progress := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		Completed:   true,
		CompletedAt: &now,
		QuizScore:   quizScore,
	}

	// Concurrent calls for the same (user, lesson) converge on one row;
	// last write wins on the timestamp.
	err = s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "quiz_score", "updated_at"}),
	}).Create(&progress).Error
	if err != nil {
		return fmt.Errorf("could not save lesson progress: %w", err)
	}

	return s.evaluateCompletion(userID, lesson.CourseID, now)
}

// evaluateCompletion transitions the enrollment to completed once every
// published lesson is done. A course with zero published lessons never
// auto-completes. The completed_at IS NULL guard makes the transition
// one-directional and terminal.
func (s *EnrollmentService) evaluateCompletion(userID, courseID uint, now time.Time) error {
	completed, total, err := s.progressCounts(userID, courseID)
	if err != nil {
		return err
	}

	if total == 0 || completed < total {
		return nil
	}

	err = s.DB.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND completed_at IS NULL", userID, courseID).
		Updates(map[string]interface{}{
			"completed_at":       now,
			"certificate_serial": uuid.NewString(),
		}).Error
	if err != nil {
		return fmt.Errorf("could not complete enrollment: %w", err)
	}

	return nil
}

// ComputeProgress returns the completed/total lesson counts and rounded
// percentage for one enrollment. Read-only.
func (s *EnrollmentService) ComputeProgress(userID, courseID uint) (CourseProgress, error) {
	if userID == 0 {
		return CourseProgress{}, ErrNotAuthenticated
	}

	var enrollment models.Enrollment
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CourseProgress{}, ErrNotEnrolled
		}
		return CourseProgress{}, fmt.Errorf("could not query enrollment: %w", err)
	}

	completed, total, err := s.progressCounts(userID, courseID)
	if err != nil {
		return CourseProgress{}, err
	}

	return newCourseProgress(completed, total), nil
}

// ListEnrollments returns the user's enrollments, newest first, each with its
// computed progress.
func (s *EnrollmentService) ListEnrollments(userID uint) ([]EnrollmentWithProgress, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var enrollments []models.Enrollment
	err := s.DB.Preload("Course").Preload("Course.Category").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("could not query enrollments: %w", err)
	}

	result := make([]EnrollmentWithProgress, 0, len(enrollments))
	for _, enrollment := range enrollments {
		completed, total, err := s.progressCounts(userID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		result = append(result, EnrollmentWithProgress{
			Enrollment: enrollment,
			Progress:   newCourseProgress(completed, total),
		})
	}

	return result, nil
}

// ListCertificates returns the user's completed enrollments, most recent
// completion first.
func (s *EnrollmentService) ListCertificates(userID uint) ([]models.Enrollment, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	var enrollments []models.Enrollment
	err := s.DB.Preload("Course").Preload("Course.Category").
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("could not query certificates: %w", err)
	}

	return enrollments, nil
}

// progressCounts counts the published lessons of the course and the user's
// completed progress rows restricted to that published set.
func (s *EnrollmentService) progressCounts(userID, courseID uint) (completed, total int64, err error) {
	err = s.DB.Model(&models.Lesson{}).
		Where("course_id = ? AND is_published = ?", courseID, true).
		Count(&total).Error
	if err != nil {
		return 0, 0, fmt.Errorf("could not count lessons: %w", err)
	}

	err = s.DB.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.completed = ?", userID, true).
		Where("lessons.course_id = ? AND lessons.is_published = ?", courseID, true).
		Count(&completed).Error
	if err != nil {
		return 0, 0, fmt.Errorf("could not count lesson progress: %w", err)
	}

	return completed, total, nil
}

func newCourseProgress(completed, total int64) CourseProgress {
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return CourseProgress{
		CompletedLessons: int(completed),
		TotalLessons:     int(total),
		Percent:          percent,
	}
}
