package services

import (
	"fmt"
	"project/backend/models"
	"project/backend/utils"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Named shared in-memory database so every pooled connection sees the
	// same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, utils.MigrateDB(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", FullName: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, title string, publishedLessons, unpublishedLessons int) (models.Course, []models.Lesson) {
	t.Helper()

	category := models.CourseCategory{Name: title + " Category", Slug: utils.Slugify(title + " Category")}
	require.NoError(t, db.Create(&category).Error)

	course := models.Course{
		CategoryID:  category.ID,
		Title:       title,
		Slug:        utils.Slugify(title),
		IsPublished: true,
	}
	require.NoError(t, db.Create(&course).Error)

	var lessons []models.Lesson
	for i := 0; i < publishedLessons; i++ {
		lesson := models.Lesson{
			CourseID:    course.ID,
			Title:       fmt.Sprintf("%s Lesson %d", title, i+1),
			Slug:        utils.Slugify(fmt.Sprintf("%s Lesson %d", title, i+1)),
			SortOrder:   i,
			IsPublished: true,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	for i := 0; i < unpublishedLessons; i++ {
		lesson := models.Lesson{
			CourseID:    course.ID,
			Title:       fmt.Sprintf("%s Draft %d", title, i+1),
			Slug:        utils.Slugify(fmt.Sprintf("%s Draft %d", title, i+1)),
			SortOrder:   publishedLessons + i,
			IsPublished: false,
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}

	return course, lessons
}

func TestEnrollDuplicate(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "dup@example.com")
	course, _ := createCourse(t, db, "Doctrine Basics", 2, 0)

	_, err := service.Enroll(user.ID, course.ID)
	assert.NoError(t, err)

	_, err = service.Enroll(user.ID, course.ID)
	assert.ErrorIs(t, err, ErrDuplicateEnrollment)

	var count int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollCourseNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "nocourse@example.com")

	_, err := service.Enroll(user.ID, 9999)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestEnrollNotAuthenticated(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	course, _ := createCourse(t, db, "Anon Course", 1, 0)

	_, err := service.Enroll(0, course.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, service.Unenroll(0, course.ID), ErrNotAuthenticated)
	assert.ErrorIs(t, service.MarkLessonComplete(0, 1, nil), ErrNotAuthenticated)
	_, err = service.ComputeProgress(0, course.ID)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestCourseCompletionScenario(t *testing.T) {
	// Course "Faith 101" has 3 published lessons. Progress goes 0/3 ->
	// 2/3 (67%) -> 3/3 (100%) and completion is stamped on the last one.
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "faith@example.com")
	course, lessons := createCourse(t, db, "Faith 101", 3, 0)

	enrollment, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, enrollment.CompletedAt)

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedLessons)
	assert.Equal(t, 3, progress.TotalLessons)
	assert.Equal(t, 0, progress.Percent)

	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))

	progress, err = service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.CompletedLessons)
	assert.Equal(t, 67, progress.Percent)

	var stored models.Enrollment
	require.NoError(t, db.First(&stored, enrollment.ID).Error)
	assert.Nil(t, stored.CompletedAt)

	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[2].ID, nil))

	progress, err = service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.CompletedLessons)
	assert.Equal(t, 100, progress.Percent)

	require.NoError(t, db.First(&stored, enrollment.ID).Error)
	require.NotNil(t, stored.CompletedAt)
	assert.NotEmpty(t, stored.CertificateSerial)
}

func TestCompletionOrderIndependent(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "order@example.com")
	course, lessons := createCourse(t, db, "Order Course", 3, 0)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	// Reverse order must converge on the same final state.
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[2].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Percent)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestMarkLessonCompleteIdempotent(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "idem@example.com")
	course, lessons := createCourse(t, db, "Idempotent Course", 2, 0)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedLessons)

	var rows int64
	db.Model(&models.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).
		Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestCompletionMonotonic(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "mono@example.com")
	course, lessons := createCourse(t, db, "Monotonic Course", 2, 0)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))

	var before models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&before).Error)
	require.NotNil(t, before.CompletedAt)

	// A lesson published after completion does not reopen the enrollment,
	// and completing it must not move the completion timestamp.
	extra := models.Lesson{
		CourseID:    course.ID,
		Title:       "Late Lesson",
		Slug:        "late-lesson",
		SortOrder:   99,
		IsPublished: true,
	}
	require.NoError(t, db.Create(&extra).Error)
	require.NoError(t, service.MarkLessonComplete(user.ID, extra.ID, nil))

	var after models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&after).Error)
	require.NotNil(t, after.CompletedAt)
	assert.True(t, before.CompletedAt.Equal(*after.CompletedAt))
	assert.Equal(t, before.CertificateSerial, after.CertificateSerial)
}

func TestZeroPublishedLessonsNeverCompletes(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "empty@example.com")
	course, lessons := createCourse(t, db, "Empty Course", 0, 1)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.TotalLessons)
	assert.Equal(t, 0, progress.Percent)

	// Completing the only (unpublished) lesson must not auto-complete a
	// course with zero published lessons.
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error)
	assert.Nil(t, enrollment.CompletedAt)
}

func TestUnpublishedLessonsExcluded(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "draft@example.com")
	course, lessons := createCourse(t, db, "Draft Course", 2, 1)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, progress.TotalLessons)
	assert.Equal(t, 100, progress.Percent)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&enrollment).Error)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestMarkLessonCompleteQuizScore(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "quiz@example.com")
	course, lessons := createCourse(t, db, "Quiz Course", 2, 0)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)

	score := 85.0
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, &score))

	var progress models.LessonProgress
	require.NoError(t, db.Where("user_id = ? AND lesson_id = ?", user.ID, lessons[0].ID).First(&progress).Error)
	require.NotNil(t, progress.QuizScore)
	assert.Equal(t, 85.0, *progress.QuizScore)
}

func TestMarkLessonCompleteLessonNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "missing@example.com")

	assert.ErrorIs(t, service.MarkLessonComplete(user.ID, 4242, nil), ErrLessonNotFound)
}

func TestUnenrollCascadesProgress(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "cascade@example.com")
	course, lessons := createCourse(t, db, "Cascade Course", 2, 1)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[2].ID, nil)) // unpublished draft

	require.NoError(t, service.Unenroll(user.ID, course.ID))

	var progressRows int64
	db.Model(&models.LessonProgress{}).Where("user_id = ?", user.ID).Count(&progressRows)
	assert.Equal(t, int64(0), progressRows)

	var enrollmentRows int64
	db.Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&enrollmentRows)
	assert.Equal(t, int64(0), enrollmentRows)

	_, err = service.ComputeProgress(user.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	assert.ErrorIs(t, service.Unenroll(user.ID, course.ID), ErrNotEnrolled)
}

func TestReEnrollAfterUnenroll(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "again@example.com")
	course, lessons := createCourse(t, db, "Repeat Course", 2, 0)

	_, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))
	require.NoError(t, service.Unenroll(user.ID, course.ID))

	// Unenrolling must free the (user, course) slot: the second enrollment
	// starts from scratch, with no progress or completion carried over.
	enrollment, err := service.Enroll(user.ID, course.ID)
	require.NoError(t, err)
	assert.Nil(t, enrollment.CompletedAt)
	assert.Empty(t, enrollment.CertificateSerial)

	progress, err := service.ComputeProgress(user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedLessons)
	assert.Equal(t, 2, progress.TotalLessons)

	// And the state machine works again on the fresh enrollment.
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessons[1].ID, nil))

	var stored models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).First(&stored).Error)
	assert.NotNil(t, stored.CompletedAt)
}

func TestUnenrollLeavesOtherCoursesAlone(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "two@example.com")
	courseA, lessonsA := createCourse(t, db, "Course A", 2, 0)
	courseB, lessonsB := createCourse(t, db, "Course B", 2, 0)

	_, err := service.Enroll(user.ID, courseA.ID)
	require.NoError(t, err)
	_, err = service.Enroll(user.ID, courseB.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessonsA[0].ID, nil))
	require.NoError(t, service.MarkLessonComplete(user.ID, lessonsB[0].ID, nil))

	require.NoError(t, service.Unenroll(user.ID, courseA.ID))

	progress, err := service.ComputeProgress(user.ID, courseB.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedLessons)
	assert.Equal(t, 2, progress.TotalLessons)
}

func TestComputeProgressNotEnrolled(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "outsider@example.com")
	course, _ := createCourse(t, db, "Outside Course", 3, 0)

	_, err := service.ComputeProgress(user.ID, course.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestListEnrollmentsWithProgress(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "list@example.com")
	courseA, lessonsA := createCourse(t, db, "List Course A", 2, 0)
	courseB, _ := createCourse(t, db, "List Course B", 3, 0)

	_, err := service.Enroll(user.ID, courseA.ID)
	require.NoError(t, err)
	_, err = service.Enroll(user.ID, courseB.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessonsA[0].ID, nil))

	enrollments, err := service.ListEnrollments(user.ID)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)

	byCourse := make(map[uint]EnrollmentWithProgress)
	for _, e := range enrollments {
		byCourse[e.CourseID] = e
		assert.NotEmpty(t, e.Course.Title)
	}

	assert.Equal(t, 1, byCourse[courseA.ID].Progress.CompletedLessons)
	assert.Equal(t, 50, byCourse[courseA.ID].Progress.Percent)
	assert.Equal(t, 0, byCourse[courseB.ID].Progress.CompletedLessons)
	assert.Equal(t, 3, byCourse[courseB.ID].Progress.TotalLessons)
}

func TestListCertificates(t *testing.T) {
	db := setupTestDB(t)
	service := NewEnrollmentService(db)
	user := createUser(t, db, "cert@example.com")
	courseA, lessonsA := createCourse(t, db, "Cert Course", 1, 0)
	courseB, _ := createCourse(t, db, "Unfinished Course", 2, 0)

	_, err := service.Enroll(user.ID, courseA.ID)
	require.NoError(t, err)
	_, err = service.Enroll(user.ID, courseB.ID)
	require.NoError(t, err)
	require.NoError(t, service.MarkLessonComplete(user.ID, lessonsA[0].ID, nil))

	certificates, err := service.ListCertificates(user.ID)
	require.NoError(t, err)
	require.Len(t, certificates, 1)
	assert.Equal(t, courseA.ID, certificates[0].CourseID)
	assert.NotEmpty(t, certificates[0].CertificateSerial)
}
