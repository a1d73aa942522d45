package models

import "time"

// Enrollment is a user's registration in a course. CompletedAt is stamped
// exactly once, when every published lesson of the course is completed.
//
// No soft delete here: an unenroll must free the (user, course) unique index
// so the user can enroll again later.
type Enrollment struct {
	ID                uint `gorm:"primarykey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	UserID            uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID          uint `gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	EnrolledAt        time.Time
	CompletedAt       *time.Time
	CertificateSerial string
	Course            Course
}

// LessonProgress is a user's completion record for a single lesson. Hard
// deleted on unenroll for the same reason as Enrollment: a retained row would
// shadow the (user, lesson) index on re-enrollment.
type LessonProgress struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	LessonID    uint `gorm:"not null;uniqueIndex:idx_progress_user_lesson"`
	Completed   bool `gorm:"default:false"`
	CompletedAt *time.Time
	QuizScore   *float64
}
