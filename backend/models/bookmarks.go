package models

import "gorm.io/gorm"

// Bookmark points at either a sermon or a course, never both.
type Bookmark struct {
	gorm.Model
	UserID   uint `gorm:"not null;index"`
	SermonID *uint
	CourseID *uint
	Sermon   *Sermon
	Course   *Course
}
