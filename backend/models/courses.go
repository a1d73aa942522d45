package models

import "gorm.io/gorm"

type CourseCategory struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	ImageURL    string
	SortOrder   int `gorm:"default:0"`
}

type Course struct {
	gorm.Model
	CategoryID   uint
	Title        string `gorm:"not null"`
	Slug         string `gorm:"unique;not null"`
	Description  string
	ThumbnailURL string
	IsPublished  bool `gorm:"default:false"`
	SortOrder    int  `gorm:"default:0"`
	CreatedBy    uint
	Category     CourseCategory
	Lessons      []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID        uint   `gorm:"not null;index"`
	Title           string `gorm:"not null"`
	Slug            string `gorm:"not null"`
	SortOrder       int    `gorm:"default:0"`
	ContentType     string `gorm:"default:text"` // video, text, pdf, quiz
	VideoURL        string
	TextContent     string
	PDFURL          string
	DurationMinutes *int
	// No default tag: gorm would drop an explicit false on insert, silently
	// publishing draft lessons. Callers set the flag themselves.
	IsPublished bool
}
