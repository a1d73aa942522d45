package models

import (
	"time"

	"gorm.io/gorm"
)

type SermonCategory struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Slug        string `gorm:"unique;not null"`
	Description string
	SortOrder   int `gorm:"default:0"`
}

type Sermon struct {
	gorm.Model
	CategoryID   uint
	Title        string `gorm:"not null"`
	Slug         string `gorm:"unique;not null"`
	Description  string
	VideoURL     string
	ThumbnailURL string
	Speaker      string
	SermonDate   time.Time
	// No default tag, same reason as Lesson.IsPublished.
	IsPublished bool
	CreatedBy   uint
	Category    SermonCategory
}
