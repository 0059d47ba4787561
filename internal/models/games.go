package models

import "time"

type Game struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug        string    `json:"slug" gorm:"type:varchar(255);uniqueIndex:idx_games_slug;not null"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"type:varchar(500);not null"`
	Featured    bool      `json:"featured" gorm:"not null;default:false"`
	SourceURL   string    `json:"source_url,omitempty" gorm:"type:varchar(500);index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Game) TableName() string {
	return "games"
}
