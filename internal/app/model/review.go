package model

import "time"

const MaxReviewCommentLength = 1000

type Review struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Item       ItemRef   `gorm:"embedded" json:"item"`
	Stars      int       `gorm:"not null" json:"stars"`
	Comment    string    `gorm:"type:varchar(1000)" json:"comment"`
	DatePosted time.Time `gorm:"not null" json:"date_posted"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}
