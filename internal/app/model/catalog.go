package model

import (
	"time"

	"gorm.io/gorm"
)

type Company struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	LogoURL     string         `json:"logo_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;type:varchar(100)" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type BlogPost struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Subtitle       string         `json:"subtitle"`
	Content        string         `gorm:"type:text" json:"content"`
	AuthorName     string         `json:"author_name"`
	AuthorTitle    string         `json:"author_title"`
	AuthorImageURL string         `json:"author_image_url"`
	ImageURL       string         `json:"image_url"`
	PublishDate    time.Time      `gorm:"index" json:"publish_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}
