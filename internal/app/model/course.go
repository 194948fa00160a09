package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Course struct {
	ID             uint             `gorm:"primarykey" json:"id"`
	Name           string           `gorm:"not null" json:"name"`
	Description    string           `gorm:"type:text" json:"description"`
	Price          decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	SalePrice      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price,omitempty"`
	ImageURL       string           `json:"image_url"`
	InstructorName string           `json:"instructor_name"`
	IsOnline       bool             `gorm:"default:true" json:"is_online"`
	CompanyID      uint             `gorm:"index" json:"company_id"`
	CategoryID     uint             `gorm:"index" json:"category_id"`
	AverageRating  float64          `gorm:"default:0" json:"average_rating"`
	RatingCount    int              `gorm:"default:0" json:"rating_count"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"` // read-only, preloaded for detail views
}

func (Course) TableName() string {
	return "courses"
}

func (c Course) EffectivePrice() decimal.Decimal {
	if c.SalePrice != nil {
		return *c.SalePrice
	}
	return c.Price
}

type Lesson struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	CourseID       uint      `gorm:"not null;index" json:"course_id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	BunnyLibraryID *string   `gorm:"type:varchar(50)" json:"-"`
	BunnyVideoID   string    `gorm:"type:varchar(100)" json:"-"`
	VideoURL       string    `json:"-"`
	Order          int       `gorm:"column:sort_order;default:0" json:"order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}
