package repository

import (
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

type CourseRepository interface {
	Create(course *model.Course) error
	FindWithFilter(filter CatalogFilter) ([]model.Course, int64, error)
	FindByID(id uint) (*model.Course, error)
	FindByIDWithLessons(id uint) (*model.Course, error)
	Update(course *model.Course) error
	Delete(id uint) error

	CreateLesson(lesson *model.Lesson) error
	FindLesson(courseID, lessonID uint) (*model.Lesson, error)
	UpdateLesson(lesson *model.Lesson) error
	DeleteLesson(courseID, lessonID uint) error
}

type courseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(course *model.Course) error {
	logger.Debug("Creating course in database", map[string]interface{}{
		"name":       course.Name,
		"company_id": course.CompanyID,
	})

	if err := r.db.Omit("Lessons").Create(course).Error; err != nil {
		logger.Error("Failed to create course in database", err, map[string]interface{}{
			"name": course.Name,
		})
		return err
	}
	return nil
}

func (r *courseRepository) FindWithFilter(filter CatalogFilter) ([]model.Course, int64, error) {
	var total int64
	if err := filter.apply(r.db.Model(&model.Course{}), "courses", "name", "description", "instructor_name").Count(&total).Error; err != nil {
		logger.Error("Failed to count courses", err, nil)
		return nil, 0, err
	}

	var courses []model.Course
	query := filter.apply(r.db.Model(&model.Course{}), "courses", "name", "description", "instructor_name").
		Order(filter.order("courses", true))
	if err := filter.page(query).Find(&courses).Error; err != nil {
		logger.Error("Failed to find courses with filter", err, nil)
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *courseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.db.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) FindByIDWithLessons(id uint) (*model.Course, error) {
	var course model.Course
	err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) Update(course *model.Course) error {
	if err := r.db.Omit("Lessons").Save(course).Error; err != nil {
		logger.Error("Failed to update course in database", err, map[string]interface{}{
			"course_id": course.ID,
		})
		return err
	}
	return nil
}

func (r *courseRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseRepository) CreateLesson(lesson *model.Lesson) error {
	if err := r.db.Create(lesson).Error; err != nil {
		logger.Error("Failed to create lesson in database", err, map[string]interface{}{
			"course_id": lesson.CourseID,
		})
		return err
	}
	return nil
}

func (r *courseRepository) FindLesson(courseID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Where("course_id = ? AND id = ?", courseID, lessonID).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *courseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.db.Save(lesson).Error
}

func (r *courseRepository) DeleteLesson(courseID, lessonID uint) error {
	result := r.db.Where("course_id = ? AND id = ?", courseID, lessonID).Delete(&model.Lesson{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
