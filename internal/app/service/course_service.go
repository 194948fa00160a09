package service

import (
	"errors"
	"strings"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/video"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrCourseNotOwned   = errors.New("course has not been purchased")
	ErrVideoUnavailable = errors.New("lesson has no video")
)

type CourseInput struct {
	Name           string           `json:"name" binding:"required"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	ImageURL       string           `json:"image_url"`
	InstructorName string           `json:"instructor_name"`
	IsOnline       bool             `json:"is_online"`
	CompanyID      uint             `json:"company_id"`
	CategoryID     uint             `json:"category_id"`
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || in.Price.IsNegative() {
		return ErrInvalidInput
	}
	if in.SalePrice != nil && (in.SalePrice.IsNegative() || in.SalePrice.GreaterThan(in.Price)) {
		return ErrInvalidInput
	}
	return nil
}

type LessonInput struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	BunnyLibraryID *string `json:"bunny_library_id"`
	BunnyVideoID   string  `json:"bunny_video_id"`
	VideoURL       string  `json:"video_url"`
	Order          int     `json:"order"`
}

type CourseService interface {
	ListCourses(filter repository.CatalogFilter) ([]model.Course, int64, error)
	GetCourse(id uint) (*model.Course, error)
	CreateCourse(actor Actor, input CourseInput) (*model.Course, error)
	UpdateCourse(actor Actor, id uint, input CourseInput) (*model.Course, error)
	DeleteCourse(actor Actor, id uint) error

	AddLesson(actor Actor, courseID uint, input LessonInput) (*model.Lesson, error)
	UpdateLesson(actor Actor, courseID, lessonID uint, input LessonInput) (*model.Lesson, error)
	DeleteLesson(actor Actor, courseID, lessonID uint) error
	// LessonVideoURL returns a playable URL for enrolled users and admins.
	LessonVideoURL(userID uint, role model.UserRole, courseID, lessonID uint) (string, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
	orderRepo  repository.OrderRepository
	signer     video.BunnySigner
	now        func() time.Time
}

func NewCourseService(
	courseRepo repository.CourseRepository,
	orderRepo repository.OrderRepository,
	signer video.BunnySigner,
) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		orderRepo:  orderRepo,
		signer:     signer,
		now:        time.Now,
	}
}

func (s *courseService) ListCourses(filter repository.CatalogFilter) ([]model.Course, int64, error) {
	courses, total, err := s.courseRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list courses", err)
		return nil, 0, err
	}
	return courses, total, nil
}

// GetCourse includes the lessons in display order.
func (s *courseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByIDWithLessons(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *courseService) managedCourse(actor Actor, id uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if !actor.CanManage(course.CompanyID) {
		return nil, ErrCompanyScope
	}
	return course, nil
}

func (s *courseService) CreateCourse(actor Actor, input CourseInput) (*model.Course, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	companyID, err := actor.owningCompany(input.CompanyID)
	if err != nil {
		return nil, err
	}

	course := &model.Course{}
	applyCourseInput(course, input)
	course.CompanyID = companyID
	if err := s.courseRepo.Create(course); err != nil {
		return nil, err
	}

	logger.Info("Course created", map[string]interface{}{
		"course_id":  course.ID,
		"company_id": companyID,
		"actor_id":   actor.UserID,
	})
	return course, nil
}

func (s *courseService) UpdateCourse(actor Actor, id uint, input CourseInput) (*model.Course, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	course, err := s.managedCourse(actor, id)
	if err != nil {
		return nil, err
	}

	companyID := course.CompanyID
	applyCourseInput(course, input)
	if actor.Role != model.RoleAdmin || input.CompanyID == 0 {
		course.CompanyID = companyID
	}
	if err := s.courseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) DeleteCourse(actor Actor, id uint) error {
	if _, err := s.managedCourse(actor, id); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	logger.Info("Course deleted", map[string]interface{}{
		"course_id": id,
		"actor_id":  actor.UserID,
	})
	return nil
}

func (s *courseService) AddLesson(actor Actor, courseID uint, input LessonInput) (*model.Lesson, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.managedCourse(actor, courseID); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{CourseID: courseID}
	applyLessonInput(lesson, input)
	if err := s.courseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *courseService) lesson(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.courseRepo.FindLesson(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (s *courseService) UpdateLesson(actor Actor, courseID, lessonID uint, input LessonInput) (*model.Lesson, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.managedCourse(actor, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.lesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	applyLessonInput(lesson, input)
	if err := s.courseRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *courseService) DeleteLesson(actor Actor, courseID, lessonID uint) error {
	if _, err := s.managedCourse(actor, courseID); err != nil {
		return err
	}
	if err := s.courseRepo.DeleteLesson(courseID, lessonID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return nil
}

func (s *courseService) LessonVideoURL(userID uint, role model.UserRole, courseID, lessonID uint) (string, error) {
	lesson, err := s.lesson(courseID, lessonID)
	if err != nil {
		return "", err
	}

	if role != model.RoleAdmin {
		enrolled, err := s.orderRepo.HasPurchased(userID, model.CourseRef(courseID), coursePurchaseStatuses)
		if err != nil {
			return "", err
		}
		if !enrolled {
			logger.Warn("Video access denied: course not purchased", map[string]interface{}{
				"user_id":   userID,
				"course_id": courseID,
			})
			return "", ErrCourseNotOwned
		}
	}

	url := lesson.VideoURL
	if lesson.BunnyLibraryID != nil && lesson.BunnyVideoID != "" {
		url = s.signer.PlaylistURL(*lesson.BunnyLibraryID, lesson.BunnyVideoID, s.now())
	}
	if url == "" {
		return "", ErrVideoUnavailable
	}
	return url, nil
}

func applyCourseInput(c *model.Course, in CourseInput) {
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	c.Price = in.Price
	c.SalePrice = in.SalePrice
	c.ImageURL = in.ImageURL
	c.InstructorName = in.InstructorName
	c.IsOnline = in.IsOnline
	c.CompanyID = in.CompanyID
	c.CategoryID = in.CategoryID
}

func applyLessonInput(l *model.Lesson, in LessonInput) {
	l.Title = strings.TrimSpace(in.Title)
	l.Description = in.Description
	l.BunnyLibraryID = in.BunnyLibraryID
	l.BunnyVideoID = in.BunnyVideoID
	l.VideoURL = in.VideoURL
	l.Order = in.Order
}
