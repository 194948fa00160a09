package repository

import (
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalePoint is one order total at a point in time; services bucket them by month.
type SalePoint struct {
	OrderDate  time.Time
	OrderTotal decimal.Decimal
}

type CategorySales struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type TopItem struct {
	ItemID   uint            `json:"item_id"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ReportRepository runs the read-only aggregations behind the admin dashboards.
// A nil companyID means platform-wide; otherwise results cover that company's items only.
type ReportRepository interface {
	CountProducts(companyID *uint) (int64, error)
	CountCourses(companyID *uint) (int64, error)
	CountOrders(companyID *uint) (int64, error)
	CountStudents(companyID *uint) (int64, error)
	Revenue(companyID *uint, since time.Time, statuses []model.OrderStatus) (decimal.Decimal, error)
	SalePoints(since time.Time, statuses []model.OrderStatus) ([]SalePoint, error)
	EnrollmentDates(since time.Time, statuses []model.OrderStatus) ([]time.Time, error)
	SalesByCategory(statuses []model.OrderStatus) ([]CategorySales, error)
	TopItems(itemType model.ItemType, statuses []model.OrderStatus, limit int) ([]TopItem, error)
	DetailNames(details []model.OrderDetail) (map[model.ItemRef]string, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountProducts(companyID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&model.Product{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *reportRepository) CountCourses(companyID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&model.Course{})
	if companyID != nil {
		query = query.Where("company_id = ?", *companyID)
	}
	err := query.Count(&count).Error
	return count, err
}

// companyLines restricts order_details to lines whose product or course belongs to companyID.
func companyLines(query *gorm.DB, companyID uint) *gorm.DB {
	return query.
		Joins("LEFT JOIN products ON order_details.item_type = 'product' AND products.id = order_details.item_id").
		Joins("LEFT JOIN courses ON order_details.item_type = 'course' AND courses.id = order_details.item_id").
		Where("products.company_id = ? OR courses.company_id = ?", companyID, companyID)
}

func (r *reportRepository) CountOrders(companyID *uint) (int64, error) {
	var count int64
	if companyID == nil {
		err := r.db.Model(&model.Order{}).Count(&count).Error
		return count, err
	}
	err := companyLines(r.db.Model(&model.OrderDetail{}), *companyID).
		Distinct("order_details.order_id").
		Count(&count).Error
	return count, err
}

// CountStudents counts distinct users holding at least one course line.
func (r *reportRepository) CountStudents(companyID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&model.OrderDetail{}).
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Where("order_details.item_type = ?", model.ItemTypeCourse)
	if companyID != nil {
		query = query.Joins("JOIN courses ON courses.id = order_details.item_id").
			Where("courses.company_id = ?", *companyID)
	}
	err := query.Distinct("orders.user_id").Count(&count).Error
	return count, err
}

func (r *reportRepository) Revenue(companyID *uint, since time.Time, statuses []model.OrderStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	var err error
	if companyID == nil {
		err = r.db.Model(&model.Order{}).
			Select("COALESCE(SUM(order_total), 0)").
			Where("order_date >= ? AND status IN ?", since, statuses).
			Row().Scan(&total)
	} else {
		err = companyLines(r.db.Model(&model.OrderDetail{}), *companyID).
			Select("COALESCE(SUM(order_details.unit_price * order_details.quantity), 0)").
			Joins("JOIN orders ON orders.id = order_details.order_id").
			Where("orders.order_date >= ? AND orders.status IN ?", since, statuses).
			Row().Scan(&total)
	}
	if err != nil {
		logger.Error("Failed to compute revenue", err, map[string]interface{}{
			"company_id": companyID,
		})
		return decimal.Zero, err
	}
	return total, nil
}

func (r *reportRepository) SalePoints(since time.Time, statuses []model.OrderStatus) ([]SalePoint, error) {
	var points []SalePoint
	err := r.db.Model(&model.Order{}).
		Select("order_date, order_total").
		Where("order_date >= ? AND status IN ?", since, statuses).
		Order("order_date ASC").
		Find(&points).Error
	if err != nil {
		logger.Error("Failed to load sale points", err, nil)
		return nil, err
	}
	return points, nil
}

func (r *reportRepository) EnrollmentDates(since time.Time, statuses []model.OrderStatus) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.Model(&model.OrderDetail{}).
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Where("order_details.item_type = ? AND orders.order_date >= ? AND orders.status IN ?",
			model.ItemTypeCourse, since, statuses).
		Order("orders.order_date ASC").
		Pluck("orders.order_date", &dates).Error
	if err != nil {
		logger.Error("Failed to load enrollment dates", err, nil)
		return nil, err
	}
	return dates, nil
}

// SalesByCategory totals product and course lines per category name.
func (r *reportRepository) SalesByCategory(statuses []model.OrderStatus) ([]CategorySales, error) {
	var rows []CategorySales
	err := r.db.Model(&model.OrderDetail{}).
		Select("categories.name AS category, COALESCE(SUM(order_details.unit_price * order_details.quantity), 0) AS total").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("LEFT JOIN products ON order_details.item_type = 'product' AND products.id = order_details.item_id").
		Joins("LEFT JOIN courses ON order_details.item_type = 'course' AND courses.id = order_details.item_id").
		Joins("JOIN categories ON categories.id = COALESCE(products.category_id, courses.category_id)").
		Where("orders.status IN ?", statuses).
		Group("categories.name").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to compute sales by category", err, nil)
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) TopItems(itemType model.ItemType, statuses []model.OrderStatus, limit int) ([]TopItem, error) {
	var table string
	switch itemType {
	case model.ItemTypeProduct:
		table = "products"
	case model.ItemTypeCourse:
		table = "courses"
	default:
		return nil, model.ErrInvalidItemRef
	}

	var rows []TopItem
	err := r.db.Model(&model.OrderDetail{}).
		Select(table+".id AS item_id, "+table+".name AS name, SUM(order_details.quantity) AS quantity, SUM(order_details.unit_price * order_details.quantity) AS revenue").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN "+table+" ON "+table+".id = order_details.item_id").
		Where("order_details.item_type = ? AND orders.status IN ?", itemType, statuses).
		Group(table + ".id, " + table + ".name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to compute top items", err, map[string]interface{}{
			"item_type": itemType,
		})
		return nil, err
	}
	return rows, nil
}

// DetailNames resolves the display name of every item referenced by details.
func (r *reportRepository) DetailNames(details []model.OrderDetail) (map[model.ItemRef]string, error) {
	ids := map[model.ItemType][]uint{}
	for _, d := range details {
		ids[d.Item.Type] = append(ids[d.Item.Type], d.Item.ID)
	}

	names := make(map[model.ItemRef]string, len(details))
	load := func(itemType model.ItemType, m interface{}) error {
		type named struct {
			ID   uint
			Name string
		}
		var rows []named
		if err := r.db.Model(m).Select("id, name").Where("id IN ?", ids[itemType]).Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			names[model.ItemRef{Type: itemType, ID: row.ID}] = row.Name
		}
		return nil
	}

	if len(ids[model.ItemTypeProduct]) > 0 {
		if err := load(model.ItemTypeProduct, &model.Product{}); err != nil {
			return nil, err
		}
	}
	if len(ids[model.ItemTypeCourse]) > 0 {
		if err := load(model.ItemTypeCourse, &model.Course{}); err != nil {
			return nil, err
		}
	}
	if len(ids[model.ItemTypeTravelPackage]) > 0 {
		if err := load(model.ItemTypeTravelPackage, &model.TravelPackage{}); err != nil {
			return nil, err
		}
	}
	return names, nil
}
