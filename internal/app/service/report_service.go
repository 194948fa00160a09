package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/cache"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	statsCacheTTL      = time.Minute
	analyticsMonths    = 6
	topItemsLimit      = 5
	monthLabelLayout   = "Jan 2006"
	ordersExportSheet  = "Orders"
	ordersExportMaxRow = 10000
)

var completedStatuses = []model.OrderStatus{model.OrderStatusCompleted}

type DashboardStats struct {
	TotalProducts  int64           `json:"totalProducts"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalMarketers int64           `json:"totalMarketers"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	TotalCourses   int64           `json:"totalCourses"`
	TotalStudents  int64           `json:"totalStudents"`
}

type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Analytics struct {
	MonthlySales       []MonthlyTotal             `json:"monthlySales"`
	SalesByCategory    []repository.CategorySales `json:"salesByCategory"`
	TopProducts        []repository.TopItem       `json:"topProducts"`
	TopCourses         []repository.TopItem       `json:"topCourses"`
	MonthlyEnrollments []MonthlyCount             `json:"monthlyEnrollments"`
}

type AdminOrderLine struct {
	Item      model.ItemRef   `json:"item"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type AdminOrderView struct {
	Order *model.Order     `json:"order"`
	Lines []AdminOrderLine `json:"lines"`
}

type ReportService interface {
	DashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error)
	Analytics(now time.Time) (*Analytics, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	OrderDetail(orderID uint) (*AdminOrderView, error)
	ExportOrders(filter repository.OrderFilter) ([]byte, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	cache      cache.Cache
}

func NewReportService(
	reportRepo repository.ReportRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	c cache.Cache,
) ReportService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &reportService{
		reportRepo: reportRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		cache:      c,
	}
}

func statsCacheKey(companyID *uint) string {
	if companyID == nil {
		return "dashboard_stats:all"
	}
	return fmt.Sprintf("dashboard_stats:company:%d", *companyID)
}

// DashboardStats is scoped to the company of a company admin and cached briefly.
func (s *reportService) DashboardStats(ctx context.Context, actor Actor) (*DashboardStats, error) {
	companyID := actor.CompanyScope()
	key := statsCacheKey(companyID)

	var stats DashboardStats
	if err := s.cache.Get(ctx, key, &stats); err == nil {
		return &stats, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn("Dashboard stats cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var err error
	if stats.TotalProducts, err = s.reportRepo.CountProducts(companyID); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.reportRepo.CountOrders(companyID); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.reportRepo.CountCourses(companyID); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.reportRepo.CountStudents(companyID); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.reportRepo.Revenue(companyID, time.Now().AddDate(0, -1, 0), completedStatuses); err != nil {
		return nil, err
	}
	if companyID == nil {
		if stats.TotalMarketers, err = s.userRepo.CountByRole(model.RoleMarketer); err != nil {
			return nil, err
		}
	}

	if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
		logger.Warn("Dashboard stats cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return &stats, nil
}

// monthBuckets returns the first day of each of the last n months, oldest first.
func monthBuckets(now time.Time, n int) []time.Time {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = start.AddDate(0, i-n+1, 0)
	}
	return months
}

func monthIndex(months []time.Time, t time.Time) int {
	t = t.In(months[0].Location())
	for i := len(months) - 1; i >= 0; i-- {
		if !t.Before(months[i]) {
			return i
		}
	}
	return -1
}

func (s *reportService) Analytics(now time.Time) (*Analytics, error) {
	months := monthBuckets(now, analyticsMonths)
	since := months[0]

	points, err := s.reportRepo.SalePoints(since, completedStatuses)
	if err != nil {
		return nil, err
	}
	sales := make([]MonthlyTotal, len(months))
	for i, m := range months {
		sales[i] = MonthlyTotal{Month: m.Format(monthLabelLayout), Total: decimal.Zero}
	}
	for _, p := range points {
		if i := monthIndex(months, p.OrderDate); i >= 0 {
			sales[i].Total = sales[i].Total.Add(p.OrderTotal)
		}
	}

	dates, err := s.reportRepo.EnrollmentDates(since, coursePurchaseStatuses)
	if err != nil {
		return nil, err
	}
	enrollments := make([]MonthlyCount, len(months))
	for i, m := range months {
		enrollments[i] = MonthlyCount{Month: m.Format(monthLabelLayout)}
	}
	for _, d := range dates {
		if i := monthIndex(months, d); i >= 0 {
			enrollments[i].Count++
		}
	}

	byCategory, err := s.reportRepo.SalesByCategory(completedStatuses)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.reportRepo.TopItems(model.ItemTypeProduct, completedStatuses, topItemsLimit)
	if err != nil {
		return nil, err
	}
	topCourses, err := s.reportRepo.TopItems(model.ItemTypeCourse, coursePurchaseStatuses, topItemsLimit)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		MonthlySales:       sales,
		SalesByCategory:    byCategory,
		TopProducts:        topProducts,
		TopCourses:         topCourses,
		MonthlyEnrollments: enrollments,
	}, nil
}

func (s *reportService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, model.ErrInvalidOrderStatus
	}
	return s.orderRepo.List(filter)
}

func (s *reportService) OrderDetail(orderID uint) (*AdminOrderView, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	names, err := s.reportRepo.DetailNames(order.Details)
	if err != nil {
		return nil, err
	}

	view := &AdminOrderView{Order: order, Lines: make([]AdminOrderLine, 0, len(order.Details))}
	for _, d := range order.Details {
		view.Lines = append(view.Lines, AdminOrderLine{
			Item:      d.Item,
			Name:      names[d.Item],
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			LineTotal: d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity))),
		})
	}
	return view, nil
}

// ExportOrders renders the filtered orders as an xlsx workbook.
func (s *reportService) ExportOrders(filter repository.OrderFilter) ([]byte, error) {
	filter.Offset = 0
	if filter.Limit <= 0 || filter.Limit > ordersExportMaxRow {
		filter.Limit = ordersExportMaxRow
	}
	orders, _, err := s.ListOrders(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ordersExportSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Order ID", "Order Date", "User ID", "Status", "Payment Method", "Payment ID", "Total", "Shipping Address", "Phone"}
	if err := f.SetSheetRow(ordersExportSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, o := range orders {
		paymentID := ""
		if o.PaymentID != nil {
			paymentID = *o.PaymentID
		}
		total, _ := o.OrderTotal.Float64()
		row := []interface{}{
			o.ID,
			o.OrderDate.Format("2006-01-02 15:04"),
			o.UserID,
			string(o.Status),
			string(o.PaymentMethod),
			paymentID,
			total,
			o.ShippingAddress,
			o.PhoneNumber,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ordersExportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		logger.Error("Failed to write orders export", err)
		return nil, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"rows": len(orders),
	})
	return buf.Bytes(), nil
}
