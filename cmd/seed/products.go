package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column order of the import sheet.
const (
	colName = iota
	colDescription
	colPrice
	colSalePrice
	colStock
	colCategory
	colImageURL
	columnCount
)

type productRow struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	Stock       int
	Category    string
	ImageURL    string
}

type importSummary struct {
	Total   int
	Skipped int
}

func readProductRows(filePath string) ([]productRow, importSummary, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, importSummary{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, importSummary{}, errors.New("no sheets found in XLSX file")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, importSummary{}, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, importSummary{}, errors.New("no data found in XLSX file")
	}

	var (
		products []productRow
		summary  = importSummary{Total: len(rows) - 1}
	)
	// first row is the header
	for _, cells := range rows[1:] {
		row, ok := parseProductRow(cells)
		if !ok {
			summary.Skipped++
			continue
		}
		products = append(products, row)
	}
	return products, summary, nil
}

// parseProductRow rejects rows without a name or a positive price. Trailing empty
// cells are dropped by excelize, so short rows are padded.
func parseProductRow(cells []string) (productRow, bool) {
	for len(cells) < columnCount {
		cells = append(cells, "")
	}
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}

	name := cells[colName]
	price, err := decimal.NewFromString(cells[colPrice])
	if name == "" || err != nil || !price.IsPositive() {
		return productRow{}, false
	}

	row := productRow{
		Name:        name,
		Description: cells[colDescription],
		Price:       price.Round(2),
		Category:    cells[colCategory],
		ImageURL:    cells[colImageURL],
	}
	if raw := cells[colSalePrice]; raw != "" {
		sale, err := decimal.NewFromString(raw)
		if err != nil || sale.IsNegative() {
			return productRow{}, false
		}
		sale = sale.Round(2)
		row.SalePrice = &sale
	}
	if raw := cells[colStock]; raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return productRow{}, false
		}
		row.Stock = stock
	}
	return row, true
}

func buildProducts(rows []productRow, categories map[string]uint, companyID uint) []model.Product {
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, model.Product{
			Name:          row.Name,
			Description:   row.Description,
			Price:         row.Price,
			SalePrice:     row.SalePrice,
			ImageURL:      row.ImageURL,
			StockQuantity: row.Stock,
			CompanyID:     companyID,
			CategoryID:    categories[strings.ToLower(row.Category)],
		})
	}
	return products
}
