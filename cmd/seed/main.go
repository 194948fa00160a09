package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/internal/db"
)

func main() {
	companyID := flag.Uint("company", 0, "company id assigned to every imported product")
	batchSize := flag.Int("batch", 500, "insert batch size")
	assumeYes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-company N] [-batch N] [-yes] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	productRepo := repository.NewProductRepository(db.GetDB())
	catalogRepo := repository.NewCatalogRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, summary, err := readProductRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("  Total rows: %d\n  Valid products: %d\n  Skipped rows: %d\n",
		summary.Total, len(rows), summary.Skipped)

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	categories, err := resolveCategories(catalogRepo, rows)
	if err != nil {
		log.Fatal("Failed to resolve categories:", err)
	}
	products := buildProducts(rows, categories, *companyID)

	fmt.Printf("Starting bulk import with batch size: %d\n", *batchSize)
	if err := productRepo.CreateInBatches(products, *batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}
	fmt.Printf("Import completed successfully! Total products imported: %d\n", len(products))
}

// resolveCategories maps category names (case-insensitive) to ids, creating missing ones.
func resolveCategories(repo repository.CatalogRepository, rows []productRow) (map[string]uint, error) {
	existing, err := repo.ListCategories()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]uint, len(existing))
	for _, c := range existing {
		ids[strings.ToLower(c.Name)] = c.ID
	}

	for _, row := range rows {
		key := strings.ToLower(row.Category)
		if key == "" {
			continue
		}
		if _, ok := ids[key]; ok {
			continue
		}
		category := &model.Category{Name: row.Category}
		if err := repo.CreateCategory(category); err != nil {
			return nil, fmt.Errorf("create category %q: %w", row.Category, err)
		}
		ids[key] = category.ID
		fmt.Printf("Created category: %s\n", row.Category)
	}
	return ids, nil
}
