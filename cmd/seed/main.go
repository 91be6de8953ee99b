package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/storefront/storefront-backend/config"
	"github.com/storefront/storefront-backend/internal/app/repository"
	"github.com/storefront/storefront-backend/internal/app/service"
	"github.com/storefront/storefront-backend/internal/db"
	"github.com/storefront/storefront-backend/internal/export"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <products.xlsx>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	database := db.GetDB()
	categoryRepo := repository.NewCategoryRepository(database)
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(
		repository.NewProductRepository(database),
		categoryRepo,
		repository.NewAttributeRepository(database),
		repository.NewVariantRepository(database),
		nil,
	)

	file, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open file:", err)
	}
	defer file.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := export.ReadProducts(file)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	for _, s := range skipped {
		fmt.Printf("Skipping %s\n", s.Error())
	}

	fmt.Printf("Total products to import: %d\n", len(rows))
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	existing, err := categoryService.ListCategories()
	if err != nil {
		log.Fatal("Failed to list categories:", err)
	}
	categories := make(map[string]uint, len(existing))
	for _, c := range existing {
		categories[strings.ToLower(c.Name)] = c.ID
	}

	imported, failed := 0, 0
	for _, row := range rows {
		key := strings.ToLower(row.Category)
		categoryID, ok := categories[key]
		if !ok {
			category, err := categoryService.CreateCategory(row.Category, "")
			if err != nil {
				fmt.Printf("line %d: create category %q: %v\n", row.Line, row.Category, err)
				failed++
				continue
			}
			categoryID = category.ID
			categories[key] = categoryID
		}

		product, err := productService.CreateProduct(service.ProductInput{
			Name:          row.Name,
			Description:   row.Description,
			SKU:           row.SKU,
			Price:         row.Price,
			SalePrice:     row.SalePrice,
			StockQuantity: row.Stock,
			CategoryID:    categoryID,
			ImageURL:      row.ImageURL,
		})
		if err != nil {
			fmt.Printf("line %d: %v\n", row.Line, err)
			failed++
			continue
		}
		imported++
		fmt.Printf("line %d: %s -> %s\n", row.Line, product.SKU, product.Code)
	}

	fmt.Println("Import completed!")
	fmt.Printf("Imported: %d, failed: %d, skipped: %d\n", imported, failed, len(skipped))
}
