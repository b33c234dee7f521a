package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/casarossa/casarossa-backend/config"
	"github.com/casarossa/casarossa-backend/internal/app/model"
	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/internal/db"
	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Imports a menu workbook into the menu_items table. Expected columns:
// Name, Description, Category, Price, Featured, Available, Position, Allergens.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
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

	menuRepo := repository.NewMenuRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	items, skipped, err := readMenuFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Rows parsed: %d, skipped: %d\n", len(items), skipped)
	if len(items) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 100
	if err := menuRepo.BulkCreate(items, batchSize); err != nil {
		log.Fatal("Failed to bulk create menu items:", err)
	}

	fmt.Printf("Import completed successfully: %d menu items\n", len(items))
}

func readMenuFromXLSX(filePath string) ([]model.MenuItem, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	var items []model.MenuItem
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		category := model.MenuCategory(strings.ToLower(strings.TrimSpace(row[2])))
		priceStr := strings.TrimSpace(row[3])

		if name == "" || priceStr == "" {
			skipped++
			continue
		}
		switch category {
		case model.CategoryStarter, model.CategoryMain, model.CategoryDessert, model.CategoryDrink:
		default:
			skipped++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			skipped++
			continue
		}

		key := fmt.Sprintf("%s|%s", name, category)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		item := model.MenuItem{
			Name:        name,
			Description: description,
			Category:    category,
			Price:       price,
			Available:   true,
		}

		if len(row) > 4 {
			item.IsFeatured = parseBool(row[4])
		}
		if len(row) > 5 {
			item.Available = parseBool(row[5])
		}
		if len(row) > 6 {
			if pos, err := strconv.Atoi(strings.TrimSpace(row[6])); err == nil {
				item.Position = pos
			}
		}
		if len(row) > 7 {
			item.Allergens = parseAllergens(row[7])
		}

		items = append(items, item)
	}

	return items, skipped, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

func parseAllergens(s string) pq.StringArray {
	var out pq.StringArray
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
