package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vantry/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Inventory"

// NewInventoryWorkbook renders the inventory into an xlsx workbook, one
// row per item with its computed status.
func NewInventoryWorkbook(items []models.Item) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []string{"Category", "Item", "Quantity", "Threshold", "Status", "Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDDDDD"}, Pattern: 1},
	})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "F1", headerStyle)
	}

	for i, item := range items {
		row := i + 2
		values := []interface{}{
			item.Category,
			item.Name,
			item.Quantity,
			item.Threshold,
			item.Status().Label(),
			item.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	f.SetColWidth(sheetName, "A", "B", 24)
	f.SetColWidth(sheetName, "E", "F", 18)

	return f, nil
}

// WriteInventoryFile saves the workbook under dir with a timestamped
// name and returns the full path.
func WriteInventoryFile(items []models.Item, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := NewInventoryWorkbook(items)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}
	return path, nil
}
