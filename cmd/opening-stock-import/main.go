package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/rubberstock_backend/config"
	"bitbucket.org/mmdatafocus/rubberstock_backend/models"
	"bitbucket.org/mmdatafocus/rubberstock_backend/utils"
)

// Loads opening compound balances from an xlsx workbook. Expected columns,
// starting at row 2 (row 1 is the header):
//
//	A compound code, B quantity kg, C min stock level kg,
//	D reorder point kg, E cost per kg, F location, G batch number
func main() {
	filePath := flag.String("file", "", "Path to the xlsx workbook")
	sheetName := flag.String("sheet", "Sheet1", "Sheet to read")
	dryRun := flag.Bool("dry-run", false, "Parse and print rows without writing")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		panic("missing -file")
	}

	logger := config.GetLogger()
	if logger == nil {
		logger = logrus.New()
	}

	importRows, err := parseWorkbook(*filePath, *sheetName)
	if err != nil {
		panic(err)
	}
	if len(importRows) == 0 {
		logger.Warn("no data rows found; nothing to import")
		return
	}

	if *dryRun {
		for i, row := range importRows {
			logger.WithFields(logrus.Fields{
				"row":      i + 2,
				"code":     row.CompoundCode,
				"qty_kg":   row.QuantityKg.String(),
				"location": row.Location,
			}).Info("dry-run: would import")
		}
		return
	}

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		panic("database not initialized")
	}
	config.ConnectRedisWithRetry()

	result, err := models.ImportCompoundOpeningStock(context.Background(), importRows)
	if err != nil {
		panic(err)
	}

	for _, importErr := range result.Errors {
		logger.Warn(importErr)
	}
	logger.WithFields(logrus.Fields{
		"created":   result.Created,
		"topped_up": result.ToppedUp,
		"failed":    len(result.Errors),
	}).Info("opening stock import finished")
}

func parseWorkbook(filePath, sheetName string) ([]models.OpeningStockRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %v", sheetName, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	importRows := make([]models.OpeningStockRow, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(cell(row, 0)) == "" {
			continue
		}

		qty, err := utils.ParseDecimal(cell(row, 1))
		if err != nil {
			return nil, fmt.Errorf("could not parse quantity in row %d: %v", idx+2, err)
		}
		minLevel, err := optionalDecimal(cell(row, 2))
		if err != nil {
			return nil, fmt.Errorf("could not parse min stock level in row %d: %v", idx+2, err)
		}
		reorderPoint, err := optionalDecimal(cell(row, 3))
		if err != nil {
			return nil, fmt.Errorf("could not parse reorder point in row %d: %v", idx+2, err)
		}
		costPerKg, err := optionalDecimal(cell(row, 4))
		if err != nil {
			return nil, fmt.Errorf("could not parse cost per kg in row %d: %v", idx+2, err)
		}

		importRows = append(importRows, models.OpeningStockRow{
			CompoundCode:    strings.TrimSpace(cell(row, 0)),
			QuantityKg:      qty,
			MinStockLevelKg: minLevel,
			ReorderPointKg:  reorderPoint,
			CostPerKg:       costPerKg,
			Location:        strings.TrimSpace(cell(row, 5)),
			BatchNumber:     strings.TrimSpace(cell(row, 6)),
		})
	}
	return importRows, nil
}

// cell tolerates short rows; excelize drops trailing empty cells.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optionalDecimal(value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	return utils.ParseDecimal(value)
}
