package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/structs"
	"github.com/gocarina/gocsv"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/models"
	"github.com/xuri/excelize/v2"
)

const (
	ResultsSheet = "Individual Greeks"
	SummarySheet = "Portfolio Summary"
)

// sheetRow returns the csv tag names and values of v's fields, so both output formats share one
// set of column names.
func sheetRow(v interface{}) (header, values []interface{}) {
	s := structs.New(v)
	s.TagName = "csv"
	for _, f := range s.Fields() {
		header = append(header, f.Tag("csv"))
		values = append(values, f.Value())
	}
	return header, values
}

// WriteBatch writes per-trade results and the portfolio summary to path. An .xlsx workbook gets
// one sheet for each; a .csv path gets the results and a sibling <name>_summary.csv.
func WriteBatch(path string, batch models.Batch) error {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		err = writeXLSX(path, batch)
	case ".csv":
		err = writeCSV(path, batch)
	default:
		return fmt.Errorf("unsupported output %s: want .csv or .xlsx", path)
	}
	if err != nil {
		return err
	}
	logger.Infof("Wrote %d results to %s", len(batch.Results), path)
	return nil
}

func writeXLSX(path string, batch models.Batch) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), ResultsSheet)
	resultsHeader, _ := sheetRow(models.Result{})
	if err := f.SetSheetRow(ResultsSheet, "A1", &resultsHeader); err != nil {
		return err
	}
	for i, r := range batch.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		_, values := sheetRow(r)
		if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	summaryHeader, summary := sheetRow(batch.Summary)
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetSheetRow(SummarySheet, "A2", &summary); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeCSV(path string, batch models.Batch) error {
	results := batch.Results
	if results == nil {
		results = []models.Result{}
	}
	if err := marshalFile(path, &results); err != nil {
		return err
	}
	return marshalFile(SummaryPath(path), &[]models.Summary{batch.Summary})
}

// SummaryPath is where the portfolio summary of a .csv output is written.
func SummaryPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_summary" + ext
}

func marshalFile(path string, in interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(in, file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
