// Package data reads trade sheets into options and writes priced batches back out.
package data

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/tantralabs/fxpricer/logger"
	"github.com/tantralabs/fxpricer/models"
	"github.com/xuri/excelize/v2"
)

var ErrNotANumber = errors.New("is not a number")

// Columns of the trade sheet, in the order they are usually laid out.
var Columns = []string{
	"TradeID", "Underlying", "Notional", "NotionalCurrency", "Spot", "Strike",
	"Vol", "RateDomestic", "RateForeign", "Expiry", "OptionType",
}

type optionRow struct {
	TradeID          string `csv:"TradeID"`
	Underlying       string `csv:"Underlying"`
	Notional         string `csv:"Notional"`
	NotionalCurrency string `csv:"NotionalCurrency"`
	Spot             string `csv:"Spot"`
	Strike           string `csv:"Strike"`
	Vol              string `csv:"Vol"`
	RateDomestic     string `csv:"RateDomestic"`
	RateForeign      string `csv:"RateForeign"`
	Expiry           string `csv:"Expiry"`
	OptionType       string `csv:"OptionType"`
}

// RowError is a sheet row that could not be turned into an option. Row counts the header as row 1.
type RowError struct {
	Row     int
	TradeID string
	Err     error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.TradeID, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// LoadOptions reads a .csv or .xlsx trade sheet. With skipInvalid, bad rows are logged and
// returned as RowErrors; otherwise the first bad row aborts the load.
func LoadOptions(path string, skipInvalid bool) ([]models.Option, []RowError, error) {
	var rows []optionRow
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, nil, fmt.Errorf("unsupported trade sheet %s: want .csv or .xlsx", path)
	}
	if err != nil {
		return nil, nil, err
	}

	options := make([]models.Option, 0, len(rows))
	var rejected []RowError
	for i, row := range rows {
		option, err := row.option()
		if err == nil {
			options = append(options, option)
			continue
		}
		rowErr := RowError{Row: i + 2, TradeID: strings.TrimSpace(row.TradeID), Err: err}
		if !skipInvalid {
			return nil, nil, fmt.Errorf("%s: %w", path, rowErr)
		}
		logger.WithFields(logger.Fields{"row": rowErr.Row, "trade_id": rowErr.TradeID}).Warnf("Skipping invalid trade: %v", err)
		rejected = append(rejected, rowErr)
	}
	logger.Infof("Loaded %d trades from %s (%d skipped)", len(options), path, len(rejected))
	return options, rejected, nil
}

func readCSV(path string) ([]optionRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, err := gocsv.DefaultCSVReader(file).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := checkColumns(header); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var rows []optionRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// readXLSX reads the first sheet using raw cell values so numbers are not reformatted.
func readXLSX(path string) ([]optionRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	if err := checkColumns(cells[0]); err != nil {
		return nil, fmt.Errorf("%s sheet %q: %w", path, sheet, err)
	}
	index := make(map[string]int, len(cells[0]))
	for i, name := range cells[0] {
		index[strings.TrimSpace(name)] = i
	}

	rows := make([]optionRow, 0, len(cells)-1)
	for _, record := range cells[1:] {
		if isBlank(record) {
			continue
		}
		cell := func(name string) string {
			if i := index[name]; i < len(record) {
				return record[i]
			}
			return ""
		}
		rows = append(rows, optionRow{
			TradeID:          cell("TradeID"),
			Underlying:       cell("Underlying"),
			Notional:         cell("Notional"),
			NotionalCurrency: cell("NotionalCurrency"),
			Spot:             cell("Spot"),
			Strike:           cell("Strike"),
			Vol:              cell("Vol"),
			RateDomestic:     cell("RateDomestic"),
			RateForeign:      cell("RateForeign"),
			Expiry:           cell("Expiry"),
			OptionType:       cell("OptionType"),
		})
	}
	return rows, nil
}

// checkColumns reports every required column missing from header.
func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = true
	}
	var missing []string
	for _, name := range Columns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing column %s", strings.Join(missing, ", "))
	}
	return nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (r optionRow) option() (models.Option, error) {
	var errs []error
	number := func(field, raw string) float64 {
		raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
		if raw == "" {
			errs = append(errs, &models.ValidationError{Field: field, Value: raw, Err: models.ErrRequired})
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, &models.ValidationError{Field: field, Value: raw, Err: ErrNotANumber})
			return 0
		}
		return v
	}

	params := models.OptionParams{
		ID:               r.TradeID,
		Strike:           number("strike", r.Strike),
		SpotPrice:        number("spot_price", r.Spot),
		Volatility:       number("volatility", r.Vol),
		TimeToMaturity:   number("time_to_maturity", r.Expiry),
		DomesticRate:     number("domestic_rate", r.RateDomestic),
		ForeignRate:      number("foreign_rate", r.RateForeign),
		Underlying:       r.Underlying,
		Notional:         number("notional", r.Notional),
		NotionalCurrency: r.NotionalCurrency,
	}
	typ, err := models.ParseOptionType(r.OptionType)
	if err != nil {
		errs = append(errs, err)
	}
	params.OptionType = typ
	if len(errs) > 0 {
		return models.Option{}, errors.Join(errs...)
	}
	return models.NewOption(params)
}
