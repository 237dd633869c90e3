// Package dataset loads hourly station readings from tabular files.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"airquality-server/internal/modules/airquality/types"
)

const (
	colStation = "station"
	colDate    = "date"
	colYear    = "year"
	colMonth   = "month"
	colDay     = "day"
	colHour    = "hour"
)

var timestampColumns = []string{colYear, colMonth, colDay, colHour}

var missingTokens = []string{"", "NA", "NaN", "nan", "null"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// LoadFile reads readings from a comma-delimited file, or from the first sheet
// of an .xlsx workbook.
func LoadFile(path string) ([]types.Reading, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err := readWorkbook(path)
		if err != nil {
			return nil, &LoadError{Path: path, Op: "read workbook", Err: err}
		}
		return fromRecords(path, records)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Op: "open", Err: err}
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close dataset file", "path", path, "error", err)
		}
	}()
	return readCSV(path, f)
}

// ReadCSV reads readings from comma-delimited text with a header row.
func ReadCSV(r io.Reader) ([]types.Reading, error) {
	return readCSV("", r)
}

func readCSV(path string, r io.Reader) ([]types.Reading, error) {
	cr := csv.NewReader(r)
	cr.Comma = ','
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Op: "parse", Err: err}
	}
	return fromRecords(path, records)
}

func frameOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	}
}

// fromRecords checks the header before handing the rows to gota, which
// refuses a frame without data rows. A header-only input is an empty dataset.
func fromRecords(path string, records [][]string) ([]types.Reading, error) {
	if len(records) == 0 {
		return nil, &LoadError{Path: path, Op: "parse", Err: ErrEmpty}
	}
	hasComponents, err := checkHeader(records[0])
	if err != nil {
		return nil, &LoadError{Path: path, Op: "schema", Err: err}
	}
	if len(records) == 1 {
		return []types.Reading{}, nil
	}
	return fromFrame(path, dataframe.LoadRecords(records, frameOptions()...), hasComponents)
}

// checkHeader reports whether the timestamp comes from the year, month, day
// and hour columns rather than from date alone.
func checkHeader(header []string) (hasComponents bool, err error) {
	have := make(map[string]bool, len(header))
	for _, name := range header {
		have[name] = true
	}
	required := []string{colStation}
	for _, p := range types.Pollutants {
		required = append(required, string(p))
	}
	for _, name := range required {
		if !have[name] {
			return false, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	hasComponents = true
	for _, name := range timestampColumns {
		hasComponents = hasComponents && have[name]
	}
	if !have[colDate] && !hasComponents {
		return false, fmt.Errorf("%w: %q or all of %s", ErrMissingColumn, colDate, strings.Join(timestampColumns, ", "))
	}
	return hasComponents, nil
}

func fromFrame(path string, df dataframe.DataFrame, hasComponents bool) ([]types.Reading, error) {
	if df.Err != nil {
		return nil, &LoadError{Path: path, Op: "parse", Err: df.Err}
	}

	n := df.Nrow()
	stations := df.Col(colStation).Records()
	values := make(map[types.Pollutant][]string, len(types.Pollutants))
	for _, p := range types.Pollutants {
		values[p] = df.Col(string(p)).Records()
	}
	var dates []string
	if slices.Contains(df.Names(), colDate) {
		dates = df.Col(colDate).Records()
	}
	components := make(map[string][]string)
	if hasComponents {
		for _, name := range timestampColumns {
			components[name] = df.Col(name).Records()
		}
	}

	out := make([]types.Reading, 0, n)
	for i := 0; i < n; i++ {
		row := i + 1
		station := strings.TrimSpace(stations[i])
		if station == "" || station == "NaN" {
			return nil, &LoadError{Path: path, Op: "station", Row: row, Err: fmt.Errorf("empty station")}
		}

		var ts time.Time
		var err error
		if hasComponents {
			ts, err = timeFromComponents(components, i)
			if err == nil && dates != nil {
				err = checkDateAgrees(dates[i], ts)
			}
		} else {
			ts, err = parseDate(dates[i])
		}
		if err != nil {
			return nil, &LoadError{Path: path, Op: "timestamp", Row: row, Err: err}
		}

		var c types.Concentrations
		for _, p := range types.Pollutants {
			v, err := parseValue(values[p][i])
			if err != nil {
				return nil, &LoadError{Path: path, Op: "value", Row: row, Err: fmt.Errorf("%s: %w", p, err)}
			}
			switch p {
			case types.PM25:
				c.PM25 = v
			case types.PM10:
				c.PM10 = v
			case types.O3:
				c.O3 = v
			}
		}
		out = append(out, types.NewReading(station, ts, c))
	}
	return out, nil
}

// parseValue returns nil for a missing token and an error for anything else
// that is not a finite number.
func parseValue(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if slices.Contains(missingTokens, s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("invalid value %q", raw)
	}
	return &v, nil
}

func timeFromComponents(components map[string][]string, i int) (time.Time, error) {
	var parts [4]int
	for k, name := range timestampColumns {
		raw := strings.TrimSpace(components[name][i])
		v, err := strconv.Atoi(raw)
		if err != nil {
			// Spreadsheet exports sometimes write integers as "3.0".
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil || f != math.Trunc(f) {
				return time.Time{}, fmt.Errorf("invalid %s %q", name, raw)
			}
			v = int(f)
		}
		parts[k] = v
	}
	year, month, day, hour := parts[0], parts[1], parts[2], parts[3]
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month out of range: %d", month)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("hour out of range: %d", hour)
	}
	ts := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	if ts.Day() != day {
		return time.Time{}, fmt.Errorf("day out of range: %04d-%02d-%02d", year, month, day)
	}
	return ts, nil
}

func checkDateAgrees(raw string, ts time.Time) error {
	d, err := parseDate(raw)
	if err != nil {
		return err
	}
	if d.Year() != ts.Year() || d.Month() != ts.Month() || d.Day() != ts.Day() {
		return fmt.Errorf("date %q disagrees with year/month/day %s", raw, ts.Format(time.DateOnly))
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
