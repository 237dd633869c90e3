package types

import "time"

// Pollutant identifies one of the measured concentration columns.
type Pollutant string

const (
	PM25 Pollutant = "PM2.5"
	PM10 Pollutant = "PM10"
	O3   Pollutant = "O3"
)

// Pollutants lists the measured columns in display order.
var Pollutants = []Pollutant{PM25, PM10, O3}

// Regulatory daily thresholds (μg/m³) drawn next to the daily means.
const (
	ThresholdPM25 = 75.0
	ThresholdPM10 = 150.0
	ThresholdO3   = 100.0
)

// ThresholdName is the column name of p's threshold series.
func ThresholdName(p Pollutant) string {
	switch p {
	case PM25:
		return "BMUA_PM25"
	case PM10:
		return "BMUA_PM10"
	default:
		return "BMUA_O3"
	}
}

// Concentrations holds one value per pollutant; nil means missing.
type Concentrations struct {
	PM25 *float64 `json:"pm25"`
	PM10 *float64 `json:"pm10"`
	O3   *float64 `json:"o3"`
}

// Get returns the value stored for p.
func (c Concentrations) Get(p Pollutant) *float64 {
	switch p {
	case PM25:
		return c.PM25
	case PM10:
		return c.PM10
	case O3:
		return c.O3
	}
	return nil
}

// Reading is one hourly measurement of a station.
type Reading struct {
	Station string    `json:"station"`
	Time    time.Time `json:"time"`
	Date    time.Time `json:"date"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	Hour    int       `json:"hour"`
	Concentrations
}

type DiurnalRow struct {
	Station string    `json:"station"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	Hour    int       `json:"hour"`
	Time    time.Time `json:"time"`
	Concentrations
}

type DailyRow struct {
	Station string    `json:"station"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Day     int       `json:"day"`
	Date    time.Time `json:"date"`
	Concentrations
	ThresholdPM25 float64 `json:"bmuaPm25"`
	ThresholdPM10 float64 `json:"bmuaPm10"`
	ThresholdO3   float64 `json:"bmuaO3"`
}

// Threshold returns the row's regulatory threshold for p.
func (r DailyRow) Threshold(p Pollutant) float64 {
	switch p {
	case PM25:
		return r.ThresholdPM25
	case PM10:
		return r.ThresholdPM10
	default:
		return r.ThresholdO3
	}
}

type MonthlyRow struct {
	Station string    `json:"station"`
	Year    int       `json:"year"`
	Month   int       `json:"month"`
	Date    time.Time `json:"date"`
	Concentrations
}

// MeltedRow is one (station, time bucket, variable) value of a long-form table.
// Day and Hour are zero when the source table is coarser.
type MeltedRow struct {
	Station  string    `json:"station"`
	Year     int       `json:"year"`
	Month    int       `json:"month"`
	Day      int       `json:"day,omitempty"`
	Hour     int       `json:"hour"`
	Time     time.Time `json:"time"`
	Variable string    `json:"variable"`
	Value    *float64  `json:"value"`
}

// MeltedTable is a long-form table. VarName and ValueName are the captions of
// the Variable and Value columns.
type MeltedTable struct {
	VarName   string      `json:"varName"`
	ValueName string      `json:"valueName"`
	Rows      []MeltedRow `json:"rows"`
}

// Category is an equal-width bin label.
type Category string

const (
	Low    Category = "Low"
	Medium Category = "Medium"
	High   Category = "High"
)

// Categories lists the bin labels from lowest to highest.
var Categories = []Category{Low, Medium, High}

// MonthCategory is the label given to one station-month for one pollutant.
type MonthCategory struct {
	Station   string    `json:"station"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Pollutant Pollutant `json:"pollutant"`
	Value     float64   `json:"value"`
	Category  Category  `json:"category"`
}

// CategoryTallyRow counts the months of a station-year falling in one bin.
type CategoryTallyRow struct {
	Station   string    `json:"station"`
	Year      int       `json:"year"`
	Category  Category  `json:"category"`
	Pollutant Pollutant `json:"pollutant"`
	Months    int       `json:"months"`
}

// Label is the caption of the row's pollutant in the category charts.
func (r CategoryTallyRow) Label() string {
	return "Kategori " + string(r.Pollutant)
}

type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Area string `json:"area,omitempty"`
}

// NewReading builds a Reading whose calendar fields are derived from ts (UTC).
func NewReading(station string, ts time.Time, c Concentrations) Reading {
	ts = ts.UTC()
	return Reading{
		Station:        station,
		Time:           ts,
		Date:           time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		Year:           ts.Year(),
		Month:          int(ts.Month()),
		Day:            ts.Day(),
		Hour:           ts.Hour(),
		Concentrations: c,
	}
}
