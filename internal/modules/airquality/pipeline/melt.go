package pipeline

import (
	"time"

	"airquality-server/internal/modules/airquality/types"
)

// Captions of the long-form columns.
const (
	ParameterVar       = "Parameter"
	ParameterValue     = "Nilai"
	PollutantVar       = "Polutan"
	ConcentrationValue = "Konsentrasi (μg/m³)"
)

// MeltID carries the identifier columns copied onto every melted row.
type MeltID struct {
	Station string
	Year    int
	Month   int
	Day     int
	Hour    int
	Time    time.Time
}

// ValueColumn names one wide column and extracts its value from a row.
type ValueColumn[T any] struct {
	Name  string
	Value func(T) *float64
}

// Melt converts wide rows into long form: every row yields one output row per
// value column. Output is ordered by column first, then by input row, so the
// table holds len(rows)*len(cols) rows.
func Melt[T any](rows []T, varName, valueName string, id func(T) MeltID, cols ...ValueColumn[T]) types.MeltedTable {
	out := types.MeltedTable{
		VarName:   varName,
		ValueName: valueName,
		Rows:      make([]types.MeltedRow, 0, len(rows)*len(cols)),
	}
	for _, col := range cols {
		for _, row := range rows {
			k := id(row)
			out.Rows = append(out.Rows, types.MeltedRow{
				Station:  k.Station,
				Year:     k.Year,
				Month:    k.Month,
				Day:      k.Day,
				Hour:     k.Hour,
				Time:     k.Time,
				Variable: col.Name,
				Value:    col.Value(row),
			})
		}
	}
	return out
}

func pollutantColumns[T any](get func(T) types.Concentrations) []ValueColumn[T] {
	cols := make([]ValueColumn[T], 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		cols = append(cols, ValueColumn[T]{
			Name:  string(p),
			Value: func(row T) *float64 { return get(row).Get(p) },
		})
	}
	return cols
}

// MeltDiurnal reshapes the diurnal table into Parameter/Nilai pairs.
func MeltDiurnal(rows []types.DiurnalRow) types.MeltedTable {
	id := func(r types.DiurnalRow) MeltID {
		return MeltID{Station: r.Station, Year: r.Year, Month: r.Month, Day: r.Day, Hour: r.Hour, Time: r.Time}
	}
	get := func(r types.DiurnalRow) types.Concentrations { return r.Concentrations }
	return Melt(rows, ParameterVar, ParameterValue, id, pollutantColumns(get)...)
}

// MeltMonthly reshapes the monthly table into Parameter/Nilai pairs dated on
// the first day of each month.
func MeltMonthly(rows []types.MonthlyRow) types.MeltedTable {
	id := func(r types.MonthlyRow) MeltID {
		return MeltID{Station: r.Station, Year: r.Year, Month: r.Month, Time: r.Date}
	}
	get := func(r types.MonthlyRow) types.Concentrations { return r.Concentrations }
	return Melt(rows, ParameterVar, ParameterValue, id, pollutantColumns(get)...)
}

// MeltDaily produces one table per pollutant, pairing each daily mean with the
// pollutant's threshold so both can be drawn as series of the same chart.
func MeltDaily(rows []types.DailyRow) map[types.Pollutant]types.MeltedTable {
	id := func(r types.DailyRow) MeltID {
		return MeltID{Station: r.Station, Year: r.Year, Month: r.Month, Day: r.Day, Time: r.Date}
	}
	out := make(map[types.Pollutant]types.MeltedTable, len(types.Pollutants))
	for _, p := range types.Pollutants {
		threshold := dailyThreshold(p)
		out[p] = Melt(rows, PollutantVar, ConcentrationValue, id,
			ValueColumn[types.DailyRow]{
				Name:  string(p),
				Value: func(r types.DailyRow) *float64 { return r.Get(p) },
			},
			ValueColumn[types.DailyRow]{
				Name:  types.ThresholdName(p),
				Value: threshold,
			},
		)
	}
	return out
}

func dailyThreshold(p types.Pollutant) func(types.DailyRow) *float64 {
	return func(r types.DailyRow) *float64 {
		v := r.Threshold(p)
		return &v
	}
}
