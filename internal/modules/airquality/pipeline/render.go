package pipeline

import (
	"time"

	"airquality-server/internal/modules/airquality/types"
)

// Summary holds the headline metrics of a filtered selection.
type Summary struct {
	Readings int `json:"readings"`
	// Diurnal, Daily and Monthly are the overall means of the respective
	// aggregate tables; missing values are skipped.
	Diurnal types.Concentrations `json:"diurnal"`
	Daily   types.Concentrations `json:"daily"`
	Monthly types.Concentrations `json:"monthly"`
	// Months is the number of distinct calendar months in the monthly table.
	Months int `json:"months"`
}

// Result is everything derived from one filtered selection.
type Result struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Summary Summary   `json:"summary"`

	Diurnal []types.DiurnalRow `json:"diurnal"`
	Daily   []types.DailyRow   `json:"daily"`
	Monthly []types.MonthlyRow `json:"monthly"`

	DiurnalLong types.MeltedTable                     `json:"diurnalLong"`
	DailyLong   map[types.Pollutant]types.MeltedTable `json:"dailyLong"`
	MonthlyLong types.MeltedTable                     `json:"monthlyLong"`

	Bins       map[types.Pollutant]Bins `json:"bins"`
	Categories []types.MonthCategory    `json:"categories"`
	Tally      []types.CategoryTallyRow `json:"tally"`
}

// Render derives every table and metric from already filtered readings.
func Render(filtered []types.Reading) Result {
	diurnal := Diurnal(filtered)
	daily := Daily(filtered)
	monthly := Monthly(filtered)

	return Result{
		Summary: Summary{
			Readings: len(filtered),
			Diurnal:  overallMeans(diurnal, func(r types.DiurnalRow) types.Concentrations { return r.Concentrations }),
			Daily:    overallMeans(daily, func(r types.DailyRow) types.Concentrations { return r.Concentrations }),
			Monthly:  overallMeans(monthly, func(r types.MonthlyRow) types.Concentrations { return r.Concentrations }),
			Months:   DistinctMonths(monthly),
		},
		Diurnal:     diurnal,
		Daily:       daily,
		Monthly:     monthly,
		DiurnalLong: MeltDiurnal(diurnal),
		DailyLong:   MeltDaily(daily),
		MonthlyLong: MeltMonthly(monthly),
		Bins:        MonthlyBins(monthly),
		Categories:  Classify(monthly),
		Tally:       Categorize(monthly),
	}
}

// Run filters readings to [start, end] and renders the selection.
func Run(readings []types.Reading, start, end time.Time) (Result, error) {
	filtered, err := Filter(readings, start, end)
	if err != nil {
		return Result{}, err
	}
	res := Render(filtered)
	res.Start = truncateDay(start)
	res.End = truncateDay(end)
	return res, nil
}

// DistinctMonths counts the distinct (year, month) pairs of a monthly table.
func DistinctMonths(rows []types.MonthlyRow) int {
	seen := make(map[[2]int]bool)
	for _, r := range rows {
		seen[[2]int{r.Year, r.Month}] = true
	}
	return len(seen)
}

func overallMeans[T any](rows []T, get func(T) types.Concentrations) types.Concentrations {
	var acc meanAcc
	for _, r := range rows {
		acc.add(get(r))
	}
	return acc.result()
}
