package pipeline

import (
	"cmp"
	"slices"
	"time"

	"airquality-server/internal/modules/airquality/types"
)

// meanAcc accumulates per-pollutant means, skipping missing values.
type meanAcc struct {
	sum [3]float64
	n   [3]int
}

func (a *meanAcc) add(c types.Concentrations) {
	for i, p := range types.Pollutants {
		if v := c.Get(p); v != nil {
			a.sum[i] += *v
			a.n[i]++
		}
	}
}

func (a *meanAcc) result() types.Concentrations {
	var vals [3]*float64
	for i := range vals {
		if a.n[i] > 0 {
			m := a.sum[i] / float64(a.n[i])
			vals[i] = &m
		}
	}
	return types.Concentrations{PM25: vals[0], PM10: vals[1], O3: vals[2]}
}

type bucketKey struct {
	station string
	year    int
	month   int
	day     int
	hour    int
}

func compareKeys(a, b bucketKey) int {
	return cmp.Or(
		cmp.Compare(a.station, b.station),
		cmp.Compare(a.year, b.year),
		cmp.Compare(a.month, b.month),
		cmp.Compare(a.day, b.day),
		cmp.Compare(a.hour, b.hour),
	)
}

// groupMeans averages readings per key and returns the keys in ascending order.
func groupMeans(readings []types.Reading, key func(types.Reading) bucketKey) ([]bucketKey, map[bucketKey]*meanAcc) {
	groups := make(map[bucketKey]*meanAcc)
	var keys []bucketKey
	for _, r := range readings {
		k := key(r)
		acc, ok := groups[k]
		if !ok {
			acc = &meanAcc{}
			groups[k] = acc
			keys = append(keys, k)
		}
		acc.add(r.Concentrations)
	}
	slices.SortFunc(keys, compareKeys)
	return keys, groups
}

// Diurnal averages readings per station and hour of each day.
func Diurnal(readings []types.Reading) []types.DiurnalRow {
	keys, groups := groupMeans(readings, func(r types.Reading) bucketKey {
		return bucketKey{station: r.Station, year: r.Year, month: r.Month, day: r.Day, hour: r.Hour}
	})
	out := make([]types.DiurnalRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.DiurnalRow{
			Station:        k.station,
			Year:           k.year,
			Month:          k.month,
			Day:            k.day,
			Hour:           k.hour,
			Time:           time.Date(k.year, time.Month(k.month), k.day, k.hour, 0, 0, 0, time.UTC),
			Concentrations: groups[k].result(),
		})
	}
	return out
}

// Daily averages readings per station and day, alongside the regulatory thresholds.
func Daily(readings []types.Reading) []types.DailyRow {
	keys, groups := groupMeans(readings, func(r types.Reading) bucketKey {
		return bucketKey{station: r.Station, year: r.Year, month: r.Month, day: r.Day}
	})
	out := make([]types.DailyRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.DailyRow{
			Station:        k.station,
			Year:           k.year,
			Month:          k.month,
			Day:            k.day,
			Date:           time.Date(k.year, time.Month(k.month), k.day, 0, 0, 0, 0, time.UTC),
			Concentrations: groups[k].result(),
			ThresholdPM25:  types.ThresholdPM25,
			ThresholdPM10:  types.ThresholdPM10,
			ThresholdO3:    types.ThresholdO3,
		})
	}
	return out
}

// Monthly averages readings per station and calendar month.
func Monthly(readings []types.Reading) []types.MonthlyRow {
	keys, groups := groupMeans(readings, func(r types.Reading) bucketKey {
		return bucketKey{station: r.Station, year: r.Year, month: r.Month}
	})
	out := make([]types.MonthlyRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.MonthlyRow{
			Station:        k.station,
			Year:           k.year,
			Month:          k.month,
			Date:           time.Date(k.year, time.Month(k.month), 1, 0, 0, 0, 0, time.UTC),
			Concentrations: groups[k].result(),
		})
	}
	return out
}
