package pipeline

import (
	"cmp"
	"slices"

	"airquality-server/internal/modules/airquality/types"
)

// Bins holds the edges of three equal-width bins over [Min, Max]. Values below
// Edge1 are Low, below Edge2 Medium, anything else High.
type Bins struct {
	Min   float64 `json:"min"`
	Edge1 float64 `json:"edge1"`
	Edge2 float64 `json:"edge2"`
	Max   float64 `json:"max"`
}

// NewBins splits [lo, hi] into three equal-width bins.
func NewBins(lo, hi float64) Bins {
	w := (hi - lo) / 3
	return Bins{Min: lo, Edge1: lo + w, Edge2: lo + 2*w, Max: hi}
}

// Degenerate reports whether the observed range is a single value.
func (b Bins) Degenerate() bool {
	return b.Min == b.Max
}

// Assign labels v. A degenerate range puts every value in Medium.
func (b Bins) Assign(v float64) types.Category {
	switch {
	case b.Degenerate():
		return types.Medium
	case v < b.Edge1:
		return types.Low
	case v < b.Edge2:
		return types.Medium
	default:
		return types.High
	}
}

// MonthlyBins computes per-pollutant bins over the present monthly means.
// Pollutants without any present value are absent from the result.
func MonthlyBins(rows []types.MonthlyRow) map[types.Pollutant]Bins {
	out := make(map[types.Pollutant]Bins, len(types.Pollutants))
	for _, p := range types.Pollutants {
		var lo, hi float64
		seen := false
		for _, r := range rows {
			v := r.Get(p)
			if v == nil {
				continue
			}
			if !seen || *v < lo {
				lo = *v
			}
			if !seen || *v > hi {
				hi = *v
			}
			seen = true
		}
		if seen {
			out[p] = NewBins(lo, hi)
		}
	}
	return out
}

// Classify labels every station-month for every pollutant whose mean is present.
// Output is ordered by station, year, month, then pollutant.
func Classify(rows []types.MonthlyRow) []types.MonthCategory {
	bins := MonthlyBins(rows)
	out := make([]types.MonthCategory, 0, len(rows)*len(types.Pollutants))
	for _, r := range rows {
		for _, p := range types.Pollutants {
			v := r.Get(p)
			if v == nil {
				continue
			}
			out = append(out, types.MonthCategory{
				Station:   r.Station,
				Year:      r.Year,
				Month:     r.Month,
				Pollutant: p,
				Value:     *v,
				Category:  bins[p].Assign(*v),
			})
		}
	}
	slices.SortStableFunc(out, func(a, b types.MonthCategory) int {
		return cmp.Or(
			cmp.Compare(a.Station, b.Station),
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Month, b.Month),
		)
	})
	return out
}

type tallyKey struct {
	station   string
	year      int
	category  types.Category
	pollutant types.Pollutant
}

// Categorize counts, per station, year, category and pollutant, the distinct
// months labelled with that category. Only non-zero counts are returned.
func Categorize(rows []types.MonthlyRow) []types.CategoryTallyRow {
	type monthKey struct {
		tallyKey
		month int
	}
	seen := make(map[monthKey]bool)
	counts := make(map[tallyKey]int)
	var keys []tallyKey
	for _, c := range Classify(rows) {
		k := tallyKey{station: c.Station, year: c.Year, category: c.Category, pollutant: c.Pollutant}
		mk := monthKey{tallyKey: k, month: c.Month}
		if seen[mk] {
			continue
		}
		seen[mk] = true
		if _, ok := counts[k]; !ok {
			keys = append(keys, k)
		}
		counts[k]++
	}

	slices.SortFunc(keys, func(a, b tallyKey) int {
		return cmp.Or(
			cmp.Compare(a.station, b.station),
			cmp.Compare(a.year, b.year),
			cmp.Compare(categoryRank(a.category), categoryRank(b.category)),
			cmp.Compare(pollutantRank(a.pollutant), pollutantRank(b.pollutant)),
		)
	})
	out := make([]types.CategoryTallyRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.CategoryTallyRow{
			Station:   k.station,
			Year:      k.year,
			Category:  k.category,
			Pollutant: k.pollutant,
			Months:    counts[k],
		})
	}
	return out
}

func categoryRank(c types.Category) int {
	return slices.Index(types.Categories, c)
}

func pollutantRank(p types.Pollutant) int {
	return slices.Index(types.Pollutants, p)
}
