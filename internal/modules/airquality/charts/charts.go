// Package charts turns pipeline tables into chart specifications. Building a
// spec has no side effects; drawing is left to the client.
package charts

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"airquality-server/internal/modules/airquality/pipeline"
	"airquality-server/internal/modules/airquality/types"
)

type Kind string

const (
	Line Kind = "line"
	Bar  Kind = "bar"
)

const concentrationAxis = "Konsentrasi (μg/m³)"

type Point struct {
	X string   `json:"x"`
	Y *float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Group  string  `json:"group,omitempty"`
	Dashed bool    `json:"dashed,omitempty"`
	Points []Point `json:"points"`
}

// Spec fully describes one chart.
type Spec struct {
	ID     string   `json:"id"`
	Kind   Kind     `json:"kind"`
	Title  string   `json:"title"`
	XLabel string   `json:"xLabel"`
	YLabel string   `json:"yLabel"`
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
	// YStep forces integer ticks on count charts.
	YStep float64 `json:"yStep,omitempty"`
}

// Build returns every dashboard chart for res, section by section.
func Build(res pipeline.Result) []Spec {
	var out []Spec
	out = append(out, Diurnal(res.DiurnalLong)...)
	out = append(out, Daily(res.DailyLong)...)
	out = append(out, Monthly(res.MonthlyLong)...)
	out = append(out, Categories(res.Tally)...)
	return out
}

// mean accumulates the average of the present values plotted at one x.
type mean struct {
	sum float64
	n   int
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// seriesBuilder collects per-series, per-x means and emits them on a shared x axis.
type seriesBuilder struct {
	order  []string
	groups map[string]string
	dashed map[string]bool
	cells  map[string]map[string]*mean
}

func newSeriesBuilder() *seriesBuilder {
	return &seriesBuilder{
		groups: make(map[string]string),
		dashed: make(map[string]bool),
		cells:  make(map[string]map[string]*mean),
	}
}

func (b *seriesBuilder) add(name, group string, dashed bool, x string, v *float64) {
	row, ok := b.cells[name]
	if !ok {
		row = make(map[string]*mean)
		b.cells[name] = row
		b.order = append(b.order, name)
		b.groups[name] = group
		b.dashed[name] = dashed
	}
	m, ok := row[x]
	if !ok {
		m = &mean{}
		row[x] = m
	}
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (b *seriesBuilder) series(labels []string) []Series {
	names := slices.Clone(b.order)
	slices.SortStableFunc(names, func(x, y string) int {
		return cmp.Or(cmp.Compare(b.groups[x], b.groups[y]), cmp.Compare(x, y))
	})
	out := make([]Series, 0, len(names))
	for _, name := range names {
		s := Series{Name: name, Group: b.groups[name], Dashed: b.dashed[name], Points: make([]Point, 0, len(labels))}
		for _, x := range labels {
			p := Point{X: x}
			if m, ok := b.cells[name][x]; ok {
				p.Y = m.value()
			}
			s.Points = append(s.Points, p)
		}
		out = append(out, s)
	}
	return out
}

// Diurnal draws one line chart per pollutant: mean by hour of day, a series per station.
func Diurnal(tbl types.MeltedTable) []Spec {
	labels := make([]string, 24)
	for h := range labels {
		labels[h] = fmt.Sprintf("%02d:00", h)
	}
	out := make([]Spec, 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		b := newSeriesBuilder()
		for _, r := range tbl.Rows {
			if r.Variable != string(p) {
				continue
			}
			b.add(r.Station, r.Station, false, labels[r.Hour], r.Value)
		}
		out = append(out, Spec{
			ID:     "diurnal-" + slug(p),
			Kind:   Line,
			Title:  "Rata-rata Diurnal " + string(p),
			XLabel: "Jam",
			YLabel: concentrationAxis,
			Labels: labels,
			Series: b.series(labels),
		})
	}
	return out
}

// Daily draws one line chart per pollutant over calendar dates, with the
// regulatory threshold of each station dashed.
func Daily(tables map[types.Pollutant]types.MeltedTable) []Spec {
	out := make([]Spec, 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		tbl := tables[p]
		var dates []time.Time
		seen := make(map[time.Time]bool)
		for _, r := range tbl.Rows {
			if !seen[r.Time] {
				seen[r.Time] = true
				dates = append(dates, r.Time)
			}
		}
		slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
		labels := make([]string, len(dates))
		for i, d := range dates {
			labels[i] = d.Format(time.DateOnly)
		}

		b := newSeriesBuilder()
		for _, r := range tbl.Rows {
			dashed := r.Variable != string(p)
			name := r.Station
			if dashed {
				name = r.Station + " " + r.Variable
			}
			b.add(name, r.Station, dashed, r.Time.Format(time.DateOnly), r.Value)
		}
		out = append(out, Spec{
			ID:     "daily-" + slug(p),
			Kind:   Line,
			Title:  "Rata-rata Harian " + string(p),
			XLabel: "Tanggal",
			YLabel: concentrationAxis,
			Labels: labels,
			Series: b.series(labels),
		})
	}
	return out
}

// Monthly draws one bar chart per pollutant: mean by month number across
// years, a series per station.
func Monthly(tbl types.MeltedTable) []Spec {
	var months []int
	seen := make(map[int]bool)
	for _, r := range tbl.Rows {
		if !seen[r.Month] {
			seen[r.Month] = true
			months = append(months, r.Month)
		}
	}
	slices.Sort(months)
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = fmt.Sprint(m)
	}

	out := make([]Spec, 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		b := newSeriesBuilder()
		for _, r := range tbl.Rows {
			if r.Variable != string(p) {
				continue
			}
			b.add(r.Station, r.Station, false, fmt.Sprint(r.Month), r.Value)
		}
		out = append(out, Spec{
			ID:     "monthly-" + slug(p),
			Kind:   Bar,
			Title:  "Rata-rata Bulanan " + string(p),
			XLabel: "Bulan",
			YLabel: concentrationAxis,
			Labels: labels,
			Series: b.series(labels),
		})
	}
	return out
}

// Categories draws one bar chart per pollutant: months per category summed
// over years, a series per station, categories from High to Low.
func Categories(tally []types.CategoryTallyRow) []Spec {
	labels := []string{string(types.High), string(types.Medium), string(types.Low)}
	out := make([]Spec, 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		totals := make(map[string]map[string]float64)
		var stations []string
		for _, r := range tally {
			if r.Pollutant != p {
				continue
			}
			row, ok := totals[r.Station]
			if !ok {
				row = make(map[string]float64)
				totals[r.Station] = row
				stations = append(stations, r.Station)
			}
			row[string(r.Category)] += float64(r.Months)
		}
		slices.Sort(stations)

		series := make([]Series, 0, len(stations))
		for _, st := range stations {
			s := Series{Name: st, Group: st, Points: make([]Point, 0, len(labels))}
			for _, c := range labels {
				v := totals[st][c]
				s.Points = append(s.Points, Point{X: c, Y: &v})
			}
			series = append(series, s)
		}
		out = append(out, Spec{
			ID:     "category-" + slug(p),
			Kind:   Bar,
			Title:  "Kategori " + string(p),
			XLabel: "Kategori",
			YLabel: "Jumlah Bulan",
			Labels: labels,
			Series: series,
			YStep:  1,
		})
	}
	return out
}

func slug(p types.Pollutant) string {
	switch p {
	case types.PM25:
		return "pm25"
	case types.PM10:
		return "pm10"
	default:
		return "o3"
	}
}
