package views

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"airquality-server/internal/modules/airquality/charts"
	"airquality-server/internal/modules/airquality/pipeline"
	"airquality-server/internal/modules/airquality/types"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type StationLegend struct {
	Name string
	Area string
}

type DashboardData struct {
	Stations []StationLegend
	// MinDate and MaxDate bound the date inputs (YYYY-MM-DD); empty when
	// there is no data.
	MinDate string
	MaxDate string
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

type Metric struct {
	Label string
	Value string
}

// Section is one block of the analytics partial: headline metrics followed by charts.
type Section struct {
	ID      string
	Title   string
	Note    string
	Metrics []Metric
	Charts  []charts.Spec
}

type AnalyticsData struct {
	Start    string
	End      string
	Readings int
	// Message explains why the requested range was replaced.
	Message  string
	Sections []Section
}

// NewAnalyticsData lays out res as the four dashboard sections.
func NewAnalyticsData(res pipeline.Result, message string) *AnalyticsData {
	specs := charts.Build(res)
	byPrefix := func(prefix string) []charts.Spec {
		var out []charts.Spec
		for _, s := range specs {
			if strings.HasPrefix(s.ID, prefix+"-") {
				out = append(out, s)
			}
		}
		return out
	}
	return &AnalyticsData{
		Start:    formatDate(res.Start),
		End:      formatDate(res.End),
		Readings: res.Summary.Readings,
		Message:  message,
		Sections: []Section{
			{
				ID:      "diurnal",
				Title:   "Pola Diurnal Polutan PM2.5, PM10, dan O₃",
				Metrics: meanMetrics(res.Summary.Diurnal),
				Charts:  byPrefix("diurnal"),
			},
			{
				ID:      "daily",
				Title:   "Pola Harian Polutan PM2.5, PM10, dan O₃",
				Metrics: meanMetrics(res.Summary.Daily),
				Charts:  byPrefix("daily"),
			},
			{
				ID:      "monthly",
				Title:   "Pola Bulanan Polutan PM2.5, PM10, dan O₃",
				Metrics: meanMetrics(res.Summary.Monthly),
				Charts:  byPrefix("monthly"),
			},
			{
				ID:      "category",
				Title:   "Analisis Lanjutan: Clustering-based Binning",
				Note:    "Disarankan untuk memilih rentang tanggal yang lebih panjang untuk analisis ini.",
				Metrics: []Metric{{Label: "Jumlah Bulan", Value: fmt.Sprintf("%d bulan", res.Summary.Months)}},
				Charts:  byPrefix("category"),
			},
		},
	}
}

func meanMetrics(c types.Concentrations) []Metric {
	out := make([]Metric, 0, len(types.Pollutants))
	for _, p := range types.Pollutants {
		label := string(p)
		if p == types.O3 {
			label = "O₃"
		}
		out = append(out, Metric{Label: "Rata-Rata " + label, Value: FormatConcentration(c.Get(p))})
	}
	return out
}

// FormatConcentration renders v with two decimals and its unit; a missing
// value renders as "-".
func FormatConcentration(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f μg/m³", *v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// RenderAnalyticsPartial executes only the analytics partial into w.
// Use for HTMX fragment refresh when the date range changes.
func RenderAnalyticsPartial(w io.Writer, data *AnalyticsData) error {
	if dashboardTmpl == nil {
		return errors.New("analytics template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "analytics.html", data)
}
