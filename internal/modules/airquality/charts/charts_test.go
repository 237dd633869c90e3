package charts

import (
	"testing"
	"time"

	"airquality-server/internal/modules/airquality/pipeline"
	"airquality-server/internal/modules/airquality/types"
)

func fp(v float64) *float64 { return &v }

func reading(station string, month, day, hour int, pm25 float64) types.Reading {
	ts := time.Date(2013, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	return types.Reading{
		Station: station,
		Time:    ts,
		Date:    time.Date(2013, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Year:    2013,
		Month:   month,
		Day:     day,
		Hour:    hour,
		Concentrations: types.Concentrations{
			PM25: fp(pm25),
			PM10: fp(pm25 * 2),
			O3:   fp(50),
		},
	}
}

func sampleResult() pipeline.Result {
	return pipeline.Render([]types.Reading{
		reading("Changping", 3, 1, 0, 10),
		reading("Changping", 3, 2, 0, 30),
		reading("Changping", 3, 1, 1, 20),
		reading("Huairou", 4, 1, 0, 90),
	})
}

func findSpec(t *testing.T, specs []Spec, id string) Spec {
	t.Helper()
	for _, s := range specs {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("spec %q not found", id)
	return Spec{}
}

func TestBuild_allSections(t *testing.T) {
	specs := Build(sampleResult())
	if len(specs) != 12 {
		t.Fatalf("len(specs) = %d; want 12", len(specs))
	}
	for _, s := range specs {
		for _, series := range s.Series {
			if len(series.Points) != len(s.Labels) {
				t.Errorf("%s/%s: %d points for %d labels", s.ID, series.Name, len(series.Points), len(s.Labels))
			}
		}
	}
}

func TestDiurnal_meanByHour(t *testing.T) {
	spec := findSpec(t, Build(sampleResult()), "diurnal-pm25")
	if spec.Kind != Line {
		t.Errorf("Kind = %q; want line", spec.Kind)
	}
	if len(spec.Labels) != 24 || spec.Labels[0] != "00:00" || spec.Labels[23] != "23:00" {
		t.Fatalf("Labels = %v; want 00:00..23:00", spec.Labels)
	}
	if len(spec.Series) != 2 || spec.Series[0].Name != "Changping" {
		t.Fatalf("Series = %+v; want Changping, Huairou", spec.Series)
	}
	// hour 0 for Changping averages 3/1 (10) and 3/2 (30).
	got := spec.Series[0].Points[0].Y
	if got == nil || *got != 20 {
		t.Errorf("Changping 00:00 = %v; want 20", got)
	}
	if spec.Series[0].Points[5].Y != nil {
		t.Errorf("Changping 05:00 = %v; want nil", *spec.Series[0].Points[5].Y)
	}
}

func TestDaily_thresholdDashed(t *testing.T) {
	spec := findSpec(t, Build(sampleResult()), "daily-pm10")
	var dashed, solid int
	for _, s := range spec.Series {
		if s.Dashed {
			dashed++
			if s.Points[0].Y != nil && *s.Points[0].Y != 150 {
				t.Errorf("%s threshold = %v; want 150", s.Name, *s.Points[0].Y)
			}
		} else {
			solid++
		}
	}
	if dashed != 2 || solid != 2 {
		t.Errorf("dashed=%d solid=%d; want 2 and 2", dashed, solid)
	}
	if spec.Labels[0] != "2013-03-01" {
		t.Errorf("Labels[0] = %q; want 2013-03-01", spec.Labels[0])
	}
}

func TestMonthly_labels(t *testing.T) {
	spec := findSpec(t, Build(sampleResult()), "monthly-o3")
	if spec.Kind != Bar {
		t.Errorf("Kind = %q; want bar", spec.Kind)
	}
	if len(spec.Labels) != 2 || spec.Labels[0] != "3" || spec.Labels[1] != "4" {
		t.Errorf("Labels = %v; want [3 4]", spec.Labels)
	}
}

func TestCategories_order(t *testing.T) {
	spec := findSpec(t, Build(sampleResult()), "category-pm25")
	want := []string{"High", "Medium", "Low"}
	for i, l := range want {
		if spec.Labels[i] != l {
			t.Fatalf("Labels = %v; want %v", spec.Labels, want)
		}
	}
	if spec.YStep != 1 {
		t.Errorf("YStep = %v; want 1", spec.YStep)
	}
	var total float64
	for _, s := range spec.Series {
		for _, p := range s.Points {
			total += *p.Y
		}
	}
	if total != 2 {
		t.Errorf("total months = %v; want 2 (one per station-month)", total)
	}
}

func TestBuild_empty(t *testing.T) {
	specs := Build(pipeline.Render(nil))
	if len(specs) != 12 {
		t.Fatalf("len(specs) = %d; want 12", len(specs))
	}
	for _, s := range specs {
		if len(s.Series) != 0 {
			t.Errorf("%s has %d series; want 0", s.ID, len(s.Series))
		}
	}
}
