package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `station,year,month,day,hour,PM2.5,PM10,O3
Changping,2013,3,1,0,10,20,60
Changping,2013,3,1,1,20,40,80
Huairou,2013,3,2,0,30,NA,50
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "air.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file=" + filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func useDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "airquality.db"))
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "error")
}

func TestSummary(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	out, err := execute(t, "summary", writeSample(t))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"2013-03-01 .. 2013-03-02", "readings: 3", "months:   1", "PM2.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummary_range(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	out, err := execute(t, "summary", writeSample(t), "--start", "2013-03-02", "--json")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, `"readings": 1`) {
		t.Errorf("output = %s; want one reading", out)
	}

	if _, err := execute(t, "summary", writeSample(t), "--start", "2013-03-02", "--end", "2013-03-01"); err == nil {
		t.Error("reversed range: want error")
	}
	if _, err := execute(t, "summary", writeSample(t), "--end", "March"); err == nil {
		t.Error("bad --end: want error")
	}
}

func TestMigrateAndImport(t *testing.T) {
	useDatabase(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "2 migrations applied") {
		t.Errorf("migrate output = %q", out)
	}

	out, err = execute(t, "import", writeSample(t))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 3 readings") {
		t.Errorf("import output = %q", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "0 migrations applied") {
		t.Errorf("second migrate output = %q", out)
	}
}

func TestImport_badFile(t *testing.T) {
	useDatabase(t)
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("station,PM2.5\nChangping,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "import", path); err == nil {
		t.Fatal("import of file without PM10/O3: want error")
	}
}
