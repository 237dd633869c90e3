package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "STATIC_DIR", "DATA_SOURCE", "DATA_PATH",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
}

// clearEnv blanks every variable LoadFromEnv reads so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if !filepath.IsAbs(got.StaticDir) || filepath.Base(got.StaticDir) != "static" {
		t.Errorf("StaticDir = %q, want absolute path ending in static", got.StaticDir)
	}
	if got.DataSource != SourceCSV {
		t.Errorf("DataSource = %q, want %q", got.DataSource, SourceCSV)
	}
	if got.DataPath != "data/air_quality.csv" {
		t.Errorf("DataPath = %q", got.DataPath)
	}
	if got.Driver != "sqlite3" || got.Path != "data/airquality.db" || got.DSN != "" {
		t.Errorf("db settings = %q %q %q", got.Driver, got.Path, got.DSN)
	}
	if got.MaxOpenConns != 1 || got.MaxIdleConns != 1 || got.ConnMaxLifetime != 0 {
		t.Errorf("pool = %d/%d/%v, want 1/1/0s", got.MaxOpenConns, got.MaxIdleConns, got.ConnMaxLifetime)
	}
	if got.LogSQL {
		t.Error("LogSQL = true, want false")
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_DataSource(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "csv", want: SourceCSV},
		{in: "SQLite", want: SourceSQLite},
		{in: "postgres", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATA_SOURCE", tt.in)
			t.Setenv("DATA_PATH", " /srv/data/beijing.xlsx ")

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatal("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v", err)
			}
			if got.DataSource != tt.want {
				t.Errorf("DataSource = %q, want %q", got.DataSource, tt.want)
			}
			if got.DataPath != "/srv/data/beijing.xlsx" {
				t.Errorf("DataPath = %q", got.DataPath)
			}
		})
	}
}

func TestLoadFromEnv_Database(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_MAX_OPEN_CONNS", "4")
		t.Setenv("DB_MAX_IDLE_CONNS", "2")
		t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
		t.Setenv("DB_LOG_SQL", "true")
		t.Setenv("DB_DSN", "file::memory:?cache=shared")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v", err)
		}
		if got.MaxOpenConns != 4 || got.MaxIdleConns != 2 || got.ConnMaxLifetime != 5*time.Minute {
			t.Errorf("pool = %d/%d/%v", got.MaxOpenConns, got.MaxIdleConns, got.ConnMaxLifetime)
		}
		if !got.LogSQL {
			t.Error("LogSQL = false, want true")
		}
		if got.DSN != "file::memory:?cache=shared" {
			t.Errorf("DSN = %q", got.DSN)
		}
	})

	for key, val := range map[string]string{
		"DB_MAX_OPEN_CONNS":    "many",
		"DB_MAX_IDLE_CONNS":    "1.5",
		"DB_CONN_MAX_LIFETIME": "forever",
		"DB_LOG_SQL":           "sometimes",
	} {
		t.Run("invalid "+key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q: error = nil, want non-nil", key, val)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "info", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "  DeBuG \n", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo, wantErr: true},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	const fromFile, preset = "AIRQUALITY_TEST_FROM_FILE", "AIRQUALITY_TEST_PRESET"
	for _, k := range []string{fromFile, preset} {
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}
	if err := os.Setenv(preset, "process"); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	body := fromFile + "=data/other.csv\n" + preset + "=file\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(fromFile); got != "data/other.csv" {
		t.Errorf("%s = %q, want data/other.csv", fromFile, got)
	}
	if got := os.Getenv(preset); got != "process" {
		t.Errorf("%s = %q, want the process value to win", preset, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error = %v, want nil", err)
	}
}
