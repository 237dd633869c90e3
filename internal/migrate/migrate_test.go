package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{"0001_schema.sql", "0001", "schema", true},
		{"0012_station_areas.sql", "0012", "station_areas", true},
		{"1_schema.sql", "", "", false},
		{"0001_schema.txt", "", "", false},
		{"README.md", "", "", false},
	}
	for _, tt := range tests {
		version, name, ok := parseMigrationFilename(tt.in)
		if version != tt.version || name != tt.name || ok != tt.ok {
			t.Errorf("parseMigrationFilename(%q) = %q, %q, %v; want %q, %q, %v",
				tt.in, version, name, ok, tt.version, tt.name, tt.ok)
		}
	}
}

func TestRun_EmbeddedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	n, err := Run(ctx, db)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Fatalf("Run applied %d migrations; want 2", n)
	}
	n, err = Run(ctx, db)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if n != 0 {
		t.Errorf("second Run applied %d migrations; want 0", n)
	}

	var area string
	if err := db.QueryRow(`SELECT area FROM stations WHERE name = 'Huairou'`).Scan(&area); err != nil {
		t.Fatalf("query seeded station: %v", err)
	}
	if area != "Rural" {
		t.Errorf("Huairou area = %q; want Rural", area)
	}
}

func TestRun_OrderAndFailure(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	fsys := fstest.MapFS{
		"sql/0002_insert.sql": {Data: []byte(`INSERT INTO t (v) VALUES (1);`)},
		"sql/0001_create.sql": {Data: []byte(`CREATE TABLE t (v INTEGER);`)},
		"sql/notes.txt":       {Data: []byte(`ignored`)},
	}
	n, err := run(ctx, db, fsys)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if n != 2 {
		t.Fatalf("run applied %d; want 2", n)
	}

	fsys["sql/0003_broken.sql"] = &fstest.MapFile{Data: []byte(`INSERT INTO missing VALUES (1);`)}
	if _, err := run(ctx, db, fsys); err == nil {
		t.Fatal("run with broken migration: want error")
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + tableName + ` WHERE version = '0003'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("broken migration recorded %d times; want 0", count)
	}
}
