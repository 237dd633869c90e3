package repository

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"airquality-server/internal/modules/airquality/dataset"
	"airquality-server/internal/modules/airquality/types"
)

type fileRepository struct {
	path string
	load func(string) ([]types.Reading, error)

	once     sync.Once
	readings []types.Reading
	err      error
}

// NewFileRepository serves readings from a CSV or XLSX file. The file is read
// once on first use and the result, including a load error, is kept.
func NewFileRepository(path string) ReadingRepository {
	return &fileRepository{path: path, load: dataset.LoadFile}
}

func (r *fileRepository) GetReadings(ctx context.Context) ([]types.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.once.Do(func() {
		r.readings, r.err = r.load(r.path)
	})
	return r.readings, r.err
}

func (r *fileRepository) GetStations(ctx context.Context) ([]types.Station, error) {
	readings, err := r.GetReadings(ctx)
	if err != nil {
		return nil, err
	}
	return StationsOf(readings), nil
}

func (r *fileRepository) Ping(ctx context.Context) error {
	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	_, err := r.GetReadings(ctx)
	return err
}

// StationsOf lists the distinct stations of readings ordered by name.
func StationsOf(readings []types.Reading) []types.Station {
	seen := make(map[string]bool)
	var names []string
	for _, rd := range readings {
		if !seen[rd.Station] {
			seen[rd.Station] = true
			names = append(names, rd.Station)
		}
	}
	slices.Sort(names)
	out := make([]types.Station, 0, len(names))
	for _, n := range names {
		out = append(out, types.Station{ID: n, Name: n, Area: StationArea(n)})
	}
	return out
}

var stationAreas = map[string]string{
	"Wanshouxigong": "Urban",
	"Changping":     "Suburban",
	"Huairou":       "Rural",
}

// StationArea returns the land-use class shown in the dashboard legend, or ""
// for stations outside the reference set.
func StationArea(name string) string {
	return stationAreas[name]
}
