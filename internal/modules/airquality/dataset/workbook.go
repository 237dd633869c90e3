package dataset

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the rows of the first sheet, padded to the header width.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close workbook", "path", path, "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], ErrEmpty)
	}

	width := len(rows[0])
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("sheet %q row %d: %d cells, header has %d", sheets[0], i+1, len(row), width)
		}
		if len(row) == 0 {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out = append(out, padded)
	}
	return out, nil
}
