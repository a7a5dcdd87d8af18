package dataframe

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/frameline/frameline/pkg/config"
	"github.com/frameline/frameline/pkg/frameerrors"
)

const maxCellWidth = 24

// Render formats the table as bounded-width text for terminals and logs.
// Display stops after the configured row cap with a trailing summary line.
func (df *DataFrame) Render() string {
	return df.renderN(config.DefaultConfig().Render.MaxRows)
}

func (df *DataFrame) renderN(maxRows int) string {
	df.mu.RLock()
	defer df.mu.RUnlock()

	rows := len(df.index)
	shown := rows
	if maxRows > 0 && shown > maxRows {
		shown = maxRows
	}

	cells := make([][]string, shown+1)
	header := make([]string, len(df.order)+1)
	header[0] = ""
	copy(header[1:], df.order)
	cells[0] = header
	for r := 0; r < shown; r++ {
		row := make([]string, len(df.order)+1)
		row[0] = df.index[r]
		for c, name := range df.order {
			row[c+1] = clip(df.cols[name].At(r).String())
		}
		cells[r+1] = row
	}

	widths := make([]int, len(header))
	for _, row := range cells {
		for c, cell := range row {
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range cells {
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[c]-len(cell)))
		}
		b.WriteByte('\n')
	}
	if shown < rows {
		b.WriteString("...\n")
	}
	b.WriteString("[")
	b.WriteString(strconv.Itoa(rows))
	b.WriteString(" rows x ")
	b.WriteString(strconv.Itoa(len(df.order)))
	b.WriteString(" columns]\n")
	return b.String()
}

func clip(s string) string {
	if len(s) <= maxCellWidth {
		return s
	}
	return s[:maxCellWidth-3] + "..."
}

// WriteDelimited serializes the table as delimited text: header line first
// with the column names, one row per line, missing values as the empty
// token. An empty path returns the text; otherwise it is written to the
// path, gzip-compressed when the path ends in ".gz".
func (df *DataFrame) WriteDelimited(path string, sep rune) (string, error) {
	if sep == 0 {
		sep = ','
	}

	var b strings.Builder
	if err := df.writeDelimited(&b, sep); err != nil {
		return "", err
	}
	if path == "" {
		return b.String(), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "cannot create output file").
			WithDetail("path", path)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return "", frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "write failed").
			WithDetail("path", path)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return "", frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "write failed").
				WithDetail("path", path)
		}
	}
	return "", nil
}

func (df *DataFrame) writeDelimited(w io.Writer, sep rune) error {
	df.mu.RLock()
	defer df.mu.RUnlock()

	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(df.order); err != nil {
		return frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "serialize failed")
	}
	record := make([]string, len(df.order))
	for r := range df.index {
		for c, name := range df.order {
			record[c] = df.cols[name].At(r).String()
		}
		if err := cw.Write(record); err != nil {
			return frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "serialize failed")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "serialize failed")
	}
	return nil
}

// ToJSON serializes the table in records orientation, one object per row
// with native value types and null for missing cells.
func (df *DataFrame) ToJSON() ([]byte, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()

	records := make([]map[string]interface{}, len(df.index))
	for r := range df.index {
		rec := make(map[string]interface{}, len(df.order))
		for _, name := range df.order {
			rec[name] = df.cols[name].At(r).Any()
		}
		records[r] = rec
	}
	out, err := json.Marshal(records)
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "json serialize failed")
	}
	return out, nil
}
