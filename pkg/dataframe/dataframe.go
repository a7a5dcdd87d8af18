// Package dataframe provides the frameline table: an ordered collection of
// named typed columns sharing one row-label sequence. Tables are built from
// declared columns or by the ingestion pipeline, addressed through the Loc
// (label) and ILoc (position) indexers, and transformed by the join and
// reshape engines into fresh, independent tables.
package dataframe

import (
	"strconv"
	"sync"

	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/series"
)

// DataFrame is an ordered mapping of column name to Series plus a sequence
// of unique row labels. All columns have equal length, matching the label
// count. Reads may run concurrently; rename and index changes exclude them.
type DataFrame struct {
	mu    sync.RWMutex
	order []string
	cols  map[string]*series.Series
	index []string
}

// New constructs a DataFrame from an ordered name list, per-column value
// sequences and a name-to-kind declaration map. This is the construction
// entry point used by external adapters (SQL results, files) once they have
// shaped their rows into columns.
func New(names []string, columns [][]series.Value, kinds map[string]series.Kind) (*DataFrame, error) {
	if len(names) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "empty column name list")
	}
	if len(columns) != len(names) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeSchema,
			"%d column names but %d value sequences", len(names), len(columns))
	}
	cols := make([]*series.Series, len(names))
	for i, name := range names {
		kind, ok := kinds[name]
		if !ok {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeSchema,
				"column %q missing from the declared type map", name).
				WithDetail("column", name)
		}
		s, err := series.Typed(kind, columns[i])
		if err != nil {
			return nil, err
		}
		cols[i] = s
	}
	return FromSeries(names, cols)
}

// FromSeries assembles a DataFrame from already-built columns. The columns
// are owned by the new table; callers that keep references are subject to
// the table's locking discipline.
func FromSeries(names []string, cols []*series.Series) (*DataFrame, error) {
	if len(names) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "empty column name list")
	}
	if len(cols) != len(names) {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeSchema,
			"%d column names but %d columns", len(names), len(cols))
	}
	byName := make(map[string]*series.Series, len(names))
	rows := cols[0].Len()
	for i, name := range names {
		if _, dup := byName[name]; dup {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeSchema,
				"duplicate column name %q", name).WithDetail("column", name)
		}
		if cols[i].Len() != rows {
			return nil, frameerrors.Newf(frameerrors.ErrorTypeSchema,
				"column %q has %d rows, expected %d", name, cols[i].Len(), rows).
				WithDetail("column", name)
		}
		byName[name] = cols[i]
	}
	df := &DataFrame{
		order: append([]string(nil), names...),
		cols:  byName,
		index: defaultIndex(rows),
	}
	return df, nil
}

func defaultIndex(n int) []string {
	idx := make([]string, n)
	for i := range idx {
		idx[i] = strconv.Itoa(i)
	}
	return idx
}

// Columns returns the column names in display order.
func (df *DataFrame) Columns() []string {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return append([]string(nil), df.order...)
}

// Index returns a copy of the row-label sequence.
func (df *DataFrame) Index() []string {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return append([]string(nil), df.index...)
}

// RowCount returns the number of rows.
func (df *DataFrame) RowCount() int {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return len(df.index)
}

// ColumnCount returns the number of columns.
func (df *DataFrame) ColumnCount() int {
	df.mu.RLock()
	defer df.mu.RUnlock()
	return len(df.order)
}

// Column returns the live column with the given name. The returned Series
// aliases this table's storage: it is not a snapshot, and mutations through
// it follow the same locking discipline as direct table mutation.
func (df *DataFrame) Column(name string) (*series.Series, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	col, ok := df.cols[name]
	if !ok {
		return nil, frameerrors.ColumnNotFound(name)
	}
	return col, nil
}

// Select returns a new independent table holding only the requested columns
// in the requested order, with the same row labels.
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	df.mu.RLock()
	defer df.mu.RUnlock()
	if len(names) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "empty selection")
	}
	cols := make([]*series.Series, len(names))
	for i, name := range names {
		col, ok := df.cols[name]
		if !ok {
			return nil, frameerrors.ColumnNotFound(name)
		}
		cols[i] = col.Copy()
	}
	out, err := FromSeries(names, cols)
	if err != nil {
		return nil, err
	}
	out.index = append([]string(nil), df.index...)
	return out, nil
}

// Rename remaps column names in place, keeping each column's position.
func (df *DataFrame) Rename(mapping map[string]string) error {
	df.mu.Lock()
	defer df.mu.Unlock()
	if len(mapping) == 0 {
		return frameerrors.New(frameerrors.ErrorTypeSchema, "empty rename mapping")
	}
	for old := range mapping {
		if _, ok := df.cols[old]; !ok {
			return frameerrors.ColumnNotFound(old)
		}
	}
	order := make([]string, len(df.order))
	cols := make(map[string]*series.Series, len(df.cols))
	for i, name := range df.order {
		renamed := name
		if to, ok := mapping[name]; ok {
			renamed = to
		}
		if _, dup := cols[renamed]; dup {
			return frameerrors.Newf(frameerrors.ErrorTypeSchema,
				"rename collides on column name %q", renamed).WithDetail("column", renamed)
		}
		order[i] = renamed
		cols[renamed] = df.cols[name]
	}
	df.order = order
	df.cols = cols
	return nil
}

// SetIndex replaces the row-label sequence in place. Labels must be unique
// and match the row count.
func (df *DataFrame) SetIndex(labels []string) error {
	df.mu.Lock()
	defer df.mu.Unlock()
	if len(labels) != len(df.index) {
		return frameerrors.Newf(frameerrors.ErrorTypeSchema,
			"%d labels for %d rows", len(labels), len(df.index))
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return frameerrors.Newf(frameerrors.ErrorTypeSchema,
				"duplicate row label %q", l).WithDetail("row_label", l)
		}
		seen[l] = struct{}{}
	}
	df.index = append([]string(nil), labels...)
	return nil
}

// ResetIndex restores the default sequential labels "0".."n-1" in place.
func (df *DataFrame) ResetIndex() {
	df.mu.Lock()
	defer df.mu.Unlock()
	df.index = defaultIndex(len(df.index))
}

// Head returns a new table holding the first n rows.
func (df *DataFrame) Head(n int) (*DataFrame, error) {
	rows := df.RowCount()
	if n > rows {
		n = rows
	}
	return df.ILoc().Range(0, n)
}

// CastColumn converts the named column to the target kind in place.
func (df *DataFrame) CastColumn(name string, kind series.Kind) error {
	col, err := df.Column(name)
	if err != nil {
		return err
	}
	return col.Cast(kind)
}

// InferKinds casts every untyped raw column to the narrowest kind all of its
// non-missing values parse as, trying int, float, bool, then string. Typed
// columns are left alone.
func (df *DataFrame) InferKinds() error {
	df.mu.RLock()
	cols := make([]*series.Series, 0, len(df.order))
	for _, name := range df.order {
		cols = append(cols, df.cols[name])
	}
	df.mu.RUnlock()
	for _, col := range cols {
		if col.Kind() != series.KindNone {
			continue
		}
		kind := col.InferKind()
		if kind == series.KindNone {
			continue
		}
		if err := col.Cast(kind); err != nil {
			return err
		}
	}
	return nil
}

// rowPositions resolves labels to positions. Caller holds at least the read
// lock.
func (df *DataFrame) rowPosition(label string) (int, bool) {
	for i, l := range df.index {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

// subsetRows builds a new table from the given row positions, preserving the
// selected labels and the column order. Caller holds the read lock.
func (df *DataFrame) subsetRows(rows []int) (*DataFrame, error) {
	cols := make([]*series.Series, len(df.order))
	for i, name := range df.order {
		sub, err := df.cols[name].Subset(rows)
		if err != nil {
			return nil, err
		}
		cols[i] = sub
	}
	out, err := FromSeries(append([]string(nil), df.order...), cols)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = df.index[r]
	}
	out.index = labels
	return out, nil
}
