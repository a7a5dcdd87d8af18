package dataframe

import (
	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/series"
)

// Loc resolves string row labels and column names against its table's
// current state. It holds no cache: every call re-resolves under the table's
// read lock, so it stays correct across renames and index changes.
type Loc struct {
	df *DataFrame
}

// Loc returns the label indexer for this table.
func (df *DataFrame) Loc() *Loc {
	return &Loc{df: df}
}

// At returns the cell at the given row label and column name.
func (l *Loc) At(rowLabel, colName string) (series.Value, error) {
	l.df.mu.RLock()
	defer l.df.mu.RUnlock()
	col, ok := l.df.cols[colName]
	if !ok {
		return series.Value{}, frameerrors.ColumnNotFound(colName)
	}
	pos, ok := l.df.rowPosition(rowLabel)
	if !ok {
		return series.Value{}, frameerrors.RowNotFound(rowLabel)
	}
	return col.At(pos), nil
}

// Row returns a new one-row table for the given label.
func (l *Loc) Row(label string) (*DataFrame, error) {
	return l.Rows(label)
}

// Rows returns a new table holding the given rows in the given order,
// preserving their labels.
func (l *Loc) Rows(labels ...string) (*DataFrame, error) {
	l.df.mu.RLock()
	defer l.df.mu.RUnlock()
	rows := make([]int, len(labels))
	for i, label := range labels {
		pos, ok := l.df.rowPosition(label)
		if !ok {
			return nil, frameerrors.RowNotFound(label)
		}
		rows[i] = pos
	}
	return l.df.subsetRows(rows)
}

// Col returns the live column with the given name, aliasing the table's
// storage.
func (l *Loc) Col(name string) (*series.Series, error) {
	return l.df.Column(name)
}

// Cols returns a new table holding the named columns, preserving row labels.
func (l *Loc) Cols(names ...string) (*DataFrame, error) {
	return l.df.Select(names...)
}

// ILoc resolves integer row and column positions against its table's
// current state, bounds-checking every access.
type ILoc struct {
	df *DataFrame
}

// ILoc returns the position indexer for this table.
func (df *DataFrame) ILoc() *ILoc {
	return &ILoc{df: df}
}

// At returns the cell at the given row and column positions.
func (il *ILoc) At(rowPos, colPos int) (series.Value, error) {
	il.df.mu.RLock()
	defer il.df.mu.RUnlock()
	if colPos < 0 || colPos >= len(il.df.order) {
		return series.Value{}, frameerrors.PositionOutOfRange("column", colPos, len(il.df.order))
	}
	if rowPos < 0 || rowPos >= len(il.df.index) {
		return series.Value{}, frameerrors.PositionOutOfRange("row", rowPos, len(il.df.index))
	}
	return il.df.cols[il.df.order[colPos]].At(rowPos), nil
}

// Row returns a new one-row table for the given position.
func (il *ILoc) Row(pos int) (*DataFrame, error) {
	return il.Rows(pos)
}

// Rows returns a new table holding the rows at the given positions, in the
// given order.
func (il *ILoc) Rows(positions ...int) (*DataFrame, error) {
	il.df.mu.RLock()
	defer il.df.mu.RUnlock()
	for _, pos := range positions {
		if pos < 0 || pos >= len(il.df.index) {
			return nil, frameerrors.PositionOutOfRange("row", pos, len(il.df.index))
		}
	}
	return il.df.subsetRows(positions)
}

// Range returns a new table holding rows [start, endExclusive). A range
// where start equals endExclusive is a valid zero-row table.
func (il *ILoc) Range(start, endExclusive int) (*DataFrame, error) {
	il.df.mu.RLock()
	defer il.df.mu.RUnlock()
	rows := len(il.df.index)
	if start > endExclusive {
		return nil, frameerrors.Newf(frameerrors.ErrorTypePosition,
			"range start %d greater than end %d", start, endExclusive).
			WithDetail("start", start).
			WithDetail("end", endExclusive)
	}
	if start < 0 || start > rows {
		return nil, frameerrors.PositionOutOfRange("range start", start, rows+1)
	}
	if endExclusive > rows {
		return nil, frameerrors.PositionOutOfRange("range end", endExclusive, rows+1)
	}
	positions := make([]int, 0, endExclusive-start)
	for i := start; i < endExclusive; i++ {
		positions = append(positions, i)
	}
	return il.df.subsetRows(positions)
}

// Col returns the live column at the given position, aliasing the table's
// storage.
func (il *ILoc) Col(pos int) (*series.Series, error) {
	il.df.mu.RLock()
	defer il.df.mu.RUnlock()
	if pos < 0 || pos >= len(il.df.order) {
		return nil, frameerrors.PositionOutOfRange("column", pos, len(il.df.order))
	}
	return il.df.cols[il.df.order[pos]], nil
}

// Cols returns a new table holding the columns at the given positions, in
// the given order, preserving row labels.
func (il *ILoc) Cols(positions ...int) (*DataFrame, error) {
	il.df.mu.RLock()
	names := make([]string, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(il.df.order) {
			il.df.mu.RUnlock()
			return nil, frameerrors.PositionOutOfRange("column", pos, len(il.df.order))
		}
		names[i] = il.df.order[pos]
	}
	il.df.mu.RUnlock()
	return il.df.Select(names...)
}
