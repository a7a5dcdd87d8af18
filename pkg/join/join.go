// Package join computes inner, left, right and full merges between two
// dataframes on a shared key column. Matching is hash-based: a key value
// may map to several rows on either side, and every pairing of matching
// rows is emitted (duplicate keys produce the full Cartesian product).
// Output order is deterministic: left-row order first, then, for right and
// full merges, unmatched right rows in right-row order. Row labels are
// freshly assigned, never inherited.
package join

import (
	"github.com/frameline/frameline/pkg/dataframe"
	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/series"
)

// Mode selects the merge semantics.
type Mode int

const (
	// Inner keeps only key values present on both sides
	Inner Mode = iota
	// Left keeps every left row, missing-filling unmatched right columns
	Left
	// Right keeps every right row, missing-filling unmatched left columns
	Right
	// Full keeps every row from both sides
	Full
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// side is a value-semantics snapshot of one input table.
type side struct {
	names []string // non-key columns, display order
	vals  map[string][]series.Value
	kinds map[string]series.Kind
	key   []series.Value
	rows  int
}

func snapshot(df *dataframe.DataFrame, on string) side {
	s := side{
		vals:  make(map[string][]series.Value),
		kinds: make(map[string]series.Kind),
	}
	for _, name := range df.Columns() {
		col, err := df.Column(name)
		if err != nil {
			continue
		}
		s.vals[name] = col.Values()
		s.kinds[name] = col.Kind()
		if name == on {
			s.key = s.vals[name]
		} else {
			s.names = append(s.names, name)
		}
	}
	s.rows = len(s.key)
	return s
}

// keyIndex maps each non-missing key value to its row positions in row
// order. Rows with a missing key never match anything.
func keyIndex(key []series.Value) map[series.Value][]int {
	idx := make(map[series.Value][]int, len(key))
	for i, v := range key {
		if v.IsMissing() {
			continue
		}
		idx[v] = append(idx[v], i)
	}
	return idx
}

// Merge joins two tables on the named key column. The key appears once in
// the output, followed by the remaining left columns then the remaining
// right columns; a right column whose name collides with a left column gets
// a "_right" suffix.
func Merge(left, right *dataframe.DataFrame, on string, mode Mode) (*dataframe.DataFrame, error) {
	if left == nil || left.RowCount() == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "merge requires a non-empty left table")
	}
	if right == nil || right.RowCount() == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "merge requires a non-empty right table")
	}
	if _, err := left.Column(on); err != nil {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeColumnNotFound,
			"merge key %q not found in left table", on).
			WithDetail("column", on).WithDetail("side", "left")
	}
	if _, err := right.Column(on); err != nil {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeColumnNotFound,
			"merge key %q not found in right table", on).
			WithDetail("column", on).WithDetail("side", "right")
	}

	l := snapshot(left, on)
	r := snapshot(right, on)
	rightIdx := keyIndex(r.key)

	outNames := make([]string, 0, 1+len(l.names)+len(r.names))
	outNames = append(outNames, on)
	outNames = append(outNames, l.names...)
	taken := make(map[string]struct{}, len(outNames))
	for _, n := range outNames {
		taken[n] = struct{}{}
	}
	rightOut := make([]string, len(r.names)) // output names for right columns
	for i, n := range r.names {
		out := n
		if _, clash := taken[out]; clash {
			out += "_right"
		}
		taken[out] = struct{}{}
		rightOut[i] = out
		outNames = append(outNames, out)
	}

	buffers := make([][]series.Value, len(outNames))
	emit := func(lrow, rrow int) {
		c := 0
		if lrow >= 0 {
			buffers[c] = append(buffers[c], l.key[lrow])
		} else {
			buffers[c] = append(buffers[c], r.key[rrow])
		}
		c++
		for _, n := range l.names {
			if lrow >= 0 {
				buffers[c] = append(buffers[c], l.vals[n][lrow])
			} else {
				buffers[c] = append(buffers[c], series.Missing())
			}
			c++
		}
		for _, n := range r.names {
			if rrow >= 0 {
				buffers[c] = append(buffers[c], r.vals[n][rrow])
			} else {
				buffers[c] = append(buffers[c], series.Missing())
			}
			c++
		}
	}

	matchedRight := make([]bool, r.rows)
	for lrow := 0; lrow < l.rows; lrow++ {
		var matches []int
		if k := l.key[lrow]; !k.IsMissing() {
			matches = rightIdx[k]
		}
		if len(matches) > 0 {
			for _, rrow := range matches {
				matchedRight[rrow] = true
				emit(lrow, rrow)
			}
			continue
		}
		switch mode {
		case Left, Full:
			emit(lrow, -1)
		}
	}
	if mode == Right || mode == Full {
		for rrow := 0; rrow < r.rows; rrow++ {
			if !matchedRight[rrow] {
				emit(-1, rrow)
			}
		}
	}

	cols := make([]*series.Series, len(outNames))
	kindAt := func(i int) series.Kind {
		if i == 0 {
			if k := l.kinds[on]; k != series.KindNone {
				return k
			}
			return r.kinds[on]
		}
		if i <= len(l.names) {
			return l.kinds[l.names[i-1]]
		}
		return r.kinds[r.names[i-1-len(l.names)]]
	}
	for i := range outNames {
		col, err := series.Typed(kindAt(i), buffers[i])
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return dataframe.FromSeries(outNames, cols)
}
