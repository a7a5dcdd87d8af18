// Package reshape converts tables between wide and long form. Pivot groups
// long-form rows by a tuple of index columns, buckets each group by the
// distinct values of a pivot column, and aggregates a value column into one
// cell per (group, bucket). Melt is the inverse: it unpivots chosen columns
// into variable/value row pairs. Both produce fresh tables with
// deterministic, first-appearance ordering of groups and buckets.
package reshape

import (
	"strings"

	"github.com/frameline/frameline/pkg/dataframe"
	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/series"
)

// Agg selects the aggregation applied to each pivot cell.
type Agg int

const (
	Sum Agg = iota
	Mean
	Count
	Min
	Max
)

// String returns the aggregation name
func (a Agg) String() string {
	switch a {
	case Sum:
		return "sum"
	case Mean:
		return "mean"
	case Count:
		return "count"
	case Min:
		return "min"
	case Max:
		return "max"
	default:
		return "unknown"
	}
}

// PivotOptions configures a long-to-wide reshape.
type PivotOptions struct {
	// Index names the grouping columns, carried through as-is
	Index []string
	// Columns names the column whose distinct values become output columns
	Columns string
	// Values names the aggregated columns
	Values []string
	// Agg is the aggregation applied per (group, bucket, value column)
	Agg Agg
	// Fill, when non-nil, replaces cells whose aggregation set is empty or
	// whose (group, bucket) combination never occurs
	Fill *series.Value
}

// MeltOptions configures a wide-to-long reshape.
type MeltOptions struct {
	// IDVars names the columns kept fixed on every output row
	IDVars []string
	// ValueVars names the unpivoted columns; empty means every column not
	// in IDVars
	ValueVars []string
	// VarName is the output column holding unpivoted column names
	// (default "variable")
	VarName string
	// ValueName is the output column holding unpivoted cell values
	// (default "value")
	ValueName string
}

// groupKey encodes a tuple of values with kind tags so that values of
// different kinds never collide.
func groupKey(vs []series.Value) string {
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteByte(byte('0' + v.Kind()))
		b.WriteByte(':')
		b.WriteString(v.String())
	}
	return b.String()
}

type pivotGroup struct {
	indexVals []series.Value
	// cells collects the aggregation set per bucket per value column
	cells map[series.Value]map[string][]series.Value
}

// Pivot reshapes long-form rows into a wide table. With one value column
// the output columns are named after the buckets; with several they are
// named "{valueCol}_{bucket}". Rows whose bucket cell is missing are
// skipped.
func Pivot(df *dataframe.DataFrame, opts PivotOptions) (*dataframe.DataFrame, error) {
	if len(opts.Index) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "pivot requires index columns")
	}
	if opts.Columns == "" {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "pivot requires a columns column")
	}
	if len(opts.Values) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema, "pivot requires value columns")
	}

	indexVals := make(map[string][]series.Value, len(opts.Index))
	indexKinds := make(map[string]series.Kind, len(opts.Index))
	for _, name := range opts.Index {
		col, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		indexVals[name] = col.Values()
		indexKinds[name] = col.Kind()
	}
	bucketCol, err := df.Column(opts.Columns)
	if err != nil {
		return nil, err
	}
	buckets := bucketCol.Values()
	valueVals := make(map[string][]series.Value, len(opts.Values))
	for _, name := range opts.Values {
		col, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		if opts.Agg != Count {
			if k := col.Kind(); k != series.KindInt && k != series.KindFloat {
				return nil, frameerrors.Newf(frameerrors.ErrorTypeTypeMismatch,
					"cannot aggregate %s over %s column %q", opts.Agg, k, name).
					WithDetail("column", name)
			}
		}
		valueVals[name] = col.Values()
	}

	rows := df.RowCount()
	groups := make(map[string]*pivotGroup)
	var groupOrder []string
	var bucketOrder []series.Value
	bucketSeen := make(map[series.Value]struct{})

	for r := 0; r < rows; r++ {
		bucket := buckets[r]
		if bucket.IsMissing() {
			continue
		}
		tuple := make([]series.Value, len(opts.Index))
		for i, name := range opts.Index {
			tuple[i] = indexVals[name][r]
		}
		key := groupKey(tuple)
		g, ok := groups[key]
		if !ok {
			g = &pivotGroup{
				indexVals: tuple,
				cells:     make(map[series.Value]map[string][]series.Value),
			}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		if _, ok := bucketSeen[bucket]; !ok {
			bucketSeen[bucket] = struct{}{}
			bucketOrder = append(bucketOrder, bucket)
		}
		cell, ok := g.cells[bucket]
		if !ok {
			cell = make(map[string][]series.Value, len(opts.Values))
			g.cells[bucket] = cell
		}
		for _, name := range opts.Values {
			cell[name] = append(cell[name], valueVals[name][r])
		}
	}

	fill := series.Missing()
	if opts.Fill != nil {
		fill = *opts.Fill
	}

	outNames := append([]string(nil), opts.Index...)
	outCols := make([]*series.Series, 0, len(opts.Index)+len(bucketOrder)*len(opts.Values))
	for i, name := range opts.Index {
		vals := make([]series.Value, len(groupOrder))
		for gi, key := range groupOrder {
			vals[gi] = groups[key].indexVals[i]
		}
		col, err := series.Typed(indexKinds[name], vals)
		if err != nil {
			return nil, err
		}
		outCols = append(outCols, col)
	}
	for _, valueName := range opts.Values {
		for _, bucket := range bucketOrder {
			outName := bucket.String()
			if len(opts.Values) > 1 {
				outName = valueName + "_" + bucket.String()
			}
			vals := make([]series.Value, len(groupOrder))
			for gi, key := range groupOrder {
				cell, ok := groups[key].cells[bucket]
				if !ok {
					vals[gi] = fill
					continue
				}
				agg, err := aggregate(opts.Agg, cell[valueName])
				if err != nil {
					return nil, err
				}
				if agg.IsMissing() {
					agg = fill
				}
				vals[gi] = agg
			}
			kind := series.KindFloat
			if opts.Agg == Count {
				kind = series.KindInt
			}
			col, err := series.Typed(kind, vals)
			if err != nil {
				return nil, err
			}
			outNames = append(outNames, outName)
			outCols = append(outCols, col)
		}
	}
	return dataframe.FromSeries(outNames, outCols)
}

// aggregate reduces one cell's collected values. Missing entries are
// ignored; an empty aggregation set yields missing (Count yields zero only
// when the combination occurred at all, which is the caller's case here).
func aggregate(agg Agg, vs []series.Value) (series.Value, error) {
	if agg == Count {
		n := int64(0)
		for _, v := range vs {
			if !v.IsMissing() {
				n++
			}
		}
		return series.Int(n), nil
	}
	var acc float64
	count := 0
	for _, v := range vs {
		if v.IsMissing() {
			continue
		}
		f, ok := v.AsFloat()
		if !ok {
			return series.Value{}, frameerrors.Newf(frameerrors.ErrorTypeTypeMismatch,
				"cannot aggregate %s over non-numeric value %q", agg, v.String())
		}
		switch {
		case count == 0:
			acc = f
		case agg == Sum || agg == Mean:
			acc += f
		case agg == Min && f < acc:
			acc = f
		case agg == Max && f > acc:
			acc = f
		}
		count++
	}
	if count == 0 {
		return series.Missing(), nil
	}
	if agg == Mean {
		acc /= float64(count)
	}
	return series.Float(acc), nil
}

// Melt unpivots the chosen columns into variable/value row pairs: one
// output row per source row per melted column. The value column keeps the
// melted columns' kind when they all agree, otherwise it stays untyped.
func Melt(df *dataframe.DataFrame, opts MeltOptions) (*dataframe.DataFrame, error) {
	if opts.VarName == "" {
		opts.VarName = "variable"
	}
	if opts.ValueName == "" {
		opts.ValueName = "value"
	}

	idSet := make(map[string]struct{}, len(opts.IDVars))
	for _, name := range opts.IDVars {
		if _, err := df.Column(name); err != nil {
			return nil, err
		}
		idSet[name] = struct{}{}
	}
	valueVars := opts.ValueVars
	if len(valueVars) == 0 {
		for _, name := range df.Columns() {
			if _, id := idSet[name]; !id {
				valueVars = append(valueVars, name)
			}
		}
	}
	if len(valueVars) == 0 {
		return nil, frameerrors.New(frameerrors.ErrorTypeSchema,
			"melt has no value columns: every column is an id column")
	}

	idVals := make(map[string][]series.Value, len(opts.IDVars))
	idKinds := make(map[string]series.Kind, len(opts.IDVars))
	for _, name := range opts.IDVars {
		col, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		idVals[name] = col.Values()
		idKinds[name] = col.Kind()
	}
	meltVals := make(map[string][]series.Value, len(valueVars))
	valueKind := series.KindNone
	uniform := true
	for i, name := range valueVars {
		col, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		meltVals[name] = col.Values()
		if i == 0 {
			valueKind = col.Kind()
		} else if col.Kind() != valueKind {
			uniform = false
		}
	}
	if !uniform {
		valueKind = series.KindNone
	}

	rows := df.RowCount()
	out := len(valueVars) * rows
	idBuf := make(map[string][]series.Value, len(opts.IDVars))
	for _, name := range opts.IDVars {
		idBuf[name] = make([]series.Value, 0, out)
	}
	varBuf := make([]series.Value, 0, out)
	valBuf := make([]series.Value, 0, out)
	for r := 0; r < rows; r++ {
		for _, name := range valueVars {
			for _, id := range opts.IDVars {
				idBuf[id] = append(idBuf[id], idVals[id][r])
			}
			varBuf = append(varBuf, series.String(name))
			valBuf = append(valBuf, meltVals[name][r])
		}
	}

	outNames := make([]string, 0, len(opts.IDVars)+2)
	outCols := make([]*series.Series, 0, len(opts.IDVars)+2)
	for _, name := range opts.IDVars {
		col, err := series.Typed(idKinds[name], idBuf[name])
		if err != nil {
			return nil, err
		}
		outNames = append(outNames, name)
		outCols = append(outCols, col)
	}
	varCol, err := series.Typed(series.KindString, varBuf)
	if err != nil {
		return nil, err
	}
	valCol, err := series.Typed(valueKind, valBuf)
	if err != nil {
		return nil, err
	}
	outNames = append(outNames, opts.VarName, opts.ValueName)
	outCols = append(outCols, varCol, valCol)
	return dataframe.FromSeries(outNames, outCols)
}
