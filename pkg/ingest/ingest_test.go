package ingest_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/ingest"
	"github.com/frameline/frameline/pkg/series"
)

func TestReadCSVBasic(t *testing.T) {
	src := "name,age,city\nana,31,lisbon\nbo,25,\ncy,,porto\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.NoError(t, err)

	require.Equal(t, []string{"name", "age", "city"}, df.Columns())
	require.Equal(t, 3, df.RowCount())

	// Columns come back untyped raw text
	col, err := df.Column("age")
	require.NoError(t, err)
	require.Equal(t, series.KindNone, col.Kind())

	// Empty fields are missing
	v, err := df.ILoc().At(1, 2)
	require.NoError(t, err)
	require.True(t, v.IsMissing())
	v, err = df.ILoc().At(2, 1)
	require.NoError(t, err)
	require.True(t, v.IsMissing())

	v, err = df.ILoc().At(0, 0)
	require.NoError(t, err)
	require.Equal(t, "ana", v.Str())
}

func TestReadCSVQuotedFields(t *testing.T) {
	src := "id,quote\n1,\"hello, world\"\n2,\"line two\"\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.NoError(t, err)
	v, err := df.ILoc().At(0, 1)
	require.NoError(t, err)
	require.Equal(t, "hello, world", v.Str())
}

func TestOrderingUnderParallelism(t *testing.T) {
	const rows = 10000
	var b strings.Builder
	b.WriteString("seq,payload\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d,p%d\n", i, i)
	}

	for _, workers := range []int{1, 4, 8} {
		df, err := ingest.ReadCSV(strings.NewReader(b.String()), ingest.Options{
			Workers:    workers,
			QueueDepth: 64,
		})
		require.NoError(t, err)
		require.Equal(t, rows, df.RowCount())

		col, err := df.Column("seq")
		require.NoError(t, err)
		vals := col.Values()
		for i, v := range vals {
			require.Equal(t, fmt.Sprintf("%d", i), v.Str(),
				"row %d out of order with %d workers", i, workers)
		}
	}
}

func TestBlankLinesSkipped(t *testing.T) {
	src := "a,b\n1,2\n\n\n3,4\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, df.RowCount())
	v, err := df.ILoc().At(1, 0)
	require.NoError(t, err)
	require.Equal(t, "3", v.Str())
}

func TestMalformedLineAborts(t *testing.T) {
	src := "a,b\n1,2\n3,4,5\n6,7\n"
	_, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{Workers: 4})
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeParse))

	var fe *frameerrors.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 3, fe.Details["line"])
}

func TestBareQuoteAborts(t *testing.T) {
	src := "a,b\n1,\"unterminated\n"
	_, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeParse))
}

func TestEmptySource(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader(""), ingest.Options{})
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeParse))
}

func TestCustomSeparator(t *testing.T) {
	src := "a;b\n1;2\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{Separator: ';'})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, df.Columns())
	v, err := df.ILoc().At(0, 1)
	require.NoError(t, err)
	require.Equal(t, "2", v.Str())
}

func TestReadFileRoundTrip(t *testing.T) {
	src := "region,sales\nnorth,100\nsouth,90\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"out.csv", "out.csv.gz"} {
		path := filepath.Join(dir, name)
		_, err := df.WriteDelimited(path, ',')
		require.NoError(t, err)

		back, err := ingest.ReadFile(path, ingest.Options{})
		require.NoError(t, err)
		require.Equal(t, df.Columns(), back.Columns())
		require.Equal(t, df.RowCount(), back.RowCount())
		v, err := back.ILoc().At(1, 1)
		require.NoError(t, err)
		require.Equal(t, "90", v.Str())
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ingest.ReadFile(filepath.Join(t.TempDir(), "nope.csv"), ingest.Options{})
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeIO))
}

func TestInferAfterIngest(t *testing.T) {
	src := "id,price\n1,1.5\n2,2.25\n"
	df, err := ingest.ReadCSV(strings.NewReader(src), ingest.Options{})
	require.NoError(t, err)
	require.NoError(t, df.InferKinds())

	id, err := df.Column("id")
	require.NoError(t, err)
	require.Equal(t, series.KindInt, id.Kind())
	price, err := df.Column("price")
	require.NoError(t, err)
	require.Equal(t, series.KindFloat, price.Kind())
}
