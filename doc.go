// Package frameline is a typed, columnar, in-process dataframe engine:
// a statically-typed alternative to dynamic dataframe libraries for
// building, querying, reshaping and joining tabular datasets.
//
// The engine is organized as a small set of packages:
//
//   - pkg/series: the typed column. A Series holds values of one declared
//     kind with per-slot missing support, enforces the kind on every write,
//     and is safe for concurrent readers alongside a single writer.
//
//   - pkg/dataframe: the table. A DataFrame is an ordered collection of
//     named Series sharing one row-label sequence, addressed through the
//     Loc (label) and ILoc (position) indexers, rendered as bounded-width
//     text, and serialized as delimited text or JSON.
//
//   - pkg/ingest: the concurrent ingestion pipeline. Delimited-text sources
//     are decoded by a parallel worker pool behind a bounded queue and
//     assembled strictly in source order; a malformed line aborts the run
//     with a line-tagged parse error.
//
//   - pkg/join: inner, left, right and full merges between two tables on a
//     shared key column, with Cartesian expansion of duplicate keys and
//     deterministic output order.
//
//   - pkg/reshape: pivot (long to wide, with Sum/Mean/Count/Min/Max
//     aggregation) and melt (wide to long).
//
// External adapters — database readers, chart renderers, file tooling —
// stay outside the engine and talk to it through dataframe.New, the ingest
// entry points, and the read-only table accessors.
//
// # Quick Start
//
//	df, err := ingest.ReadFile("sales.csv", ingest.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := df.InferKinds(); err != nil {
//		log.Fatal(err)
//	}
//	wide, err := reshape.Pivot(df, reshape.PivotOptions{
//		Index:   []string{"Region"},
//		Columns: "Quarter",
//		Values:  []string{"Sales"},
//		Agg:     reshape.Sum,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(wide.Render())
package frameline
