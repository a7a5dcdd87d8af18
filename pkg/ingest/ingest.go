// Package ingest turns a line-oriented delimited-text source into a
// dataframe. Decoding runs on a pool of parallel workers fed through a
// bounded work queue; a single assembly stage drains decoded rows strictly
// in source order, so the resulting table always matches the source row for
// row no matter how many workers ran. A malformed line aborts the whole run
// with a line-tagged parse error; no partial table is ever returned.
package ingest

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/frameline/frameline/pkg/config"
	"github.com/frameline/frameline/pkg/dataframe"
	"github.com/frameline/frameline/pkg/frameerrors"
	"github.com/frameline/frameline/pkg/logger"
	"github.com/frameline/frameline/pkg/metrics"
	"github.com/frameline/frameline/pkg/series"
)

const sourceLabel = "csv"

// Options configures one ingestion run. Zero values fall back to the engine
// defaults from pkg/config.
type Options struct {
	// Workers is the number of parallel decode workers (0 = host parallelism)
	Workers int
	// QueueDepth bounds the work queue; the reader blocks when it is full
	QueueDepth int
	// Separator is the field separator (0 = comma)
	Separator rune
	// Logger overrides the global logger
	Logger *zap.Logger
}

func (o Options) resolved() Options {
	def := config.DefaultConfig()
	if o.Workers <= 0 {
		o.Workers = config.HostParallelism()
	}
	if o.QueueDepth <= 0 {
		o.QueueDepth = def.Ingest.QueueDepth
	}
	if o.Separator == 0 {
		o.Separator = def.SeparatorRune()
	}
	if o.Logger == nil {
		o.Logger = logger.Get()
	}
	return o
}

// line is one unit of decode work. seq is the dense enqueue order used for
// ordered assembly; num is the 1-based source line for error reporting.
// They differ when blank lines are skipped.
type line struct {
	seq  int
	num  int
	text string
}

// decoded is one worker result.
type decoded struct {
	seq    int
	num    int
	fields []string
	err    error
}

// ReadCSV ingests a delimited-text source and returns a table whose columns
// follow the header row and whose rows follow source order. All columns come
// back untyped (raw text); call InferKinds or CastColumn to assign dtypes.
func ReadCSV(r io.Reader, opts Options) (*dataframe.DataFrame, error) {
	opts = opts.resolved()
	timer := metrics.NewTimer()
	defer timer.ObserveIngest(sourceLabel)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "cannot read source")
		}
		return nil, frameerrors.New(frameerrors.ErrorTypeParse, "empty source: no header line")
	}
	header, err := splitLine(scanner.Text(), opts.Separator)
	if err != nil {
		return nil, frameerrors.ParseAt(err, 1)
	}

	opts.Logger.Debug("starting ingestion",
		zap.Int("workers", opts.Workers),
		zap.Int("queue_depth", opts.QueueDepth),
		zap.Int("columns", len(header)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	work := make(chan line, opts.QueueDepth)
	results := make(chan decoded, opts.QueueDepth)

	// Reader: streams data lines into the bounded queue. Backpressure comes
	// from the queue capacity; the send blocks while workers are behind.
	var readErr error
	go func() {
		defer close(work)
		num := 1
		seq := 0
		for scanner.Scan() {
			num++
			text := scanner.Text()
			if text == "" {
				continue // blank line, same as the csv decoder's skip
			}
			select {
			case work <- line{seq: seq, num: num, text: text}:
				seq++
				metrics.QueueDepth.WithLabelValues(sourceLabel).Set(float64(len(work)))
			case <-ctx.Done():
				return
			}
		}
		readErr = scanner.Err()
	}()

	// Decode workers: unordered, each parses one line into its fields.
	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ln := range work {
				fields, err := splitLine(ln.text, opts.Separator)
				if err == nil && len(fields) != len(header) {
					err = frameerrors.Newf(frameerrors.ErrorTypeParse,
						"%d fields, header has %d", len(fields), len(header))
				}
				select {
				case results <- decoded{seq: ln.seq, num: ln.num, fields: fields, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Assembly: drains results strictly by source line number and appends
	// each field to its column buffer.
	buffers := make([][]string, len(header))
	pending := make(map[int]decoded)
	next := 0
	var firstErr error
	for res := range results {
		if firstErr != nil {
			continue // draining after cancel
		}
		if res.err != nil {
			firstErr = frameerrors.ParseAt(res.err, res.num)
			metrics.ParseErrors.WithLabelValues(sourceLabel).Inc()
			cancel()
			continue
		}
		pending[res.seq] = res
		for {
			row, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			for i, f := range row.fields {
				buffers[i] = append(buffers[i], f)
			}
			next++
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if readErr != nil {
		return nil, frameerrors.Wrap(readErr, frameerrors.ErrorTypeIO, "cannot read source")
	}

	cols := make([]*series.Series, len(header))
	for i := range header {
		cols[i] = series.Raw(buffers[i])
	}
	df, err := dataframe.FromSeries(header, cols)
	if err != nil {
		return nil, err
	}

	rows := next
	metrics.RowsIngested.WithLabelValues(sourceLabel).Add(float64(rows))
	opts.Logger.Debug("ingestion complete",
		zap.Int("rows", rows),
		zap.Int("columns", len(header)))
	return df, nil
}

// ReadFile ingests a delimited-text file, transparently decompressing
// gzip-compressed files named *.gz.
func ReadFile(path string, opts Options) (*dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "cannot open source file").
			WithDetail("path", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, frameerrors.Wrap(err, frameerrors.ErrorTypeIO, "cannot open gzip source").
				WithDetail("path", path)
		}
		defer gz.Close()
		r = gz
	}
	return ReadCSV(r, opts)
}

// splitLine decodes one delimited line with the collaborating CSV syntax
// decoder.
func splitLine(text string, sep rune) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = sep
	cr.FieldsPerRecord = -1
	return cr.Read()
}
