// Package series provides the typed, growable, concurrency-safe column that
// underlies every frameline table. A Series holds values of one declared
// kind (its dtype) plus an explicit per-slot missing marker. The dtype may
// start unset and be inferred from the first non-missing write, or stay
// permanently unset for raw textual columns produced by ingestion.
package series

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/frameline/frameline/pkg/frameerrors"
)

// Series is a homogeneously-typed column with per-slot missing support.
// Reads may run concurrently; any write excludes readers and other writers.
type Series struct {
	mu     sync.RWMutex
	kind   Kind
	values []Value

	// untyped marks columns created by Untyped/Raw: they hold content
	// without a dtype and writes never trigger kind inference. Cast clears
	// the flag.
	untyped bool
}

// New creates an empty Series with the given declared kind. KindNone defers
// typing to the first non-missing write.
func New(kind Kind) *Series {
	return &Series{kind: kind}
}

// FromValues builds a Series from the given values under the standard type
// rules: the first non-missing value sets the kind, later values must match.
func FromValues(vs ...Value) (*Series, error) {
	s := &Series{values: make([]Value, 0, len(vs))}
	for _, v := range vs {
		if err := s.Append(v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Untyped builds a Series that keeps its dtype unset regardless of content.
// Values of mixed kinds are allowed; call Cast to assign a dtype later.
func Untyped(vs ...Value) *Series {
	values := make([]Value, len(vs))
	copy(values, vs)
	return &Series{values: values, untyped: true}
}

// Raw builds an untyped textual Series from delimited-source fields. The
// empty field is the missing token.
func Raw(fields []string) *Series {
	values := make([]Value, len(fields))
	for i, f := range fields {
		if f != "" {
			values[i] = String(f)
		}
	}
	return &Series{values: values, untyped: true}
}

// Typed builds a Series with the given declared kind from values that must
// satisfy it. KindNone produces an untyped column holding the values as-is.
func Typed(kind Kind, vs []Value) (*Series, error) {
	if kind == KindNone {
		return Untyped(vs...), nil
	}
	s := New(kind)
	s.values = make([]Value, 0, len(vs))
	for _, v := range vs {
		if err := s.admit(v); err != nil {
			return nil, err
		}
		s.values = append(s.values, v)
	}
	return s, nil
}

// Subset returns a new independent Series holding the slots at the given
// positions, in the given order, with the same dtype.
func (s *Series) Subset(rows []int) (*Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]Value, 0, len(rows))
	for _, i := range rows {
		if i < 0 || i >= len(s.values) {
			return nil, frameerrors.PositionOutOfRange("row", i, len(s.values))
		}
		values = append(values, s.values[i])
	}
	return &Series{kind: s.kind, values: values, untyped: s.untyped}, nil
}

// Len returns the number of slots.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Kind returns the column dtype, KindNone while unset.
func (s *Series) Kind() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}

// Get returns the value at position i.
func (s *Series) Get(i int) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.values) {
		return Value{}, frameerrors.PositionOutOfRange("row", i, len(s.values))
	}
	return s.values[i], nil
}

// At returns the value at position i without bounds checking. It is reserved
// for hot paths where the caller already validated i; violations panic.
func (s *Series) At(i int) Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[i]
}

// Set stores v at position i. Missing values are accepted regardless of the
// dtype; a non-missing value must match the dtype, or sets it when unset.
func (s *Series) Set(i int, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.values) {
		return frameerrors.PositionOutOfRange("row", i, len(s.values))
	}
	if err := s.admit(v); err != nil {
		return err
	}
	s.values[i] = v
	return nil
}

// Append extends the column by one slot holding v, under the same type rules
// as Set.
func (s *Series) Append(v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.admit(v); err != nil {
		return err
	}
	s.values = append(s.values, v)
	return nil
}

// admit enforces the type policy and performs first-write inference. Caller
// holds the write lock.
func (s *Series) admit(v Value) error {
	if v.IsMissing() {
		return nil
	}
	if s.kind == KindNone {
		if s.untyped {
			return nil
		}
		s.kind = v.Kind()
		return nil
	}
	if v.Kind() != s.kind {
		return frameerrors.Newf(frameerrors.ErrorTypeTypeMismatch,
			"cannot store %s value in %s column", v.Kind(), s.kind).
			WithDetail("value_kind", v.Kind().String()).
			WithDetail("column_kind", s.kind.String())
	}
	return nil
}

// Values returns an independent snapshot of the column's contents. Mutating
// the snapshot never affects the column.
func (s *Series) Values() []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Value, len(s.values))
	copy(out, s.values)
	return out
}

// Strings returns the delimited-text form of every slot, the empty token for
// missing values.
func (s *Series) Strings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.values))
	for i, v := range s.values {
		out[i] = v.String()
	}
	return out
}

// Floats returns the column as float64s for numeric columns; missing slots
// become NaN. Non-numeric columns fail with a type mismatch.
func (s *Series) Floats() ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kind != KindInt && s.kind != KindFloat {
		return nil, frameerrors.Newf(frameerrors.ErrorTypeTypeMismatch,
			"cannot read %s column as floats", s.kind)
	}
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		if f, ok := v.AsFloat(); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Copy returns an independent Series with the same dtype and contents.
func (s *Series) Copy() *Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]Value, len(s.values))
	copy(values, s.values)
	return &Series{kind: s.kind, values: values, untyped: s.untyped}
}

// Cast converts every slot to the target kind and sets the dtype. The
// conversion is all-or-nothing: on any unconvertible slot the column is left
// unchanged. Missing slots stay missing. This is the explicit-typing hook
// for raw ingested columns.
func (s *Series) Cast(target Kind) error {
	if target == KindNone {
		return frameerrors.New(frameerrors.ErrorTypeTypeMismatch, "cannot cast to unset kind")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	converted := make([]Value, len(s.values))
	for i, v := range s.values {
		cv, err := convert(v, target)
		if err != nil {
			return err.WithDetail("position", i)
		}
		converted[i] = cv
	}
	s.values = converted
	s.kind = target
	s.untyped = false
	return nil
}

// convert coerces one value to the target kind.
func convert(v Value, target Kind) (Value, *frameerrors.Error) {
	if v.IsMissing() {
		return v, nil
	}
	if v.Kind() == target {
		return v, nil
	}
	fail := func() (Value, *frameerrors.Error) {
		return Value{}, frameerrors.Newf(frameerrors.ErrorTypeTypeMismatch,
			"cannot convert %s value %q to %s", v.Kind(), v.String(), target)
	}
	switch target {
	case KindString:
		return String(v.String()), nil
	case KindInt:
		switch v.Kind() {
		case KindString:
			i, err := strconv.ParseInt(v.Str(), 10, 64)
			if err != nil {
				return fail()
			}
			return Int(i), nil
		case KindFloat:
			if math.Trunc(v.Float64()) != v.Float64() {
				return fail()
			}
			return Int(int64(v.Float64())), nil
		}
		return fail()
	case KindFloat:
		switch v.Kind() {
		case KindString:
			f, err := strconv.ParseFloat(v.Str(), 64)
			if err != nil {
				return fail()
			}
			return Float(f), nil
		case KindInt:
			return Float(float64(v.Int64())), nil
		}
		return fail()
	case KindBool:
		if v.Kind() == KindString {
			b, err := strconv.ParseBool(v.Str())
			if err != nil {
				return fail()
			}
			return Bool(b), nil
		}
		return fail()
	case KindTime:
		if v.Kind() == KindString {
			t, err := time.Parse(time.RFC3339Nano, v.Str())
			if err != nil {
				if t, err = time.Parse(time.RFC3339, v.Str()); err != nil {
					return fail()
				}
			}
			return Time(t), nil
		}
		return fail()
	}
	return fail()
}

// InferKind scans the column's textual content and reports the narrowest
// kind every non-missing slot parses as, trying int, float, bool, then
// string. Typed columns report their dtype.
func (s *Series) InferKind() Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.kind != KindNone {
		return s.kind
	}
	candidates := []bool{true, true, true} // int, float, bool
	seen := false
	for _, v := range s.values {
		if v.IsMissing() {
			continue
		}
		if v.Kind() != KindString {
			return KindNone
		}
		seen = true
		str := v.Str()
		if _, err := strconv.ParseInt(str, 10, 64); err != nil {
			candidates[0] = false
		}
		if _, err := strconv.ParseFloat(str, 64); err != nil {
			candidates[1] = false
		}
		if _, err := strconv.ParseBool(str); err != nil {
			candidates[2] = false
		}
	}
	if !seen {
		return KindNone
	}
	switch {
	case candidates[0]:
		return KindInt
	case candidates[1]:
		return KindFloat
	case candidates[2]:
		return KindBool
	default:
		return KindString
	}
}
