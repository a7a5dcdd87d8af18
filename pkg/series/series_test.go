package series

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/frameline/frameline/pkg/frameerrors"
)

func TestKindInferenceOnFirstWrite(t *testing.T) {
	s := New(KindNone)
	require.Equal(t, KindNone, s.Kind())

	// Missing values never set the kind
	require.NoError(t, s.Append(Missing()))
	require.Equal(t, KindNone, s.Kind())

	// First non-missing write sets it
	require.NoError(t, s.Append(Int(7)))
	require.Equal(t, KindInt, s.Kind())

	// Once set it never changes
	err := s.Append(String("seven"))
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeTypeMismatch))
	require.Equal(t, KindInt, s.Kind())
}

func TestMismatchLeavesColumnUnchanged(t *testing.T) {
	s, err := FromValues(Float(1.5), Float(2.5))
	require.NoError(t, err)

	require.Error(t, s.Append(Bool(true)))
	require.Equal(t, 2, s.Len())

	require.Error(t, s.Set(0, String("x")))
	v, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, Float(1.5), v)

	// Missing is always accepted
	require.NoError(t, s.Set(0, Missing()))
	v, err = s.Get(0)
	require.NoError(t, err)
	require.True(t, v.IsMissing())
	require.Equal(t, KindFloat, s.Kind())
}

func TestBoundsChecking(t *testing.T) {
	s, err := FromValues(Int(1))
	require.NoError(t, err)

	_, err = s.Get(1)
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypePosition))
	var fe *frameerrors.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 1, fe.Details["position"])
	require.Equal(t, 1, fe.Details["bound"])

	_, err = s.Get(-1)
	require.Error(t, err)
	require.Error(t, s.Set(3, Int(9)))
}

func TestValuesSnapshotIndependence(t *testing.T) {
	s, err := FromValues(String("a"), String("b"))
	require.NoError(t, err)

	snap := s.Values()
	snap[0] = String("mutated")
	v, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, "a", v.Str())

	// And the other direction: later column writes don't touch the snapshot
	require.NoError(t, s.Set(1, String("c")))
	require.Equal(t, "b", snap[1].Str())
}

func TestRawColumnsStayUntyped(t *testing.T) {
	s := Raw([]string{"1", "", "x"})
	require.Equal(t, KindNone, s.Kind())
	require.Equal(t, 3, s.Len())

	v, err := s.Get(1)
	require.NoError(t, err)
	require.True(t, v.IsMissing())

	// Writes to a raw column never trigger inference
	require.NoError(t, s.Append(Int(4)))
	require.Equal(t, KindNone, s.Kind())
}

func TestUntypedHoldsMixedKinds(t *testing.T) {
	s := Untyped(Int(1), String("two"), Missing())
	require.Equal(t, KindNone, s.Kind())
	require.Equal(t, 3, s.Len())
	require.Equal(t, KindString, s.At(1).Kind())
}

func TestCast(t *testing.T) {
	s := Raw([]string{"1", "2", ""})
	require.NoError(t, s.Cast(KindInt))
	require.Equal(t, KindInt, s.Kind())
	require.Equal(t, int64(2), s.At(1).Int64())
	require.True(t, s.At(2).IsMissing())

	// Widening int to float
	require.NoError(t, s.Cast(KindFloat))
	require.Equal(t, 1.0, s.At(0).Float64())

	// Non-integral float to int fails and leaves the column unchanged
	require.NoError(t, s.Set(0, Float(1.5)))
	err := s.Cast(KindInt)
	require.Error(t, err)
	require.True(t, frameerrors.IsType(err, frameerrors.ErrorTypeTypeMismatch))
	require.Equal(t, KindFloat, s.Kind())
	require.Equal(t, 1.5, s.At(0).Float64())
}

func TestCastFailureAtomicity(t *testing.T) {
	s := Raw([]string{"1", "oops", "3"})
	err := s.Cast(KindInt)
	require.Error(t, err)
	require.Equal(t, KindNone, s.Kind())
	require.Equal(t, "oops", s.At(1).Str())
}

func TestInferKind(t *testing.T) {
	cases := []struct {
		fields []string
		want   Kind
	}{
		{[]string{"1", "2", ""}, KindInt},
		{[]string{"1", "2.5"}, KindFloat},
		{[]string{"true", "false"}, KindBool},
		{[]string{"1", "x"}, KindString},
		{[]string{"", ""}, KindNone},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Raw(tc.fields).InferKind(), "fields %v", tc.fields)
	}
}

func TestSubset(t *testing.T) {
	s, err := FromValues(Int(10), Int(20), Int(30))
	require.NoError(t, err)

	sub, err := s.Subset([]int{2, 0})
	require.NoError(t, err)
	require.Equal(t, 2, sub.Len())
	require.Equal(t, int64(30), sub.At(0).Int64())
	require.Equal(t, KindInt, sub.Kind())

	_, err = s.Subset([]int{3})
	require.Error(t, err)

	// Subset is independent of the source
	require.NoError(t, sub.Set(0, Int(99)))
	require.Equal(t, int64(30), s.At(2).Int64())
}

func TestFloats(t *testing.T) {
	s, err := FromValues(Int(1), Missing(), Int(3))
	require.NoError(t, err)
	fs, err := s.Floats()
	require.NoError(t, err)
	require.Equal(t, 1.0, fs[0])
	require.NotEqual(t, fs[1], fs[1]) // NaN
	require.Equal(t, 3.0, fs[2])

	str, err := FromValues(String("a"))
	require.NoError(t, err)
	_, err = str.Floats()
	require.Error(t, err)
}

func TestConcurrentReaders(t *testing.T) {
	s, err := FromValues(Int(1), Int(2), Int(3), Int(4))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				n := s.Len()
				require.Equal(t, 4, n)
				v, err := s.Get(i % n)
				require.NoError(t, err)
				require.False(t, v.IsMissing())
			}
		}()
	}
	wg.Wait()
}

func TestReadersAlongsideWriter(t *testing.T) {
	s := New(KindInt)
	require.NoError(t, s.Append(Int(0)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i < 2000; i++ {
			_ = s.Append(Int(int64(i)))
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				// A length observed under the lock is always backed by
				// initialized storage.
				n := s.Len()
				require.Greater(t, n, 0)
				v, err := s.Get(n - 1)
				require.NoError(t, err)
				require.False(t, v.IsMissing())
				require.Equal(t, KindInt, v.Kind())
			}
		}()
	}
	wg.Wait()
	<-done
	require.Equal(t, 2000, s.Len())
}
