package frameerrors

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrorTypeSchema, "bad shape")
	require.Equal(t, "schema: bad shape", err.Error())

	wrapped := Wrap(io.ErrUnexpectedEOF, ErrorTypeIO, "read failed")
	require.Contains(t, wrapped.Error(), "read failed")
	require.Contains(t, wrapped.Error(), io.ErrUnexpectedEOF.Error())
	require.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestIsType(t *testing.T) {
	err := ColumnNotFound("price")
	require.True(t, IsType(err, ErrorTypeColumnNotFound))
	require.False(t, IsType(err, ErrorTypeSchema))
	require.False(t, IsType(errors.New("plain"), ErrorTypeColumnNotFound))
	require.False(t, IsType(nil, ErrorTypeColumnNotFound))
}

func TestDetails(t *testing.T) {
	err := PositionOutOfRange("row", 9, 4)
	require.Equal(t, 9, err.Details["position"])
	require.Equal(t, 4, err.Details["bound"])

	err = err.WithDetail("table", "trades")
	require.Equal(t, "trades", err.Details["table"])
}

func TestParseAt(t *testing.T) {
	cause := errors.New("bare quote")
	err := ParseAt(cause, 42)
	require.True(t, IsType(err, ErrorTypeParse))
	require.Equal(t, 42, err.Details["line"])
	require.ErrorIs(t, err, cause)
}

func TestRowNotFound(t *testing.T) {
	err := RowNotFound("2024-01-01")
	require.True(t, IsType(err, ErrorTypeRowNotFound))
	require.Equal(t, "2024-01-01", err.Details["row_label"])
}
