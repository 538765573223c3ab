package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineErrorHelpersRoundTrip(t *testing.T) {
	err := ErrKeyNotFound("missing-key")
	require.True(t, IsEngineError(err))
	require.True(t, IsKeyNotFound(err))
	require.Equal(t, ErrorCodeIndexKeyNotFound, GetErrorCode(err))

	ee, ok := AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, "missing-key", ee.Key())
}

func TestErrDatabaseIsUsingCarriesDirPath(t *testing.T) {
	err := ErrDatabaseIsUsing("/var/lib/ignite")
	ee, ok := AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, "/var/lib/ignite", ee.DirPath())
	require.Equal(t, ErrorCodeDatabaseIsUsing, ee.Code())
}

func TestErrExceedMaxBatchNumCarriesCounts(t *testing.T) {
	err := ErrExceedMaxBatchNum(11, 10)
	ee, ok := AsEngineError(err)
	require.True(t, ok)
	require.Equal(t, 11, ee.PendingCount())
	require.Equal(t, ErrorCodeExceedMaxBatchNum, ee.Code())
}

func TestIsValidationErrorDistinguishesTypes(t *testing.T) {
	ve := NewValidationError(nil, ErrorCodeInvalidInput, "bad field").WithField("name").WithRule("required")
	require.True(t, IsValidationError(ve))
	require.False(t, IsStorageError(ve))
	require.False(t, IsIndexError(ve))

	extracted, ok := AsValidationError(ve)
	require.True(t, ok)
	require.Equal(t, "name", extracted.Field())
	require.Equal(t, "required", extracted.Rule())
}

func TestGetErrorCodeFallsBackToInternalForPlainErrors(t *testing.T) {
	require.Equal(t, ErrorCodeInternal, GetErrorCode(errors.New("plain")))
}

func TestGetErrorDetailsReturnsEmptyMapForPlainErrors(t *testing.T) {
	details := GetErrorDetails(errors.New("plain"))
	require.NotNil(t, details)
	require.Empty(t, details)
}

func TestStorageErrorDetailChaining(t *testing.T) {
	err := NewStorageError(nil, ErrorCodeIO, "boom").
		WithPath("/data/1.data").
		WithOffset(128).
		WithDetail("operation", "write")

	se, ok := AsStorageError(err)
	require.True(t, ok)
	require.Equal(t, "/data/1.data", se.Path())
	require.Equal(t, 128, se.Offset())

	details := GetErrorDetails(err)
	require.Equal(t, "write", details["operation"])
}

func TestStorageErrorWithDetailPreservesConcreteType(t *testing.T) {
	err := NewStorageError(nil, ErrorCodeDiskFull, "boom").
		WithPath("/data/1.data").
		WithDetail("operation", "file_open").
		WithDetail("suggestion", "free up disk space")

	require.True(t, IsStorageError(err))
	se, ok := AsStorageError(err)
	require.True(t, ok)
	require.Equal(t, "/data/1.data", se.Path())
	require.Equal(t, "file_open", se.Details()["operation"])
}

func TestClassifyDirectoryCreationErrorReturnsStorageError(t *testing.T) {
	err := ClassifyDirectoryCreationError(errors.New("permission denied"), "/data")
	require.True(t, IsStorageError(err))
}

func TestErrorsAsUnwrapsWrappedEngineError(t *testing.T) {
	inner := ErrEngineClosed()
	wrapped := errors.Join(errors.New("context"), inner)
	require.True(t, IsEngineError(wrapped))
}
