package errors

import stdErrors "errors"

// EngineError is a specialized error type for failures that only make sense
// at the level of the whole engine: directory exclusivity, merge scheduling,
// batch bounds, and the KeyNotFound control-flow signal. It embeds baseError
// to inherit chaining, structured details, and error codes, the same way
// StorageError and IndexError do.
type EngineError struct {
	*baseError

	// key identifies the key involved, when the error concerns a specific
	// key (e.g. KeyNotFound).
	key string

	// dirPath identifies the data directory involved, when the error
	// concerns directory-level state (e.g. DatabaseIsUsing).
	dirPath string

	// pendingCount records how many records were staged, for batch-bound errors.
	pendingCount int
}

// NewEngineError creates a new engine-level error with the provided context.
func NewEngineError(err error, code ErrorCode, msg string) *EngineError {
	return &EngineError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the EngineError type.
func (ee *EngineError) WithMessage(msg string) *EngineError {
	ee.baseError.WithMessage(msg)
	return ee
}

// WithCode sets the error code while preserving the EngineError type.
func (ee *EngineError) WithCode(code ErrorCode) *EngineError {
	ee.baseError.WithCode(code)
	return ee
}

// WithDetail adds contextual information while maintaining the EngineError type.
func (ee *EngineError) WithDetail(key string, value any) *EngineError {
	ee.baseError.WithDetail(key, value)
	return ee
}

// WithKey records which key was being processed when the error occurred.
func (ee *EngineError) WithKey(key string) *EngineError {
	ee.key = key
	return ee
}

// WithDirPath records which data directory was involved.
func (ee *EngineError) WithDirPath(dirPath string) *EngineError {
	ee.dirPath = dirPath
	return ee
}

// WithPendingCount records how many records a batch had staged.
func (ee *EngineError) WithPendingCount(count int) *EngineError {
	ee.pendingCount = count
	return ee
}

// Key returns the key associated with the error, if any.
func (ee *EngineError) Key() string {
	return ee.key
}

// DirPath returns the data directory associated with the error, if any.
func (ee *EngineError) DirPath() string {
	return ee.dirPath
}

// PendingCount returns the number of pending records associated with the error, if any.
func (ee *EngineError) PendingCount() int {
	return ee.pendingCount
}

// ErrKeyNotFound builds the canonical KeyNotFound signal. Callers compare
// against this with errors.Is or inspect the returned Code().
func ErrKeyNotFound(key string) *EngineError {
	return NewEngineError(nil, ErrorCodeIndexKeyNotFound, "key not found").WithKey(key)
}

// ErrDatabaseIsUsing builds the canonical signal for a directory already
// held exclusively by another open engine.
func ErrDatabaseIsUsing(dirPath string) *EngineError {
	return NewEngineError(nil, ErrorCodeDatabaseIsUsing, "the data directory is already in use by another process").
		WithDirPath(dirPath)
}

// ErrMergeInProgress builds the canonical signal for a merge requested while
// another merge is already running.
func ErrMergeInProgress() *EngineError {
	return NewEngineError(nil, ErrorCodeMergeInProgress, "a merge is already in progress")
}

// ErrMergeRatioUnreached builds the canonical signal for a merge refused
// because the reclaimable fraction is below the configured threshold.
func ErrMergeRatioUnreached(ratio, threshold float64) *EngineError {
	return NewEngineError(nil, ErrorCodeMergeRatioUnreached, "reclaimable ratio has not reached the configured merge threshold").
		WithDetail("ratio", ratio).
		WithDetail("threshold", threshold)
}

// ErrMergeNoEnoughSpace builds the canonical signal for a merge refused
// because the capacity source reports insufficient free space.
func ErrMergeNoEnoughSpace(needed, available uint64) *EngineError {
	return NewEngineError(nil, ErrorCodeMergeNoEnoughSpace, "not enough free disk space to run a merge").
		WithDetail("needed", needed).
		WithDetail("available", available)
}

// ErrExceedMaxBatchNum builds the canonical signal for a batch whose pending
// set grew past its configured bound.
func ErrExceedMaxBatchNum(pending, max int) *EngineError {
	return NewEngineError(nil, ErrorCodeExceedMaxBatchNum, "write batch exceeds the configured maximum number of pending records").
		WithPendingCount(pending).
		WithDetail("max", max)
}

// ErrUnableToUseWriteBatch builds the canonical signal for a batch requested
// against a persistent index with no sequence-number checkpoint to anchor
// transaction replay.
func ErrUnableToUseWriteBatch() *EngineError {
	return NewEngineError(nil, ErrorCodeUnableToUseWriteBatch,
		"cannot open a write batch: persistent index has no sequence number checkpoint to anchor replay")
}

// ErrEngineClosed builds the canonical signal for an operation attempted
// after the engine has been closed.
func ErrEngineClosed() *EngineError {
	return NewEngineError(nil, ErrorCodeEngineClosed, "engine is closed")
}

// ErrKeyIsEmpty builds the canonical signal for an operation that requires a
// non-empty key.
func ErrKeyIsEmpty() *EngineError {
	return NewEngineError(nil, ErrorCodeKeyIsEmpty, "key must not be empty")
}

// IsEngineError checks if the given error is an EngineError or contains one
// in its error chain.
func IsEngineError(err error) bool {
	var ee *EngineError
	return stdErrors.As(err, &ee)
}

// AsEngineError extracts EngineError context from an error chain.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if stdErrors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsKeyNotFound reports whether err (or something in its chain) is the
// KeyNotFound engine signal.
func IsKeyNotFound(err error) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Code() == ErrorCodeIndexKeyNotFound
}
