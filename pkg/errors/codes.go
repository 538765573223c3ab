package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing data files, network operations when communicating with remote
	// systems, and device I/O when accessing storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These indicate bugs, assertion failures, or other
	// programming errors that shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems.
const (
	// ErrorCodeSegmentCorrupted indicates that a data file's content has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the system cannot read the header
	// portion of a log record. Headers contain critical framing metadata, so
	// header read failures prevent decoding the entire record.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodePayloadReadFailure indicates problems reading the actual key or
	// value bytes after successfully reading the header.
	ErrorCodePayloadReadFailure ErrorCode = "PAYLOAD_READ_FAILURE"

	// ErrorCodeInvalidRecordCrc indicates the CRC trailer of a decoded record
	// disagrees with the CRC recomputed over its bytes.
	ErrorCodeInvalidRecordCrc ErrorCode = "INVALID_RECORD_CRC"

	// ErrorCodeDataFileNotFound indicates the index pointed at a data file id
	// with no corresponding open handle; this is a bug or external tampering.
	ErrorCodeDataFileNotFound ErrorCode = "DATA_FILE_NOT_FOUND"

	// ErrorCodeDataDirCorrupted indicates the data directory's contents are
	// internally inconsistent in a way recovery cannot resolve.
	ErrorCodeDataDirCorrupted ErrorCode = "DATA_DIR_CORRUPTED"

	// ErrorCodeRecoveryFailed indicates that the engine's attempt to recover
	// from a previous failure was unsuccessful.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes address the specialized failure modes of
// key-directory lookups, mutation, and recovery.
const (
	// ErrorCodeIndexKeyNotFound indicates a lookup found no entry for a key.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexInvalidSegmentID indicates an index entry referenced a
	// data file id that does not exist among the engine's open handles.
	ErrorCodeIndexInvalidSegmentID ErrorCode = "INDEX_INVALID_SEGMENT_ID"

	// ErrorCodeIndexTimestampExtraction is retained for compatibility with the
	// index error constructor family; unused by the data-file naming scheme,
	// which carries no timestamp component.
	ErrorCodeIndexTimestampExtraction ErrorCode = "INDEX_TIMESTAMP_EXTRACTION_FAILED"

	// ErrorCodeIndexCorrupted indicates the in-memory or persistent index
	// structure itself is inconsistent.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)

// Engine-level error codes cover the concurrency and control-flow failure
// modes that only make sense at the level of the whole engine: exclusivity,
// merge scheduling, and batch bounds.
const (
	// ErrorCodeKeyIsEmpty indicates a caller passed an empty key to an
	// operation that requires a non-empty one.
	ErrorCodeKeyIsEmpty ErrorCode = "KEY_IS_EMPTY"

	// ErrorCodeDirPathIsEmpty indicates Options.DirPath was empty at Open.
	ErrorCodeDirPathIsEmpty ErrorCode = "DIR_PATH_IS_EMPTY"

	// ErrorCodeDataFileSizeTooSmall indicates Options.DataFileSize was <= 0.
	ErrorCodeDataFileSizeTooSmall ErrorCode = "DATA_FILE_SIZE_TOO_SMALL"

	// ErrorCodeInvalidMergeRatio indicates Options.DataFileMergeRatio fell
	// outside [0.0, 1.0].
	ErrorCodeInvalidMergeRatio ErrorCode = "INVALID_MERGE_RATIO"

	// ErrorCodeDatabaseIsUsing indicates the directory's flock is already held
	// by another open Engine.
	ErrorCodeDatabaseIsUsing ErrorCode = "DATABASE_IS_USING"

	// ErrorCodeMergeInProgress indicates a merge was requested while another
	// merge already holds the merging lock.
	ErrorCodeMergeInProgress ErrorCode = "MERGE_IN_PROGRESS"

	// ErrorCodeMergeRatioUnreached indicates reclaim_size/total_size fell
	// below the configured merge ratio threshold.
	ErrorCodeMergeRatioUnreached ErrorCode = "MERGE_RATIO_UNREACHED"

	// ErrorCodeMergeNoEnoughSpace indicates the capacity source reported too
	// little free space to safely run a merge.
	ErrorCodeMergeNoEnoughSpace ErrorCode = "MERGE_NO_ENOUGH_SPACE"

	// ErrorCodeExceedMaxBatchNum indicates a write batch staged more pending
	// records than its configured MaxBatchNum.
	ErrorCodeExceedMaxBatchNum ErrorCode = "EXCEED_MAX_BATCH_NUM"

	// ErrorCodeUnableToUseWriteBatch indicates a write batch was requested
	// against a persistent-index engine with no sequence-number checkpoint to
	// anchor transaction replay.
	ErrorCodeUnableToUseWriteBatch ErrorCode = "UNABLE_TO_USE_WRITE_BATCH"

	// ErrorCodeEngineClosed indicates an operation was attempted after Close.
	ErrorCodeEngineClosed ErrorCode = "ENGINE_CLOSED"
)
