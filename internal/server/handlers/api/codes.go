package api

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // missing or wrong api token

	// Dataset errors
	CodeDatasetNotFound = "E_DATASET_NOT_FOUND" // folder does not resolve to a dataset
	CodeDatasetExists   = "E_DATASET_EXISTS"    // create target already exists
	CodeDatasetLocked   = "E_DATASET_LOCKED"    // another operation holds the dataset lock
	CodeFileNotFound    = "E_FILE_NOT_FOUND"    // image, sample or img folder is missing
	CodePartialFailure  = "E_PARTIAL_FAILURE"   // some files of a multi-file operation failed
	CodeOperationFailed = "E_OPERATION_FAILED"  // every file of a multi-file operation failed

	// Export errors
	CodeExportUnavailable = "E_EXPORT_UNAVAILABLE" // s3 export requested but not configured
)
