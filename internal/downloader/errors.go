package downloader

import "errors"

var (
	// ErrSizeUnknown means the probe could not determine the resource length.
	ErrSizeUnknown = errors.New("resource size unknown")
	// ErrInvalidConfiguration means non-positive chunk size or worker count.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnexpectedStatus means the server answered a ranged GET with
	// something other than 206 (or 200 when ranges are unsupported).
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrShortRead means a chunk body ended before the full range arrived.
	ErrShortRead = errors.New("short read")
	// ErrDownloadFailed means at least one chunk exhausted its retries.
	ErrDownloadFailed = errors.New("download failed")
	// ErrAssemblyIncomplete means assembly was invoked with unfinished chunks.
	ErrAssemblyIncomplete = errors.New("assembly incomplete")
	// ErrSizeMismatch means the assembled file length disagrees with the
	// probed size.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrIntegrityMismatch means the SHA-256 digest disagrees with the
	// expected value.
	ErrIntegrityMismatch = errors.New("integrity mismatch")
)
