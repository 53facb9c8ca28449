package provision

import "errors"

var (
	ErrToolingUnavailable = errors.New("container runtime is not installed or not in PATH")
	ErrArchiveMissing     = errors.New("container image archive not found")
	ErrUnsupportedFormat  = errors.New("unsupported container archive format, use .tar or .tar.gz")
	ErrLoadFailed         = errors.New("container runtime failed to load the image")
	ErrSaveFailed         = errors.New("container runtime failed to save the image")
)
