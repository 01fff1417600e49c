package serialization

import "errors"

var (
	// ErrInvalidMagic marks a file that is not a checkpoint.
	ErrInvalidMagic = errors.New("serialization: invalid magic bytes")
	// ErrUnsupportedVersion marks a checkpoint written by a newer format.
	ErrUnsupportedVersion = errors.New("serialization: unsupported format version")
	// ErrCorruptHeader marks an unparseable or inconsistent header.
	ErrCorruptHeader = errors.New("serialization: corrupt header")
	// ErrChecksumMismatch marks tensor data that fails verification.
	ErrChecksumMismatch = errors.New("serialization: checksum mismatch")
	// ErrTruncated marks a file shorter than its header promises.
	ErrTruncated = errors.New("serialization: truncated file")
)
