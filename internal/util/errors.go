package util

import "errors"

var (
	ErrInvalidPDF      = errors.New("file is not a valid PDF")
	ErrNotLinearized   = errors.New("PDF linearization failed")
	ErrInvalidFilename = errors.New("invalid file name")
	ErrFileNotFound    = errors.New("file not found")
	ErrUploadTooLarge  = errors.New("upload exceeds size limit")
)
