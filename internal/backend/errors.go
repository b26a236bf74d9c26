package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUpload is returned before any request is made when the file
	// is not a PDF.
	ErrInvalidUpload = errors.New("invalid upload: only PDF files are accepted")
	// ErrUploadTransport covers failed upload requests and non-2xx replies.
	ErrUploadTransport = errors.New("upload failed")
)

// APIError is an error body returned by the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error %d %s: %s", e.Status, e.Code, e.Message)
}
