package viewer

import (
	"errors"
	"fmt"
)

var (
	ErrNetworkLoad = errors.New("document load failed")
	// ErrUnsupportedRange is a network load error raised when the server
	// answers a range request with the whole document or rejects it.
	ErrUnsupportedRange = fmt.Errorf("%w: range requests not supported", ErrNetworkLoad)
)

func loadErrorMessage(err error, attempt int) string {
	if err == nil {
		err = ErrNetworkLoad
	}
	if attempt > 1 {
		return fmt.Sprintf("Could not load the PDF after %d attempts: %v", attempt, err)
	}
	return fmt.Sprintf("Could not load the PDF: %v", err)
}
