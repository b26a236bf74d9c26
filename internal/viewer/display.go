package viewer

import "fmt"

// DisplayState is everything a rendering surface needs to draw the viewer.
type DisplayState struct {
	DocumentRef      string   `json:"document_ref"`
	Variant          string   `json:"variant"`
	Status           string   `json:"status"`
	Attempt          int      `json:"attempt"`
	PartialFetch     bool     `json:"partial_fetch"`
	ProgressPercent  int      `json:"progress_percent"`
	FirstPageSeconds *float64 `json:"first_page_seconds"`
	FullLoadSeconds  *float64 `json:"full_load_seconds"`
	PageNumber       int      `json:"page_number"`
	PageCount        *int     `json:"page_count"`
	Error            *string  `json:"error"`
}

const notYetAvailable = "not yet available"

func (d DisplayState) FirstPageLabel() string {
	if d.FirstPageSeconds == nil {
		return "First page: " + notYetAvailable
	}
	return fmt.Sprintf("First page shown in %.2f s", *d.FirstPageSeconds)
}

func (d DisplayState) FullLoadLabel() string {
	if d.FullLoadSeconds == nil {
		return "Full document: " + notYetAvailable
	}
	return fmt.Sprintf("Full document loaded in %.2f s", *d.FullLoadSeconds)
}

func (d DisplayState) PageLabel() string {
	if d.PageCount == nil {
		return fmt.Sprintf("Page %d", d.PageNumber)
	}
	return fmt.Sprintf("Page %d of %d", d.PageNumber, *d.PageCount)
}

// Measured reports whether both latency metrics are known.
func (d DisplayState) Measured() bool {
	return d.FirstPageSeconds != nil && d.FullLoadSeconds != nil
}

// Settled reports whether the session will produce no further metrics.
func (d DisplayState) Settled() bool {
	return d.Measured() || d.Error != nil
}
