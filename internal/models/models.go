package models

import "time"

// FileRecord is one stored PDF variant.
type FileRecord struct {
	Name       string    `json:"name"`
	BaseName   string    `json:"base_name"`
	Variant    string    `json:"variant"`
	SizeBytes  int64     `json:"size_bytes"`
	PageCount  int       `json:"page_count"`
	Linearized bool      `json:"linearized"`
	SHA256     string    `json:"sha256"`
	CreatedAt  time.Time `json:"created_at"`
}

// FileInfo is the /files listing entry.
type FileInfo struct {
	Name      string  `json:"name"`
	Size      int64   `json:"size"`
	Created   float64 `json:"created"`
	IsLinear  bool    `json:"is_linear"`
	PairName  string  `json:"pair_name"`
	BaseName  string  `json:"base_name"`
	PageCount int     `json:"page_count,omitempty"`
}

type UploadResult struct {
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	PageCount        int    `json:"page_count,omitempty"`
}

// LoadReport is a viewer's measurement of one load session.
type LoadReport struct {
	ReportID         string    `json:"report_id"`
	Document         string    `json:"document"`
	BaseName         string    `json:"base_name"`
	Variant          string    `json:"variant"`
	Attempt          int       `json:"attempt"`
	PartialFetch     bool      `json:"partial_fetch"`
	FirstPageSeconds *float64  `json:"first_page_seconds"`
	FullLoadSeconds  *float64  `json:"full_load_seconds"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
