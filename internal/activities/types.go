package activities

import "linview/internal/models"

type InspectPDFInput struct {
	Path string `json:"path"`
}

type InspectPDFOutput struct {
	SizeBytes  int64  `json:"size_bytes"`
	PageCount  int    `json:"page_count"`
	Linearized bool   `json:"linearized"`
	SHA256     string `json:"sha256"`
}

type LinearizePDFInput struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

type LinearizePDFOutput struct {
	SizeBytes int64  `json:"size_bytes"`
	PageCount int    `json:"page_count"`
	SHA256    string `json:"sha256"`
}

type RecordFilesInput struct {
	Files []models.FileRecord `json:"files"`
}
