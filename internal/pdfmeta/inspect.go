package pdfmeta

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"linview/internal/util"
)

func init() {
	api.DisableConfigDir()
}

// Info describes a stored PDF file.
type Info struct {
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
	SHA256     string `json:"sha256"`
	PageCount  int    `json:"page_count"`
	Linearized bool   `json:"linearized"`
}

// InspectFile validates path in relaxed mode and reports its page count and
// whether it carries a linearization dictionary.
func InspectFile(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return Info{}, fmt.Errorf("%w: %v", util.ErrInvalidPDF, err)
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: page count: %v", util.ErrInvalidPDF, err)
	}
	linear, err := IsLinearized(path)
	if err != nil {
		return Info{}, err
	}
	sum, err := util.SHA256File(path)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Path:       path,
		SizeBytes:  st.Size(),
		SHA256:     sum,
		PageCount:  pages,
		Linearized: linear,
	}, nil
}

// IsLinearized reports whether path is a linearized ("fast web view") PDF.
func IsLinearized(path string) (bool, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return false, fmt.Errorf("%w: %v", util.ErrInvalidPDF, err)
	}
	return ctx.Read.Linearized, nil
}
