package activities

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"linview/internal/config"
	"linview/internal/linearize"
	"linview/internal/models"
	"linview/internal/pdfmeta"
	"linview/internal/storage"
	"linview/internal/util"

	"go.temporal.io/sdk/temporal"
)

const (
	ErrTypeInvalidPDF    = "InvalidPDF"
	ErrTypeNotLinearized = "NotLinearized"
)

type Linearizer interface {
	Linearize(ctx context.Context, in, out string) error
}

type FileStore interface {
	UpsertFile(ctx context.Context, f models.FileRecord) error
}

type Inspector func(path string) (pdfmeta.Info, error)

type Activities struct {
	cfg        config.Config
	files      FileStore
	linearizer Linearizer
	inspect    Inspector
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	if err := util.EnsureDir(cfg.PDFDir); err != nil {
		return nil, err
	}
	return NewWithDeps(cfg, storage.NewFileRepo(db), linearize.NewQPDF(cfg.QPDFPath), nil), nil
}

func NewWithDeps(cfg config.Config, files FileStore, lin Linearizer, inspect Inspector) *Activities {
	if inspect == nil {
		inspect = pdfmeta.InspectFile
	}
	return &Activities{cfg: cfg, files: files, linearizer: lin, inspect: inspect}
}

func (a *Activities) InspectPDFActivity(ctx context.Context, in InspectPDFInput) (InspectPDFOutput, error) {
	_ = ctx
	info, err := a.inspect(in.Path)
	if err != nil {
		if errors.Is(err, util.ErrInvalidPDF) {
			return InspectPDFOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidPDF, err)
		}
		return InspectPDFOutput{}, fmt.Errorf("inspect pdf: %w", err)
	}
	return InspectPDFOutput{
		SizeBytes:  info.SizeBytes,
		PageCount:  info.PageCount,
		Linearized: info.Linearized,
		SHA256:     info.SHA256,
	}, nil
}

// LinearizePDFActivity writes the linearized variant and refuses to keep it
// unless the result really is linearized.
func (a *Activities) LinearizePDFActivity(ctx context.Context, in LinearizePDFInput) (LinearizePDFOutput, error) {
	if err := a.linearizer.Linearize(ctx, in.SourcePath, in.TargetPath); err != nil {
		return LinearizePDFOutput{}, fmt.Errorf("linearize: %w", err)
	}
	info, err := a.inspect(in.TargetPath)
	if err == nil && !info.Linearized {
		err = util.ErrNotLinearized
	}
	if err != nil {
		_ = os.Remove(in.TargetPath)
		log.Printf("linearize rejected source=%s target=%s err=%v", filepath.Base(in.SourcePath), filepath.Base(in.TargetPath), err)
		return LinearizePDFOutput{}, temporal.NewNonRetryableApplicationError(util.ErrNotLinearized.Error(), ErrTypeNotLinearized, err)
	}
	return LinearizePDFOutput{SizeBytes: info.SizeBytes, PageCount: info.PageCount, SHA256: info.SHA256}, nil
}

func (a *Activities) RecordFilesActivity(ctx context.Context, in RecordFilesInput) error {
	for _, f := range in.Files {
		if err := a.files.UpsertFile(ctx, f); err != nil {
			return err
		}
	}
	return nil
}
