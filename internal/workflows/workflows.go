package workflows

import (
	"path/filepath"
	"time"

	"linview/internal/activities"
	"linview/internal/models"
	"linview/internal/naming"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetPrepareStatus = "GetPrepareStatus"

// PrepareVariantsWorkflow turns an uploaded original into the
// original/linearized pair the viewer compares.
func PrepareVariantsWorkflow(ctx workflow.Context, input PrepareVariantsInput) (PrepareVariantsResult, error) {
	status := PrepareStatus{
		BaseName:    input.BaseName,
		CurrentStep: "init",
		Status:      "processing",
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetPrepareStatus, func() (PrepareStatus, error) {
		return status, nil
	}); err != nil {
		return PrepareVariantsResult{}, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	originalPath := filepath.Join(input.Dir, input.OriginalName)
	linearPath := filepath.Join(input.Dir, input.LinearName)

	fail := func(err error) (PrepareVariantsResult, error) {
		status.Status = "failed"
		status.FailReason = err.Error()
		status.Steps[status.CurrentStep] = "failed"
		return PrepareVariantsResult{}, err
	}

	status.CurrentStep = "inspect_original"
	status.Steps[status.CurrentStep] = "processing"
	var orig activities.InspectPDFOutput
	if err := workflow.ExecuteActivity(ctx, "InspectPDFActivity", activities.InspectPDFInput{Path: originalPath}).Get(ctx, &orig); err != nil {
		return fail(err)
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "linearize"
	status.Steps[status.CurrentStep] = "processing"
	var lin activities.LinearizePDFOutput
	if err := workflow.ExecuteActivity(ctx, "LinearizePDFActivity", activities.LinearizePDFInput{SourcePath: originalPath, TargetPath: linearPath}).Get(ctx, &lin); err != nil {
		return fail(err)
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "record_files"
	status.Steps[status.CurrentStep] = "processing"
	files := []models.FileRecord{
		{Name: input.OriginalName, BaseName: input.BaseName, Variant: naming.VariantOriginal.String(), SizeBytes: orig.SizeBytes, PageCount: orig.PageCount, Linearized: orig.Linearized, SHA256: orig.SHA256},
		{Name: input.LinearName, BaseName: input.BaseName, Variant: naming.VariantLinearized.String(), SizeBytes: lin.SizeBytes, PageCount: lin.PageCount, Linearized: true, SHA256: lin.SHA256},
	}
	if err := workflow.ExecuteActivity(ctx, "RecordFilesActivity", activities.RecordFilesInput{Files: files}).Get(ctx, nil); err != nil {
		return fail(err)
	}
	status.Steps[status.CurrentStep] = "done"
	status.CurrentStep = "done"
	status.Status = "prepared"

	return PrepareVariantsResult{
		OriginalName: input.OriginalName,
		LinearName:   input.LinearName,
		PageCount:    lin.PageCount,
	}, nil
}
