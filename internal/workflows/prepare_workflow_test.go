package workflows

import (
	"context"
	"testing"

	"linview/internal/activities"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName(env *testsuite.TestWorkflowEnvironment, name string, fn any) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newPrepareEnv() *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(PrepareVariantsWorkflow)
	registerActivityName(env, "InspectPDFActivity", func(context.Context, activities.InspectPDFInput) (activities.InspectPDFOutput, error) {
		return activities.InspectPDFOutput{}, nil
	})
	registerActivityName(env, "LinearizePDFActivity", func(context.Context, activities.LinearizePDFInput) (activities.LinearizePDFOutput, error) {
		return activities.LinearizePDFOutput{}, nil
	})
	registerActivityName(env, "RecordFilesActivity", func(context.Context, activities.RecordFilesInput) error { return nil })
	return env
}

var prepareInput = PrepareVariantsInput{
	Dir:          "/data/pdf",
	BaseName:     "report.pdf",
	OriginalName: "original_report.pdf",
	LinearName:   "linear_report.pdf",
}

func TestPrepareVariantsWorkflowSuccess(t *testing.T) {
	env := newPrepareEnv()
	env.OnActivity("InspectPDFActivity", mock.Anything, activities.InspectPDFInput{Path: "/data/pdf/original_report.pdf"}).
		Return(activities.InspectPDFOutput{SizeBytes: 1000, PageCount: 10, SHA256: "o"}, nil)
	env.OnActivity("LinearizePDFActivity", mock.Anything, activities.LinearizePDFInput{SourcePath: "/data/pdf/original_report.pdf", TargetPath: "/data/pdf/linear_report.pdf"}).
		Return(activities.LinearizePDFOutput{SizeBytes: 1100, PageCount: 10, SHA256: "l"}, nil)

	var recorded activities.RecordFilesInput
	env.OnActivity("RecordFilesActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.RecordFilesInput) error {
			recorded = in
			return nil
		})

	env.ExecuteWorkflow(PrepareVariantsWorkflow, prepareInput)
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out PrepareVariantsResult
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, PrepareVariantsResult{OriginalName: "original_report.pdf", LinearName: "linear_report.pdf", PageCount: 10}, out)

	require.Len(t, recorded.Files, 2)
	require.Equal(t, "original", recorded.Files[0].Variant)
	require.False(t, recorded.Files[0].Linearized)
	require.Equal(t, "linearized", recorded.Files[1].Variant)
	require.True(t, recorded.Files[1].Linearized)
	require.Equal(t, "report.pdf", recorded.Files[1].BaseName)
}

func TestPrepareVariantsWorkflowLinearizationFails(t *testing.T) {
	env := newPrepareEnv()
	env.OnActivity("InspectPDFActivity", mock.Anything, mock.Anything).
		Return(activities.InspectPDFOutput{PageCount: 2}, nil)
	env.OnActivity("LinearizePDFActivity", mock.Anything, mock.Anything).
		Return(activities.LinearizePDFOutput{}, temporal.NewNonRetryableApplicationError("PDF linearization failed", activities.ErrTypeNotLinearized, nil)).
		Once()

	env.ExecuteWorkflow(PrepareVariantsWorkflow, prepareInput)
	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	require.Contains(t, err.Error(), "PDF linearization failed")
	env.AssertNotCalled(t, "RecordFilesActivity", mock.Anything, mock.Anything)
}
