package api

import (
	"context"
	"fmt"

	"linview/internal/workflows"

	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

// temporalPreparer runs PrepareVariantsWorkflow and waits for its result so
// the upload response reflects the finished pair.
type temporalPreparer struct {
	client    tclient.Client
	taskQueue string
}

func (p *temporalPreparer) Prepare(ctx context.Context, in workflows.PrepareVariantsInput) (workflows.PrepareVariantsResult, error) {
	we, err := p.client.ExecuteWorkflow(ctx, tclient.StartWorkflowOptions{
		ID:                    "prepare-" + in.BaseName,
		TaskQueue:             p.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.PrepareVariantsWorkflow, in)
	if err != nil {
		return workflows.PrepareVariantsResult{}, fmt.Errorf("start prepare workflow: %w", err)
	}
	var out workflows.PrepareVariantsResult
	if err := we.Get(ctx, &out); err != nil {
		return workflows.PrepareVariantsResult{}, fmt.Errorf("prepare workflow %s: %w", we.GetID(), err)
	}
	return out, nil
}
