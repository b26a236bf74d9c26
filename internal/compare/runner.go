package compare

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"linview/internal/fetch"
	"linview/internal/models"
	"linview/internal/naming"
	"linview/internal/viewer"

	"golang.org/x/sync/errgroup"
)

// ReportPoster stores measurements. *backend.Client satisfies it.
type ReportPoster interface {
	PostReport(ctx context.Context, rep models.LoadReport) (models.LoadReport, error)
}

type Runner struct {
	BaseURL string
	HTTP    *http.Client
	Options viewer.Options
	Timeout time.Duration
	// Reports, when set, receives one report per measured variant.
	Reports ReportPoster
	Now     viewer.Clock
}

type Result struct {
	Document string              `json:"document"`
	State    viewer.DisplayState `json:"state"`
	TimedOut bool                `json:"timed_out,omitempty"`
}

// Measure loads ref with a fresh engine and manager and waits until the
// session settles or the timeout fires.
func (r *Runner) Measure(ctx context.Context, ref string) (Result, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	events := make(chan viewer.Event, 256)
	emit := func(ev viewer.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
	engine := fetch.New(r.HTTP, r.BaseURL)
	m := viewer.NewManager(engine, emit, r.Options, r.Now)
	defer m.Close()
	m.SelectDocument(ref)

	for {
		select {
		case ev := <-events:
			m.Handle(ev)
			if st := m.DisplayState(); st.Settled() {
				return Result{Document: ref, State: st}, nil
			}
		case <-ctx.Done():
			res := Result{Document: ref, State: m.DisplayState(), TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded)}
			return res, fmt.Errorf("measure %s: %w", ref, ctx.Err())
		}
	}
}

// Compare measures both stored variants of base side by side.
func (r *Runner) Compare(ctx context.Context, base string) ([]Result, error) {
	tags := r.Options.Tags
	if tags == (naming.Tags{}) {
		tags = naming.DefaultTags()
	}
	refs := []string{
		tags.Name(naming.VariantOriginal, base),
		tags.Name(naming.VariantLinearized, base),
	}
	results := make([]Result, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			res, err := r.Measure(gctx, ref)
			results[i] = res
			if res.TimedOut {
				log.Printf("compare: %s timed out status=%s progress=%d%%", ref, res.State.Status, res.State.ProgressPercent)
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if r.Reports != nil {
		for _, res := range results {
			if !res.State.Settled() {
				continue
			}
			if _, err := r.Reports.PostReport(ctx, Report(res.State, tags)); err != nil {
				log.Printf("compare: post report for %s failed: %v", res.Document, err)
			}
		}
	}
	return results, nil
}
