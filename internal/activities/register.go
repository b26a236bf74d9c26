package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.InspectPDFActivity)
	w.RegisterActivity(a.LinearizePDFActivity)
	w.RegisterActivity(a.RecordFilesActivity)
}
