package compare

import (
	"linview/internal/models"
	"linview/internal/naming"
	"linview/internal/viewer"
)

// Report turns a settled display state into the record posted to /reports.
func Report(st viewer.DisplayState, tags naming.Tags) models.LoadReport {
	base, _ := tags.BaseName(st.DocumentRef)
	rep := models.LoadReport{
		Document:         st.DocumentRef,
		BaseName:         base,
		Variant:          st.Variant,
		Attempt:          st.Attempt,
		PartialFetch:     st.PartialFetch,
		FirstPageSeconds: st.FirstPageSeconds,
		FullLoadSeconds:  st.FullLoadSeconds,
	}
	if st.Error != nil {
		rep.Error = *st.Error
	}
	return rep
}
