package compare

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteTable prints one row per measured document.
func WriteTable(w io.Writer, results []Result) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("document", "variant", "status", "attempt", "first page (s)", "full load (s)", "pages").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, res := range results {
		st := res.State
		status := st.Status
		if res.TimedOut {
			status += " (timeout)"
		}
		pages := "-"
		if st.PageCount != nil {
			pages = fmt.Sprint(*st.PageCount)
		}
		t.Row(res.Document, st.Variant, status, fmt.Sprint(st.Attempt), seconds(st.FirstPageSeconds), seconds(st.FullLoadSeconds), pages)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func seconds(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
