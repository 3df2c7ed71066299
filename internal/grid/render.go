package grid

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Render writes the grid as an aligned text table: header, totals row,
// the current page, caption and pager.
func Render(w io.Writer, m *Model) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	viewLine := "View: " + m.View().String()
	if loc := m.SelectedLocation(); loc != "" {
		viewLine += "  Filter: " + loc + "  (clear to remove)"
	}
	fmt.Fprintln(tw, viewLine)

	sortCfg, sorted := m.Sort()
	header := []string{"#"}
	for _, c := range Columns {
		title := c.Title
		if sorted && sortCfg.Key == c.Key {
			if sortCfg.Direction == Ascending {
				title += " ↑"
			} else {
				title += " ↓"
			}
		}
		header = append(header, title)
	}
	header = append(header, "ID")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	fmt.Fprintln(tw, "\t"+strings.Join(m.TotalCells(), "\t")+"\t")

	first, _ := m.bounds()
	for i, r := range m.Rows() {
		cells := []string{strconv.Itoa(first + i + 1)}
		for _, c := range Columns {
			cells = append(cells, c.Cell(r))
		}
		cells = append(cells, r.ID)
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s\n%s\n", m.Caption(), pager(m))
	return err
}

// pager renders "< Previous  1 [2]  Next >", with disabled ends shown as "-".
func pager(m *Model) string {
	var b strings.Builder
	if m.HasPrev() {
		b.WriteString("< Previous")
	} else {
		b.WriteString("- Previous")
	}
	for p := 1; p <= m.TotalPages(); p++ {
		if p == m.CurrentPage() {
			fmt.Fprintf(&b, " [%d]", p)
		} else {
			fmt.Fprintf(&b, " %d", p)
		}
	}
	if m.HasNext() {
		b.WriteString(" Next >")
	} else {
		b.WriteString(" Next -")
	}
	return b.String()
}
