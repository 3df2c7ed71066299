package grid

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"revgrid/internal/core"
)

// PageSize is the number of rows on one page.
const PageSize = 5

// Direction is a sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortConfig is the active sort.
type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// Model is the grid state. Records keep their fetched order; sorting,
// paging and totals are derived on demand.
type Model struct {
	records          []core.Record
	view             core.RecordType
	selectedLocation string
	sort             *SortConfig
	currentPage      int
}

// NewModel returns an empty grid on the location view, page 1.
func NewModel() *Model {
	return &Model{
		view:        core.TypeLocation,
		currentPage: 1,
	}
}

func (m *Model) View() core.RecordType { return m.view }
func (m *Model) SelectedLocation() string { return m.selectedLocation }
func (m *Model) CurrentPage() int { return m.currentPage }
func (m *Model) Len() int { return len(m.records) }

// Sort returns the active sort, if any.
func (m *Model) Sort() (SortConfig, bool) {
	if m.sort == nil {
		return SortConfig{}, false
	}
	return *m.sort, true
}

// Query returns what must be fetched for the current state. A drill-down
// from a location lists the branches under it.
func (m *Model) Query() core.Query {
	if m.selectedLocation != "" {
		return core.Query{View: core.TypeBranch, ParentLocation: m.selectedLocation}
	}
	return core.Query{View: m.view}
}

// SetRecords replaces the fetched records and keeps the current page in
// range.
func (m *Model) SetRecords(recs []core.Record) {
	m.records = slices.Clone(recs)
	m.clampPage()
}

// SetView switches views, clears the drill-down and returns to page 1.
// The sort is kept. It reports whether a refetch is needed.
func (m *Model) SetView(v core.RecordType) bool {
	if !v.IsValid() {
		v = core.TypeLocation
	}
	changed := v != m.view || m.selectedLocation != ""
	m.view = v
	m.selectedLocation = ""
	m.currentPage = 1
	return changed
}

// CanDrillDown reports whether rows are locations that can be opened.
func (m *Model) CanDrillDown() bool {
	return m.view == core.TypeLocation && m.selectedLocation == ""
}

// SelectLocation drills down into the branches of location.
func (m *Model) SelectLocation(location string) error {
	if !m.CanDrillDown() {
		return fmt.Errorf("drill-down is only available on the location view")
	}
	if location == "" {
		return core.ErrEmptyLocation
	}
	m.selectedLocation = location
	m.currentPage = 1
	return nil
}

// ClearFilter leaves the drill-down. It reports whether a refetch is needed.
func (m *Model) ClearFilter() bool {
	if m.selectedLocation == "" {
		return false
	}
	m.selectedLocation = ""
	m.currentPage = 1
	return true
}

// RequestSort sorts by key, toggling to descending when key is already
// sorted ascending.
func (m *Model) RequestSort(key SortKey) error {
	if _, ok := lookupColumn(key); !ok {
		return fmt.Errorf("unknown column %q", key)
	}
	dir := Ascending
	if m.sort != nil && m.sort.Key == key && m.sort.Direction == Ascending {
		dir = Descending
	}
	m.sort = &SortConfig{Key: key, Direction: dir}
	return nil
}

// TotalPages is ceil(len/PageSize).
func (m *Model) TotalPages() int {
	return (len(m.records) + PageSize - 1) / PageSize
}

func (m *Model) HasPrev() bool { return m.currentPage > 1 }
func (m *Model) HasNext() bool { return m.currentPage < m.TotalPages() }

// GoToPage moves to page n, 1-indexed.
func (m *Model) GoToPage(n int) error {
	if n < 1 || (n > m.TotalPages() && n != 1) {
		return fmt.Errorf("page %d out of range 1..%d", n, max(m.TotalPages(), 1))
	}
	m.currentPage = n
	return nil
}

func (m *Model) NextPage() bool {
	if !m.HasNext() {
		return false
	}
	m.currentPage++
	return true
}

func (m *Model) PrevPage() bool {
	if !m.HasPrev() {
		return false
	}
	m.currentPage--
	return true
}

func (m *Model) clampPage() {
	if last := m.TotalPages(); m.currentPage > last {
		m.currentPage = max(last, 1)
	}
	if m.currentPage < 1 {
		m.currentPage = 1
	}
}

// Sorted returns the records in display order. The fetched slice is
// never reordered.
func (m *Model) Sorted() []core.Record {
	out := slices.Clone(m.records)
	if m.sort == nil {
		return out
	}
	key, dir := m.sort.Key, m.sort.Direction
	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		c := compareValues(col, valueOf(a, key), valueOf(b, key))
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

func compareValues(col *collate.Collator, a, b cellValue) int {
	if a.numeric && b.numeric {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return col.CompareString(strings.ToLower(a.display()), strings.ToLower(b.display()))
}

func (v cellValue) display() string {
	if v.numeric {
		return fmt.Sprint(v.num)
	}
	return v.str
}

// Rows returns the records on the current page, in display order.
func (m *Model) Rows() []core.Record {
	sorted := m.Sorted()
	first, last := m.bounds()
	return sorted[first:last]
}

func (m *Model) bounds() (first, last int) {
	first = (m.currentPage - 1) * PageSize
	last = min(first+PageSize, len(m.records))
	if first > last {
		first = last
	}
	return first, last
}

// Caption reads "Showing 1 to 5 of 7 entries".
func (m *Model) Caption() string {
	first, last := m.bounds()
	if len(m.records) == 0 {
		return "Showing 0 to 0 of 0 entries"
	}
	return fmt.Sprintf("Showing %d to %d of %d entries", first+1, last, len(m.records))
}

// Totals sums every numeric column over all records of the current
// fetch, ignoring pagination.
func (m *Model) Totals() map[SortKey]float64 {
	totals := make(map[SortKey]float64, len(Columns))
	for _, c := range Columns {
		for _, r := range m.records {
			if v := valueOf(r, c.Key); v.numeric {
				totals[c.Key] += v.num
			}
		}
	}
	return totals
}

// TotalCells renders the totals row cell for each column, in column order.
func (m *Model) TotalCells() []string {
	totals := m.Totals()
	cells := make([]string, len(Columns))
	for i, c := range Columns {
		if c.kind == kindText {
			cells[i] = "Total"
			continue
		}
		cells[i] = c.formatNumber(totals[c.Key])
	}
	return cells
}

// Find returns the record with id among the fetched records.
func (m *Model) Find(id string) (core.Record, bool) {
	for _, r := range m.records {
		if r.ID == id {
			return r, true
		}
	}
	return core.Record{}, false
}
