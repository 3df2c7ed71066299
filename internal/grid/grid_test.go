package grid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"revgrid/internal/core"
	rlog "revgrid/internal/log"
)

// fakeAPI serves records from memory and counts calls.
type fakeAPI struct {
	mu        sync.Mutex
	records   []core.Record
	gets      []core.Query
	deletes   []string
	getErr    error
	deleteErr error
	// beforeReturn runs inside GetData after the result is computed.
	beforeReturn func(call int)
}

func (f *fakeAPI) GetData(_ context.Context, view core.RecordType, location string) ([]core.Record, error) {
	f.mu.Lock()
	q := core.Query{View: view, ParentLocation: location}
	f.gets = append(f.gets, q)
	call := len(f.gets)
	var out []core.Record
	for _, r := range f.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	err := f.getErr
	hook := f.beforeReturn
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeAPI) DeleteRow(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.records[:0]
	for _, r := range f.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	f.records = kept
	return nil
}

func (f *fakeAPI) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.gets)
}

func quietLogger() *rlog.Logger {
	return rlog.New(rlog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func locations(n int) []core.Record {
	recs := make([]core.Record, n)
	for i := range recs {
		recs[i] = core.Record{
			ID:                         fmt.Sprintf("id-%d", i+1),
			Location:                   fmt.Sprintf("Loc %d", i+1),
			PotentialRevenue:           core.Metric{Value: float64(1000 * (i + 1)), Percentage: 10},
			CompetitorProcessingVolume: core.Metric{Value: float64(n - i), Percentage: 5},
			CompetitorMerchant:         float64(i + 1),
			RevenuePerAccount:          100,
			MarketShareByRevenue:       1.5,
			CommercialDDAs:             2,
			Type:                       core.TypeLocation,
		}
	}
	return recs
}

func ids(recs []core.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestPaginationOfSevenRecords(t *testing.T) {
	m := NewModel()
	m.SetRecords(locations(7))

	if got := m.Caption(); got != "Showing 1 to 5 of 7 entries" {
		t.Fatalf("caption = %q", got)
	}
	if got := ids(m.Rows()); strings.Join(got, ",") != "id-1,id-2,id-3,id-4,id-5" {
		t.Fatalf("page 1 rows = %v", got)
	}
	if m.HasPrev() || !m.HasNext() || m.TotalPages() != 2 {
		t.Fatalf("unexpected pager state prev=%v next=%v pages=%d", m.HasPrev(), m.HasNext(), m.TotalPages())
	}

	if !m.NextPage() {
		t.Fatal("expected to advance to page 2")
	}
	if got := ids(m.Rows()); strings.Join(got, ",") != "id-6,id-7" {
		t.Fatalf("page 2 rows = %v", got)
	}
	if got := m.Caption(); got != "Showing 6 to 7 of 7 entries" {
		t.Fatalf("caption = %q", got)
	}
	if m.HasNext() || m.NextPage() {
		t.Fatal("Next must be disabled on the last page")
	}
	if err := m.GoToPage(3); err == nil {
		t.Fatal("expected out of range page error")
	}
}

func TestEmptyGrid(t *testing.T) {
	m := NewModel()
	m.SetRecords(nil)

	if got := m.Caption(); got != "Showing 0 to 0 of 0 entries" {
		t.Errorf("caption = %q", got)
	}
	if m.HasNext() || m.HasPrev() || len(m.Rows()) != 0 {
		t.Errorf("empty grid should have no rows and no navigation")
	}
	if err := m.GoToPage(1); err != nil {
		t.Errorf("page 1 of an empty grid: %v", err)
	}
}

func TestSortToggleEveryColumn(t *testing.T) {
	for _, col := range Columns {
		t.Run(string(col.Key), func(t *testing.T) {
			m := NewModel()
			m.SetRecords(locations(3))

			if err := m.RequestSort(col.Key); err != nil {
				t.Fatalf("RequestSort: %v", err)
			}
			if cfg, _ := m.Sort(); cfg.Direction != Ascending {
				t.Fatalf("first request should sort ascending, got %v", cfg.Direction)
			}
			asc := ids(m.Sorted())

			if err := m.RequestSort(col.Key); err != nil {
				t.Fatalf("RequestSort: %v", err)
			}
			if cfg, _ := m.Sort(); cfg.Direction != Descending {
				t.Fatalf("second request should sort descending, got %v", cfg.Direction)
			}
			desc := ids(m.Sorted())

			// Columns with distinct values must come back reversed.
			if col.Key == KeyLocation || col.Key == KeyPotentialRevenue || col.Key == KeyCompetitorMerchant || col.Key == KeyCompetitorProcessingVolume {
				for i := range asc {
					if asc[i] != desc[len(desc)-1-i] {
						t.Fatalf("descending %v is not the reverse of ascending %v", desc, asc)
					}
				}
			}

			m.RequestSort(col.Key)
			if cfg, _ := m.Sort(); cfg.Direction != Ascending {
				t.Fatalf("third request should sort ascending again")
			}
		})
	}
}

func TestSortComparison(t *testing.T) {
	m := NewModel()
	m.SetRecords([]core.Record{
		{ID: "a", Location: "charlie", PotentialRevenue: core.Metric{Value: 20}},
		{ID: "b", Location: "Alpha", PotentialRevenue: core.Metric{Value: 300}},
		{ID: "c", Location: "bravo", PotentialRevenue: core.Metric{Value: 100}},
	})

	m.RequestSort(KeyLocation)
	if got := strings.Join(ids(m.Sorted()), ""); got != "bca" {
		t.Errorf("case-insensitive location sort = %s, want bca", got)
	}

	m.RequestSort(KeyPotentialRevenue)
	if got := strings.Join(ids(m.Sorted()), ""); got != "acb" {
		t.Errorf("composite sort by value = %s, want acb", got)
	}

	m.RequestSort(KeyPotentialRevenue)
	if got := strings.Join(ids(m.Sorted()), ""); got != "bca" {
		t.Errorf("composite descending = %s, want bca", got)
	}

	if got := strings.Join(ids(m.records), ""); got != "abc" {
		t.Errorf("fetched order must be preserved, got %s", got)
	}

	if err := m.RequestSort("type"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestTotals(t *testing.T) {
	m := NewModel()
	recs := locations(7)
	m.SetRecords(recs)

	totals := m.Totals()
	var wantRevenue, wantMerchants float64
	for _, r := range recs {
		wantRevenue += r.PotentialRevenue.Value
		wantMerchants += r.CompetitorMerchant
	}
	if totals[KeyPotentialRevenue] != wantRevenue || totals[KeyCompetitorMerchant] != wantMerchants {
		t.Fatalf("totals = %v", totals)
	}
	if _, ok := totals[KeyLocation]; ok {
		t.Error("text column must not be totalled")
	}

	cells := m.TotalCells()
	want := []string{"Total", "$28.00K", "$28.00", "28", "$700.00", "10.5%", "14"}
	if strings.Join(cells, "|") != strings.Join(want, "|") {
		t.Errorf("total cells = %v, want %v", cells, want)
	}
}

func TestDeleteRefetchesOnce(t *testing.T) {
	api := &fakeAPI{records: locations(3)}
	c := NewController(api, quietLogger())
	ctx := context.Background()

	if err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var before float64
	c.Read(func(m *Model) { before = m.Totals()[KeyPotentialRevenue] })

	if err := c.Delete(ctx, "id-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if api.getCount() != 2 {
		t.Fatalf("expected exactly 2 fetches, got %d", api.getCount())
	}
	c.Read(func(m *Model) {
		if _, ok := m.Find("id-2"); ok {
			t.Error("deleted record still listed")
		}
		if after := m.Totals()[KeyPotentialRevenue]; after != before-2000 {
			t.Errorf("total after delete = %v, want %v", after, before-2000)
		}
	})
}

func TestDeleteFailureLeavesState(t *testing.T) {
	api := &fakeAPI{records: locations(3), deleteErr: errors.New("connection refused")}
	c := NewController(api, quietLogger())
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.Delete(ctx, "id-1"); err == nil {
		t.Fatal("expected delete error")
	}
	if api.getCount() != 1 {
		t.Errorf("failed delete must not refetch, got %d fetches", api.getCount())
	}
	c.Read(func(m *Model) {
		if m.Len() != 3 {
			t.Errorf("records changed after failed delete: %d", m.Len())
		}
	})
}

func TestFetchFailureKeepsRecords(t *testing.T) {
	api := &fakeAPI{records: locations(3)}
	c := NewController(api, quietLogger())
	ctx := context.Background()
	c.Refresh(ctx)

	api.getErr = errors.New("network down")
	if err := c.SetView(ctx, core.TypeBranch); err == nil {
		t.Fatal("expected fetch error")
	}
	c.Read(func(m *Model) {
		if m.Len() != 3 {
			t.Errorf("records replaced after failed fetch: %d", m.Len())
		}
		if m.View() != core.TypeBranch {
			t.Errorf("view = %s", m.View())
		}
	})
}

func TestViewSwitchResetsPageKeepsSort(t *testing.T) {
	api := &fakeAPI{records: locations(7)}
	c := NewController(api, quietLogger())
	ctx := context.Background()
	c.Refresh(ctx)

	c.Sort(KeyPotentialRevenue)
	c.Next()
	c.SetView(ctx, core.TypeBranch)

	c.Read(func(m *Model) {
		if m.CurrentPage() != 1 {
			t.Errorf("page = %d, want 1", m.CurrentPage())
		}
		if cfg, ok := m.Sort(); !ok || cfg.Key != KeyPotentialRevenue {
			t.Errorf("sort should be kept, got %+v %v", cfg, ok)
		}
	})
	if got := api.gets[len(api.gets)-1]; got.View != core.TypeBranch || got.ParentLocation != "" {
		t.Errorf("last fetch = %+v", got)
	}
}

func TestDrillDown(t *testing.T) {
	recs := core.SeedRecords()
	for i := range recs {
		recs[i].ID = fmt.Sprintf("id-%d", i)
	}
	api := &fakeAPI{records: recs}
	c := NewController(api, quietLogger())
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.Open(ctx, "Colorado"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	last := api.gets[len(api.gets)-1]
	if last.View != core.TypeBranch || last.ParentLocation != "Colorado" {
		t.Fatalf("drill-down fetched %+v", last)
	}
	c.Read(func(m *Model) {
		rows := m.Rows()
		if len(rows) != 1 || rows[0].Location != "Branch 1" {
			t.Errorf("rows = %+v", rows)
		}
		if m.CanDrillDown() {
			t.Error("branches cannot be opened")
		}
	})
	if err := c.Open(ctx, "Branch 1"); err == nil {
		t.Error("expected error opening a branch")
	}

	if err := c.ClearFilter(ctx); err != nil {
		t.Fatalf("ClearFilter: %v", err)
	}
	c.Read(func(m *Model) {
		if m.SelectedLocation() != "" || m.Len() != 3 {
			t.Errorf("after clear: selected=%q len=%d", m.SelectedLocation(), m.Len())
		}
	})

	before := api.getCount()
	c.ClearFilter(ctx)
	if api.getCount() != before {
		t.Error("clearing without a filter should not refetch")
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	api := &fakeAPI{records: append(locations(3), core.Record{ID: "b1", Location: "Branch", Type: core.TypeBranch, ParentLocation: "Loc 1"})}
	release := make(chan struct{})
	started := make(chan struct{})
	api.beforeReturn = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	c := NewController(api, quietLogger())
	ctx := context.Background()

	done := make(chan error)
	go func() { done <- c.Refresh(ctx) }()
	<-started

	if err := c.SetView(ctx, core.TypeBranch); err != nil {
		t.Fatalf("SetView: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stale refresh: %v", err)
	}

	c.Read(func(m *Model) {
		if m.Len() != 1 || m.Rows()[0].ID != "b1" {
			t.Errorf("stale location response overwrote branch view: %v", ids(m.Rows()))
		}
	})
}

func TestPageClampedAfterDelete(t *testing.T) {
	api := &fakeAPI{records: locations(6)}
	c := NewController(api, quietLogger())
	ctx := context.Background()
	c.Refresh(ctx)
	c.Page(2)

	if err := c.Delete(ctx, "id-6"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	c.Read(func(m *Model) {
		if m.CurrentPage() != 1 || len(m.Rows()) != 5 {
			t.Errorf("page = %d rows = %d", m.CurrentPage(), len(m.Rows()))
		}
	})
}

func TestRender(t *testing.T) {
	recs := core.SeedRecords()[:3]
	for i := range recs {
		recs[i].ID = fmt.Sprintf("id-%d", i)
	}
	m := NewModel()
	m.SetRecords(recs)
	m.RequestSort(KeyPotentialRevenue)

	var buf bytes.Buffer
	if err := Render(&buf, m); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"View: location",
		"Potential Revenue ↑",
		"$624.60K (33.48%)",
		"Total",
		"$1.87M",
		"Showing 1 to 3 of 3 entries",
		"- Previous [1] Next -",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestBrowse(t *testing.T) {
	api := &fakeAPI{records: locations(7)}
	c := NewController(api, quietLogger())

	in := strings.NewReader("sort potentialRevenue\nsort potentialRevenue\nnext\nbogus\ndelete 6\nquit\n")
	var out bytes.Buffer
	if err := Browse(context.Background(), c, in, &out); err != nil {
		t.Fatalf("Browse: %v", err)
	}

	if !strings.Contains(out.String(), `error: unknown command "bogus"`) {
		t.Errorf("unknown command not reported:\n%s", out.String())
	}
	// Descending by revenue puts id-2 sixth.
	if len(api.deletes) != 1 || api.deletes[0] != "id-2" {
		t.Errorf("deletes = %v", api.deletes)
	}
	if api.getCount() != 2 {
		t.Errorf("expected initial load plus one refetch, got %d", api.getCount())
	}
}
