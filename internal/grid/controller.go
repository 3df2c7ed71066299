package grid

import (
	"context"
	"fmt"
	"sync"

	"revgrid/internal/core"
	rlog "revgrid/internal/log"
)

// Fetcher is the part of the API client the grid drives. *client.Client
// implements it.
type Fetcher interface {
	GetData(ctx context.Context, view core.RecordType, location string) ([]core.Record, error)
	DeleteRow(ctx context.Context, id string) error
}

// Controller applies user actions to a Model and keeps it in sync with the
// API. Only the response to the most recent fetch is applied.
type Controller struct {
	mu     sync.Mutex
	model  *Model
	api    Fetcher
	seq    uint64
	logger *rlog.Logger
}

// NewController returns a controller over a fresh Model.
func NewController(api Fetcher, logger *rlog.Logger) *Controller {
	if logger == nil {
		logger = rlog.New(rlog.DefaultConfig())
	}
	return &Controller{
		model:  NewModel(),
		api:    api,
		logger: logger.WithComponent(rlog.ComponentGrid),
	}
}

// Read calls fn with the model under the controller's lock.
func (c *Controller) Read(fn func(*Model)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.model)
}

// Refresh fetches the records for the current view and filter. On failure
// the error is logged and the grid keeps its previous records.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := c.model.Query()
	c.mu.Unlock()

	recs, err := c.api.GetData(ctx, q.View, q.ParentLocation)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("Dropping stale fetch", "seq", seq, "latest", c.seq)
		return nil
	}
	if err != nil {
		c.logger.Error("Error fetching data",
			rlog.FieldView, q.View,
			rlog.FieldLocation, q.ParentLocation,
			rlog.FieldError, err)
		return err
	}
	c.model.SetRecords(recs)
	return nil
}

// SetView switches between the location and branch views.
func (c *Controller) SetView(ctx context.Context, v core.RecordType) error {
	c.mu.Lock()
	changed := c.model.SetView(v)
	c.mu.Unlock()
	if !changed {
		return nil
	}
	return c.Refresh(ctx)
}

// Open drills down into the branches of a location.
func (c *Controller) Open(ctx context.Context, location string) error {
	c.mu.Lock()
	err := c.model.SelectLocation(location)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// ClearFilter leaves a drill-down.
func (c *Controller) ClearFilter(ctx context.Context) error {
	c.mu.Lock()
	changed := c.model.ClearFilter()
	c.mu.Unlock()
	if !changed {
		return nil
	}
	return c.Refresh(ctx)
}

// Delete removes a record then refetches. A failed delete is logged and
// nothing is refetched.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteRow(ctx, id); err != nil {
		c.logger.Error("Error deleting row", rlog.FieldRecordID, id, rlog.FieldError, err)
		return err
	}
	return c.Refresh(ctx)
}

// Sort sorts the grid by key without refetching.
func (c *Controller) Sort(key SortKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.RequestSort(key)
}

// Page moves to page n.
func (c *Controller) Page(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model.GoToPage(n)
}

// Next moves one page forward.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.model.NextPage() {
		return fmt.Errorf("already on the last page")
	}
	return nil
}

// Prev moves one page back.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.model.PrevPage() {
		return fmt.Errorf("already on the first page")
	}
	return nil
}
