package services

import (
	"context"
	"errors"
	"testing"

	"revgrid/internal/core"
	"revgrid/internal/store/memory"
)

type recordingPublisher struct {
	events []core.RecordEvent
	err    error
}

func (p *recordingPublisher) PublishRecordEvent(_ context.Context, ev core.RecordEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type brokenStore struct {
	*memory.Store
	err error
}

func (b brokenStore) ListRecords(context.Context, core.Query) ([]core.Record, error) {
	return nil, core.NewStoreError("list", b.err)
}

func (b brokenStore) DeleteRecord(context.Context, string) error {
	return core.NewStoreError("delete", b.err)
}

func (b brokenStore) ReplaceAll(context.Context, []core.Record) ([]core.Record, error) {
	return nil, core.NewStoreError("reseed", b.err)
}

func TestRecordServiceListRecords(t *testing.T) {
	svc := NewRecordService(memory.NewSeeded(), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		query core.Query
		want  int
		check func(core.Record) bool
	}{
		{"default view lists locations", core.NewQuery("", ""), 3, func(r core.Record) bool { return r.Type == core.TypeLocation }},
		{"unknown view lists locations", core.NewQuery("regions", ""), 3, func(r core.Record) bool { return r.Type == core.TypeLocation }},
		{"branch view", core.NewQuery("branch", ""), 3, func(r core.Record) bool { return r.Type == core.TypeBranch }},
		{"branch view filtered", core.NewQuery("branch", "Mississippi"), 1, func(r core.Record) bool { return r.ParentLocation == "Mississippi" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := svc.ListRecords(ctx, tc.query)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(recs) != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, len(recs))
			}
			for _, r := range recs {
				if !tc.check(r) {
					t.Fatalf("unexpected record %+v", r)
				}
			}
		})
	}

	if _, err := svc.ListRecords(ctx, core.Query{View: "region"}); !errors.Is(err, core.ErrInvalidRecordType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestRecordServiceDeletePublishes(t *testing.T) {
	st := memory.NewSeeded()
	pub := &recordingPublisher{}
	svc := NewRecordService(st, pub)
	ctx := context.Background()

	recs, _ := svc.ListRecords(ctx, core.NewQuery("location", ""))
	if err := svc.DeleteRecord(ctx, recs[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteRecord(ctx, "missing"); err != nil {
		t.Fatalf("delete of unknown id should succeed: %v", err)
	}
	if st.Len() != 5 {
		t.Fatalf("expected 5 records left, got %d", st.Len())
	}
	if len(pub.events) != 2 || pub.events[0].Kind != core.EventRecordDeleted || pub.events[0].RecordID != recs[0].ID {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestRecordServicePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker gone")}
	svc := NewRecordService(memory.New(), pub)

	n, err := svc.Reseed(context.Background())
	if err != nil || n != 6 {
		t.Fatalf("reseed should succeed despite publish failure: n=%d err=%v", n, err)
	}
	if len(pub.events) != 1 || pub.events[0].Count != 6 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestRecordServiceReseedIsRepeatable(t *testing.T) {
	svc := NewRecordService(memory.New(), nil)
	ctx := context.Background()

	var snapshots [][]core.Record
	for i := 0; i < 2; i++ {
		if _, err := svc.Reseed(ctx); err != nil {
			t.Fatalf("reseed: %v", err)
		}
		locs, _ := svc.ListRecords(ctx, core.NewQuery("location", ""))
		branches, _ := svc.ListRecords(ctx, core.NewQuery("branch", ""))
		snapshots = append(snapshots, append(locs, branches...))
	}
	if len(snapshots[0]) != 6 || len(snapshots[1]) != 6 {
		t.Fatalf("expected 6 records per reseed")
	}
	for i := range snapshots[0] {
		a, b := snapshots[0][i], snapshots[1][i]
		a.ID, b.ID = "", ""
		if a != b {
			t.Fatalf("reseed %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRecordServiceStoreErrors(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewRecordService(brokenStore{Store: memory.New(), err: errors.New("unreachable")}, pub)
	ctx := context.Background()

	if _, err := svc.ListRecords(ctx, core.NewQuery("", "")); !core.IsStoreError(err) {
		t.Fatalf("expected store error from list, got %v", err)
	}
	if err := svc.DeleteRecord(ctx, "x"); !core.IsStoreError(err) {
		t.Fatalf("expected store error from delete, got %v", err)
	}
	if _, err := svc.Reseed(ctx); !core.IsStoreError(err) {
		t.Fatalf("expected store error from reseed, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failed operations must not publish, got %+v", pub.events)
	}
}

func TestRecordServiceClose(t *testing.T) {
	closed := 0
	svc := NewRecordService(memory.New(), nil)
	svc.AddCloser(func() error { closed++; return nil })
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected registered closer to run once, ran %d", closed)
	}

	svc = NewRecordService(memory.New(), nil)
	svc.AddCloser(func() error { return errors.New("amqp: already closed") })
	if err := svc.Close(); err == nil {
		t.Fatalf("expected closer error to surface")
	}
}
