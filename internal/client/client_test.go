package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"revgrid/internal/core"
)

func TestGetDataSendsQuery(t *testing.T) {
	tests := []struct {
		name     string
		view     core.RecordType
		location string
		wantRaw  string
	}{
		{"location view", core.TypeLocation, "", "view=location"},
		{"branch view", core.TypeBranch, "", "view=branch"},
		{"branch filtered", core.TypeBranch, "New Mexico", "location=New+Mexico&view=branch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotQuery string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"id":"01A","location":"Colorado","potentialRevenue":{"value":624596,"percentage":33.48},"type":"location"}]`))
			}))
			defer ts.Close()

			recs, err := New(ts.URL + "/api/").GetData(context.Background(), tt.view, tt.location)
			if err != nil {
				t.Fatalf("GetData: %v", err)
			}
			if gotPath != "/api/data" || gotQuery != tt.wantRaw {
				t.Errorf("request = %s?%s, want /api/data?%s", gotPath, gotQuery, tt.wantRaw)
			}
			if len(recs) != 1 || recs[0].PotentialRevenue.Value != 624596 {
				t.Errorf("unexpected records %+v", recs)
			}
		})
	}
}

func TestDeleteRowAndSeed(t *testing.T) {
	var calls []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.EscapedPath())
		switch r.Method {
		case http.MethodDelete:
			_, _ = w.Write([]byte(`{"message":"Deleted successfully"}`))
		case http.MethodPost:
			_, _ = w.Write([]byte(`{"message":"Data seeded successfully"}`))
		}
	}))
	defer ts.Close()

	c := New(ts.URL)
	if err := c.DeleteRow(context.Background(), "01A/B"); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	msg, err := c.Seed(context.Background())
	if err != nil || msg != "Data seeded successfully" {
		t.Fatalf("Seed = %q, %v", msg, err)
	}
	if len(calls) != 2 || calls[0] != "DELETE /data/01A%2FB" || calls[1] != "POST /seed" {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Server error"}`))
	}))
	defer ts.Close()

	_, err := New(ts.URL).GetData(context.Background(), core.TypeLocation, "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Message != "Server error" {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	err := New(url).DeleteRow(context.Background(), "x")
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected *NetworkError, got %T %v", err, err)
	}
	if ne.Op != "delete row" {
		t.Errorf("Op = %q", ne.Op)
	}
}

func TestDefaultBaseURL(t *testing.T) {
	if c := New(""); c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
