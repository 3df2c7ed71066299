package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"revgrid/internal/core"
	rlog "revgrid/internal/log"
)

const (
	msgDeleted     = "Deleted successfully"
	msgSeeded      = "Data seeded successfully"
	msgServerError = "Server error"
	msgSeedError   = "Error seeding data"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Ping(r.Context()); err != nil {
		rlog.LogError(r.Context(), "Store not ready", err, "ready", nil)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleListData serves GET /data?view=&location=. Any view other than
// "branch" lists locations; an empty location means no parent filter.
func (s *Server) handleListData(w http.ResponseWriter, r *http.Request) {
	view := r.URL.Query().Get("view")
	location := r.URL.Query().Get("location")

	records, err := s.backend.ListRecords(r.Context(), core.NewQuery(view, location))
	if err != nil {
		rlog.LogError(r.Context(), "Failed to list records", err, rlog.OpList,
			rlog.NewFields().WithQuery(view, location))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}
	if records == nil {
		records = []core.Record{}
	}

	writeJSON(w, http.StatusOK, records)
}

// handleDeleteData serves DELETE /data/{id}. Unknown ids still succeed.
func (s *Server) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.backend.DeleteRecord(r.Context(), id); err != nil {
		rlog.LogError(r.Context(), "Failed to delete record", err, rlog.OpDelete,
			rlog.NewFields().WithComponent(rlog.ComponentRecords))
		writeError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	rlog.FromContext(r.Context()).Info("Record deleted", rlog.FieldRecordID, id)
	writeMessage(w, msgDeleted)
}

// handleSeed serves POST /seed, replacing every record with the
// demonstration dataset.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	n, err := s.backend.Reseed(r.Context())
	if err != nil {
		rlog.LogError(r.Context(), "Failed to seed records", err, rlog.OpSeed, nil)
		writeError(w, http.StatusInternalServerError, msgSeedError)
		return
	}

	rlog.FromContext(r.Context()).Info("Dataset reseeded", rlog.FieldCount, n)
	writeMessage(w, msgSeeded)
}
