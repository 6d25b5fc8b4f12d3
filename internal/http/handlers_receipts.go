package http

import (
	"bytes"
	"errors"
	"net/http"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
)

func (s *Server) handleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, "file", s.maxUploadBytes)
	switch {
	case errors.Is(err, errUploadTooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	case errors.Is(err, errNoFile):
		writeDetail(w, http.StatusBadRequest, "Upload an image file")
		return
	case err != nil:
		writeDetail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	if !isImage(up.ContentType) {
		writeDetail(w, http.StatusBadRequest, "Upload an image file")
		return
	}

	summary, err := s.receipts.CreateReceipt(r.Context(), up.Data)
	if err != nil {
		s.writeError(w, r, applog.OpCreate, err)
		return
	}

	s.events.LogReceiptCreated(r.Context(), summary.ID, summary.Vendor, summary.Total, len(up.Data))
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.receipts.ListReceipts(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	if receipts == nil {
		receipts = []core.ReceiptSummary{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := parseReceiptID(r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Receipt id must be an integer")
		return
	}

	receipt, err := s.receipts.GetReceipt(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Receipt not found")
		return
	}
	if err != nil {
		s.writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleExport renders the CSV in memory first so a store failure can
// still produce a proper 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.receipts.ExportCSV(r.Context(), &buf); err != nil {
		s.writeError(w, r, applog.OpExport, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=receipts.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
