package http

import (
	"errors"
	"net/http"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpList, err)
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBudgetRequest(w, r)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid budget payload")
		return
	}

	budget, err := s.budgets.UpsertBudget(r.Context(), req.Category,
		float64(req.MonthlyLimit), float64(req.Spent), float64(req.PriorBalance))
	if err != nil {
		s.writeError(w, r, applog.OpUpsert, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (s *Server) handleImportBudgets(w http.ResponseWriter, r *http.Request) {
	up, err := readUpload(w, r, "file", s.maxUploadBytes)
	switch {
	case errors.Is(err, errUploadTooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, "File too large")
		return
	case errors.Is(err, errNoFile):
		writeDetail(w, http.StatusBadRequest, "Upload a CSV or Excel file")
		return
	case err != nil:
		writeDetail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	result, err := s.budgets.ImportBudgets(r.Context(), up.Filename, up.Data)
	if err != nil {
		s.writeError(w, r, applog.OpImport, err)
		return
	}

	s.events.LogBudgetsImported(r.Context(), up.Filename, result.Imported)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportBudgetSheet(w http.ResponseWriter, r *http.Request) {
	result, err := s.budgets.ImportBudgetsFromSheet(r.Context())
	if err != nil {
		s.writeError(w, r, applog.OpImport, err)
		return
	}

	s.events.LogBudgetsImported(r.Context(), "sheet", result.Imported)
	writeJSON(w, http.StatusOK, result)
}
