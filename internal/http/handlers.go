package http

import (
	"log/slog"
	"net/http"

	"kaskom/internal/core"
	"kaskom/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": s.categories.Labels()})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	label, err := s.categories.Add(r.Context(), req.Label)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"label": label})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	label := r.PathValue("label")
	if err := s.categories.Delete(r.Context(), label); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type transactionRequest struct {
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Treasurer   string `json:"treasurer"`
	Date        string `json:"date"`
	ImageURL    string `json:"imageUrl"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"transactions": s.transactions.List()})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	tx, err := s.transactions.Add(r.Context(), store.TransactionDraft{
		Type:        core.TransactionType(req.Type),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Treasurer:   req.Treasurer,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.transactions.Get(id)
	if !ok {
		writeError(w, &core.NotFoundError{ID: id})
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// transactionPatchRequest distinguishes absent fields from zero values so a
// PATCH can clear the description without touching the amount.
type transactionPatchRequest struct {
	Type        *string `json:"type"`
	Amount      *int64  `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Treasurer   *string `json:"treasurer"`
	Date        *string `json:"date"`
	ImageURL    *string `json:"imageUrl"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	patch := store.TransactionPatch{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Treasurer:   req.Treasurer,
		Date:        req.Date,
		ImageURL:    req.ImageURL,
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		patch.Type = &t
	}

	tx, err := s.transactions.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.transactions.Delete(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := s.transactions.AddComment(r.Context(), r.PathValue("id"), req.Name, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleNota(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.transactions.Get(id)
	if !ok {
		writeError(w, &core.NotFoundError{ID: id})
		return
	}

	pdf, err := s.artifacts.Nota(tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render nota", "id", id, "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="nota-`+id+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.ErrorContext(r.Context(), "failed to write nota response", "id", id, "error", err)
	}
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.transactions.Get(id)
	if !ok {
		writeError(w, &core.NotFoundError{ID: id})
		return
	}

	png, err := s.artifacts.QR(tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render qr code", "id", id, "error", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		slog.ErrorContext(r.Context(), "failed to write qr response", "id", id, "error", err)
	}
}
