package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kaskom/internal/core"
)

// maxBodyBytes bounds request bodies. Transactions may carry a data-URL
// receipt image, so the limit is generous.
const maxBodyBytes = 2 << 20

type errorBody struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
	ID     string `json:"id,omitempty"`
	Value  string `json:"value,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses and a JSON
// body carrying the error's fields.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *core.ValidationError
		notFoundErr   *core.NotFoundError
		duplicateErr  *core.DuplicateError
		protectedErr  *core.ProtectedError
		artifactErr   *core.ArtifactError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  validationErr.Error(),
			Field:  validationErr.Field,
			Reason: validationErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorBody{
			Error: notFoundErr.Error(),
			ID:    notFoundErr.ID,
		})
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: duplicateErr.Error(),
			Value: duplicateErr.Value,
		})
	case errors.As(err, &protectedErr):
		writeJSON(w, http.StatusConflict, errorBody{
			Error: protectedErr.Error(),
			Value: protectedErr.Value,
		})
	case errors.As(err, &artifactErr):
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: artifactErr.Error(),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: err.Error(),
		})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &core.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
	}
	return nil
}
