package http

import (
	"net/http"
	"time"

	"kaskom/internal/artifact"
	"kaskom/internal/store"
)

// Server is the thin presentation surface over the two stores. All state
// lives in the stores; handlers only translate between JSON and the store
// operations and map the error taxonomy onto status codes.
type Server struct {
	categories   *store.CategoryStore
	transactions *store.TransactionStore
	artifacts    *artifact.Generator
}

func NewServer(addr string, categories *store.CategoryStore, transactions *store.TransactionStore, artifacts *artifact.Generator) *http.Server {
	s := &Server{
		categories:   categories,
		transactions: transactions,
		artifacts:    artifacts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleAddCategory)
	mux.HandleFunc("DELETE /api/categories/{label}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/comments", s.handleAddComment)

	mux.HandleFunc("GET /api/transactions/{id}/nota", s.handleNota)
	mux.HandleFunc("GET /api/transactions/{id}/qr", s.handleQR)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}
