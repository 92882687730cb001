// Package server exposes the JSON HTTP API: account registration and login,
// receipt persistence, receipt-text parsing, and image upload.
//
// Handlers stay thin: they validate and decode payloads at the boundary,
// then delegate to the ocr and calculator packages and the storage layer.
package server

import (
	"net/http"

	"splitscan/internal/auth"
	"splitscan/internal/middleware"
	"splitscan/internal/storage"
	"splitscan/internal/upload"
)

// Server holds the collaborators the handlers need.
type Server struct {
	store         storage.Store
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	uploads       upload.Storage
}

// New creates a Server with the given collaborators.
func New(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, uploads upload.Storage) *Server {
	return &Server{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		uploads:       uploads,
	}
}

// Routes returns the API handler with per-route auth applied.
func (s *Server) Routes() http.Handler {
	requireAuth := middleware.RequireAuth(s.jwtManager)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(s.handleCurrentUser)))

	mux.Handle("POST /api/bills/insert", requireAuth(http.HandlerFunc(s.handleInsertBill)))
	mux.Handle("POST /api/bills/update", requireAuth(http.HandlerFunc(s.handleUpdateBill)))
	mux.Handle("POST /api/bills/get", requireAuth(http.HandlerFunc(s.handleGetBill)))
	mux.Handle("POST /api/bills/delete", requireAuth(http.HandlerFunc(s.handleDeleteBill)))
	mux.Handle("GET /api/bills", requireAuth(http.HandlerFunc(s.handleListBills)))

	mux.Handle("POST /api/receipts/parse", requireAuth(http.HandlerFunc(s.handleParseReceipt)))
	mux.Handle("POST /api/receipts/upload", requireAuth(http.HandlerFunc(s.handleUploadImage)))

	return mux
}
