// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"splitscan/internal/models"
)

// Store defines the interface for receipt and user storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the handler layer.
type Store interface {
	// CreateReceipt persists a new receipt. The receipt's ID, item IDs, and
	// CreatedAt are populated by the store when unset.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt by its ID, including items, claims,
	// and participants. Items come back in their stored order.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// UpdateReceipt replaces an existing receipt's editable state.
	// Returns an error if the receipt is not found.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error

	// DeleteReceipt removes a receipt and its items, claims, and participants.
	DeleteReceipt(ctx context.Context, receiptID string) error

	// ListReceiptsByOwner returns all receipts created by a user,
	// newest first.
	ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns (nil, nil) when no
	// user exists with that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns (nil, nil) when not found.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
