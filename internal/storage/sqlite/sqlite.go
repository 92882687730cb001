// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"splitscan/internal/models"
	"splitscan/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// The _pragma DSN form applies to every pooled connection; a plain
	// PRAGMA exec would only configure the connection that ran it.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateReceipt persists a new receipt with its items, claims, and participants.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}
	if receipt.Title == "" {
		receipt.Title = generateTitle(receipt.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, owner_id, title, image_url, tax, tip, subtotal, total, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.OwnerID, receipt.Title, nullable(receipt.ImageURL),
		receipt.Tax, receipt.Tip, receipt.Subtotal, receipt.Total, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	if err := insertChildren(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetReceipt retrieves a receipt by ID, including items, claims, and participants.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	var imageURL sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, image_url, tax, tip, subtotal, total, created_at
		 FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(&receipt.ID, &receipt.OwnerID, &receipt.Title, &imageURL,
		&receipt.Tax, &receipt.Tip, &receipt.Subtotal, &receipt.Total, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt not found: %s", receiptID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if imageURL.Valid {
		receipt.ImageURL = imageURL.String
	}

	if err := s.loadChildren(ctx, receipt); err != nil {
		return nil, err
	}

	return receipt, nil
}

// UpdateReceipt replaces an existing receipt's editable state. Items, claims,
// and participants are rewritten wholesale; last write wins.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE receipts SET title = ?, image_url = ?, tax = ?, tip = ?, subtotal = ?, total = ?
		 WHERE id = ?`,
		receipt.Title, nullable(receipt.ImageURL), receipt.Tax, receipt.Tip,
		receipt.Subtotal, receipt.Total, receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt not found: %s", receipt.ID)
	}

	// Items cascade-delete their claims.
	if _, err := tx.ExecContext(ctx, "DELETE FROM receipt_items WHERE receipt_id = ?", receipt.ID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE receipt_id = ?", receipt.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}

	if err := insertChildren(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteReceipt removes a receipt; items, claims, and participants cascade.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, receiptID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", receiptID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt not found: %s", receiptID)
	}
	return nil
}

// ListReceiptsByOwner returns a user's receipts, newest first.
func (s *SQLiteStore) ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, image_url, tax, tip, subtotal, total, created_at
		 FROM receipts WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		receipt := &models.Receipt{}
		var imageURL sql.NullString
		if err := rows.Scan(&receipt.ID, &receipt.OwnerID, &receipt.Title, &imageURL,
			&receipt.Tax, &receipt.Tip, &receipt.Subtotal, &receipt.Total, &receipt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if imageURL.Valid {
			receipt.ImageURL = imageURL.String
		}
		receipts = append(receipts, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	for _, receipt := range receipts {
		if err := s.loadChildren(ctx, receipt); err != nil {
			return nil, err
		}
	}

	return receipts, nil
}

// insertChildren writes a receipt's items, claims, and participants inside tx.
func insertChildren(ctx context.Context, tx *sql.Tx, receipt *models.Receipt) error {
	for i := range receipt.Items {
		item := &receipt.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO receipt_items (id, receipt_id, name, unit_price, quantity, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, receipt.ID, item.Name, item.UnitPrice, item.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, participantID := range item.ClaimedBy {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_claims (item_id, participant_id) VALUES (?, ?)",
				item.ID, participantID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert claim: %w", err)
			}
		}
	}

	for i := range receipt.Participants {
		p := &receipt.Participants[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO participants (id, receipt_id, name, phone_number, position) VALUES (?, ?, ?, ?, ?)",
			p.ID, receipt.ID, p.Name, p.PhoneNumber, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	return nil
}

// loadChildren populates a receipt's items (in stored order), their claims,
// and its participants.
func (s *SQLiteStore) loadChildren(ctx context.Context, receipt *models.Receipt) error {
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, unit_price, quantity FROM receipt_items WHERE receipt_id = ? ORDER BY position",
		receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.ClaimedBy = []string{}
		receipt.Items = append(receipt.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range receipt.Items {
		item := &receipt.Items[i]
		claimRows, err := s.db.QueryContext(ctx,
			"SELECT participant_id FROM item_claims WHERE item_id = ? ORDER BY participant_id",
			item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get claims: %w", err)
		}

		for claimRows.Next() {
			var participantID string
			if err := claimRows.Scan(&participantID); err != nil {
				claimRows.Close()
				return fmt.Errorf("failed to scan claim: %w", err)
			}
			item.ClaimedBy = append(item.ClaimedBy, participantID)
		}
		claimRows.Close()
		if err := claimRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate claims: %w", err)
		}
	}

	participantRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, phone_number FROM participants WHERE receipt_id = ? ORDER BY position",
		receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer participantRows.Close()

	for participantRows.Next() {
		var p models.Participant
		if err := participantRows.Scan(&p.ID, &p.Name, &p.PhoneNumber); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		receipt.Participants = append(receipt.Participants, p)
	}
	if err := participantRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	return nil
}

// generateTitle creates an auto-generated title from the creation date.
func generateTitle(createdAt int64) string {
	return fmt.Sprintf("Receipt - %s", time.Unix(createdAt, 0).Format("Jan 2, 2006"))
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
