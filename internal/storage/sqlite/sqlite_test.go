package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"splitscan/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitscan-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// createTestUser persists a user and returns its ID for use as a receipt owner.
func createTestUser(t *testing.T, store *SQLiteStore, email string) string {
	t.Helper()

	user := models.NewUser(email, "Test User", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user.ID
}

func sampleReceipt(ownerID string) *models.Receipt {
	return &models.Receipt{
		OwnerID: ownerID,
		Title:   "Team Lunch",
		Items: []models.Item{
			{Name: "Burger", UnitPrice: 12.99, Quantity: 1, ClaimedBy: []string{"p1"}},
			{Name: "Fries", UnitPrice: 4.50, Quantity: 2, ClaimedBy: []string{"p1", "p2"}},
			{Name: "Shake", UnitPrice: 5.00, Quantity: 1, ClaimedBy: []string{}},
		},
		Participants: []models.Participant{
			{ID: "p1", Name: "Alice", PhoneNumber: "555-0100"},
			{ID: "p2", Name: "Bob", PhoneNumber: "555-0101"},
		},
		Tax:      1.65,
		Tip:      3.00,
		Subtotal: 26.99,
		Total:    31.64,
	}
}

func TestSQLiteStoreReceipts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "owner@example.com")

	t.Run("CreateReceipt generates IDs and timestamps", func(t *testing.T) {
		receipt := sampleReceipt(owner)
		receipt.Title = ""

		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		if receipt.ID == "" {
			t.Error("Expected receipt ID to be generated")
		}
		if receipt.Title == "" {
			t.Error("Expected title to be generated")
		}
		if receipt.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for i, item := range receipt.Items {
			if item.ID == "" {
				t.Errorf("Expected item %d ID to be generated", i)
			}
		}
	})

	t.Run("CreateReceipt with unknown owner errors", func(t *testing.T) {
		receipt := sampleReceipt("no-such-user")
		if err := store.CreateReceipt(ctx, receipt); err == nil {
			t.Error("Expected foreign key error for unknown owner")
		}
	})

	t.Run("GetReceipt round-trips items in order with claims", func(t *testing.T) {
		original := sampleReceipt(owner)
		if err := store.CreateReceipt(ctx, original); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		retrieved, err := store.GetReceipt(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}

		if retrieved.Title != original.Title {
			t.Errorf("Title = %q, want %q", retrieved.Title, original.Title)
		}
		if retrieved.Tax != 1.65 || retrieved.Tip != 3.00 {
			t.Errorf("Tax/Tip = %v/%v, want 1.65/3.00", retrieved.Tax, retrieved.Tip)
		}
		if retrieved.Subtotal != 26.99 || retrieved.Total != 31.64 {
			t.Errorf("Subtotal/Total = %v/%v, want 26.99/31.64", retrieved.Subtotal, retrieved.Total)
		}

		if len(retrieved.Items) != 3 {
			t.Fatalf("Items = %d, want 3", len(retrieved.Items))
		}
		wantOrder := []string{"Burger", "Fries", "Shake"}
		for i, want := range wantOrder {
			if retrieved.Items[i].Name != want {
				t.Errorf("Items[%d].Name = %q, want %q (extraction order must survive storage)",
					i, retrieved.Items[i].Name, want)
			}
		}
		if len(retrieved.Items[1].ClaimedBy) != 2 {
			t.Errorf("Fries claims = %v, want 2 claimants", retrieved.Items[1].ClaimedBy)
		}
		if len(retrieved.Items[2].ClaimedBy) != 0 {
			t.Errorf("Shake claims = %v, want none", retrieved.Items[2].ClaimedBy)
		}

		if len(retrieved.Participants) != 2 {
			t.Fatalf("Participants = %d, want 2", len(retrieved.Participants))
		}
		if retrieved.Participants[0].Name != "Alice" || retrieved.Participants[0].PhoneNumber != "555-0100" {
			t.Errorf("Participants[0] = %+v, want Alice/555-0100", retrieved.Participants[0])
		}
	})

	t.Run("GetReceipt unknown id errors", func(t *testing.T) {
		if _, err := store.GetReceipt(ctx, "missing"); err == nil {
			t.Error("Expected error for unknown receipt")
		}
	})

	t.Run("UpdateReceipt replaces items and participants", func(t *testing.T) {
		receipt := sampleReceipt(owner)
		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		receipt.Title = "Edited Lunch"
		receipt.Tax = 2.00
		receipt.Items = []models.Item{
			{Name: "Wrap", UnitPrice: 9.00, Quantity: 1, ClaimedBy: []string{"p2"}},
		}
		receipt.Participants = receipt.Participants[:1]
		if err := store.UpdateReceipt(ctx, receipt); err != nil {
			t.Fatalf("UpdateReceipt failed: %v", err)
		}

		retrieved, err := store.GetReceipt(ctx, receipt.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if retrieved.Title != "Edited Lunch" || retrieved.Tax != 2.00 {
			t.Errorf("Title/Tax = %q/%v, want Edited Lunch/2.00", retrieved.Title, retrieved.Tax)
		}
		if len(retrieved.Items) != 1 || retrieved.Items[0].Name != "Wrap" {
			t.Errorf("Items = %+v, want the single replacement item", retrieved.Items)
		}
		if len(retrieved.Participants) != 1 {
			t.Errorf("Participants = %d, want 1", len(retrieved.Participants))
		}
	})

	t.Run("UpdateReceipt unknown id errors", func(t *testing.T) {
		missing := sampleReceipt(owner)
		missing.ID = "missing"
		if err := store.UpdateReceipt(ctx, missing); err == nil {
			t.Error("Expected error updating unknown receipt")
		}
	})

	t.Run("DeleteReceipt removes the receipt", func(t *testing.T) {
		receipt := sampleReceipt(owner)
		if err := store.CreateReceipt(ctx, receipt); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		if err := store.DeleteReceipt(ctx, receipt.ID); err != nil {
			t.Fatalf("DeleteReceipt failed: %v", err)
		}
		if _, err := store.GetReceipt(ctx, receipt.ID); err == nil {
			t.Error("Expected deleted receipt to be gone")
		}
		if err := store.DeleteReceipt(ctx, receipt.ID); err == nil {
			t.Error("Expected error deleting twice")
		}
	})

	t.Run("ListReceiptsByOwner returns newest first", func(t *testing.T) {
		store := newTestStore(t)
		lister := createTestUser(t, store, "lister@example.com")
		other := createTestUser(t, store, "other@example.com")

		older := sampleReceipt(lister)
		older.Title = "Older"
		older.CreatedAt = 1000
		newer := sampleReceipt(lister)
		newer.Title = "Newer"
		newer.CreatedAt = 2000
		unrelated := sampleReceipt(other)

		for _, r := range []*models.Receipt{older, newer, unrelated} {
			if err := store.CreateReceipt(ctx, r); err != nil {
				t.Fatalf("CreateReceipt failed: %v", err)
			}
		}

		receipts, err := store.ListReceiptsByOwner(ctx, lister)
		if err != nil {
			t.Fatalf("ListReceiptsByOwner failed: %v", err)
		}
		if len(receipts) != 2 {
			t.Fatalf("got %d receipts, want 2", len(receipts))
		}
		if receipts[0].Title != "Newer" || receipts[1].Title != "Older" {
			t.Errorf("order = [%q, %q], want [Newer, Older]", receipts[0].Title, receipts[1].Title)
		}
		if len(receipts[0].Items) != 3 {
			t.Errorf("listed receipt items = %d, want 3", len(receipts[0].Items))
		}
	})
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID || got.DisplayName != "Alice" {
			t.Errorf("got %+v, want the created user", got)
		}
	})

	t.Run("GetUserByEmail not found returns nil", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("GetUserByID", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got == nil || got.Email != "alice@example.com" {
			t.Errorf("got %+v, want the created user", got)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other Alice", "hash2")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected unique constraint error for duplicate email")
		}
	})
}
